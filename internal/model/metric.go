package model

import (
	"fmt"
	"strings"
)

// Metric 规范指标（固定顺序，下标即注册表顺序）
type Metric int

// Unit 指标单位
type Unit string

const (
	UnitQty Unit = "qty"
	UnitPLN Unit = "pln"
	UnitPct Unit = "pct"
)

// CostGroup 成本分组（用于成本拆分）
type CostGroup string

const (
	CostNone      CostGroup = ""
	CostRaw       CostGroup = "raw"
	CostPersonnel CostGroup = "personnel"
	CostMaterials CostGroup = "materials"
	CostServices  CostGroup = "services"
	CostOther     CostGroup = "other"
)

// 指标前缀（领域）
const (
	PrefixRooms        = "rooms"
	PrefixFnB          = "fnb"
	PrefixSales        = "sales"
	PrefixOtherRevenue = "other-revenue"
	PrefixRoomsCost    = "rooms-cost"
	PrefixFnBCost      = "fnb-cost"
)

const (
	RoomsAvailableQty Metric = iota
	RoomsOOSQty
	RoomsSoldWithoutBreakfastQty
	RoomsSoldWithBreakfastQty
	RoomsNetRevenuePLN

	FnBPackageBreakfastPLN
	FnBPackageDinnerPLN
	FnBALaCarteFoodPLN
	FnBALaCarteBeveragePLN
	FnBBanquetFoodPLN
	FnBBanquetBeveragePLN
	FnBCateringPLN

	SalesHallRentalPLN
	SalesRoomsSMNetPLN

	OtherParkingRoomsPct
	OtherParkingPLN
	OtherReceptionShopPLN
	OtherGuestLaundryPLN
	OtherGuestTransportPLN
	OtherRecreationPLN
	OtherOtherPLN

	RoomsCostPersonnelSalariesPLN
	RoomsCostPersonnelSocialSecurityPLN
	RoomsCostPersonnelPFRONPLN
	RoomsCostPersonnelMealsPLN
	RoomsCostPersonnelWorkwearPLN
	RoomsCostPersonnelMedicalPLN
	RoomsCostPersonnelOtherPLN
	RoomsCostMaterialsConsumablesPLN
	RoomsCostMaterialsAmenitiesPLN
	RoomsCostMaterialsOfficePLN
	RoomsCostServicesCleaningPLN
	RoomsCostServicesLaundryPLN
	RoomsCostServicesWorkwearLaundryPLN
	RoomsCostServicesEquipmentRentalPLN
	RoomsCostServicesOtherPLN
	RoomsCostOTAGDSCommissionPLN

	FnBCostRawFoodPLN
	FnBCostRawBeveragePLN
	FnBCostPersonnelSalariesPLN
	FnBCostPersonnelSocialSecurityPLN
	FnBCostPersonnelPFRONPLN
	FnBCostPersonnelMealsPLN
	FnBCostPersonnelWorkwearPLN
	FnBCostPersonnelMedicalPLN
	FnBCostPersonnelOtherPLN
	FnBCostMaterialsTablewarePLN
	FnBCostMaterialsSmallEquipmentPLN
	FnBCostMaterialsLinenDecorPLN
	FnBCostMaterialsMenusPLN
	FnBCostMaterialsCleaningPLN
	FnBCostMaterialsOtherPLN
	FnBCostServicesCleaningPLN
	FnBCostServicesWorkwearLaundryPLN
	FnBCostServicesLinenLaundryPLN
	FnBCostServicesEquipmentRentalPLN
	FnBCostServicesOtherPLN

	numMetrics
)

// NumMetrics 规范指标数量
const NumMetrics = int(numMetrics)

// MetricDef 注册表条目
type MetricDef struct {
	Name      string    `json:"name"`
	Legacy    string    `json:"legacy,omitempty"`
	Unit      Unit      `json:"unit"`
	CostGroup CostGroup `json:"costGroup,omitempty"`
	Label     string    `json:"label"`
}

// Prefix 指标前缀（"rooms"、"fnb-cost" 等）
func (d MetricDef) Prefix() string {
	prefix, _, _ := strings.Cut(d.Name, ".")
	return prefix
}

var definitions = [numMetrics]MetricDef{
	RoomsAvailableQty:            {"rooms.available_qty", "pokoje_do_sprzedania", UnitQty, CostNone, "Pokoje do sprzedaży"},
	RoomsOOSQty:                  {"rooms.oos_qty", "pokoje_oos", UnitQty, CostNone, "Pokoje OOS"},
	RoomsSoldWithoutBreakfastQty: {"rooms.sold_without_breakfast_qty", "sprzedane_pokoje_bez", UnitQty, CostNone, "Sprzedane BEZ śn."},
	RoomsSoldWithBreakfastQty:    {"rooms.sold_with_breakfast_qty", "sprzedane_pokoje_ze", UnitQty, CostNone, "Sprzedane ZE śn."},
	RoomsNetRevenuePLN:           {"rooms.net_revenue_pln", "przychody_pokoje_netto", UnitPLN, CostNone, "Przychody pokoje (netto)"},

	FnBPackageBreakfastPLN: {"fnb.package_breakfast_pln", "fnb_sniadania_pakietowe", UnitPLN, CostNone, "Śniadania pakietowe"},
	FnBPackageDinnerPLN:    {"fnb.package_dinner_pln", "fnb_kolacje_pakietowe", UnitPLN, CostNone, "Kolacje pakietowe"},
	FnBALaCarteFoodPLN:     {"fnb.a_la_carte_food_pln", "fnb_zywnosc_a_la_carte", UnitPLN, CostNone, "Żywność a la carte"},
	FnBALaCarteBeveragePLN: {"fnb.a_la_carte_beverage_pln", "fnb_napoje_a_la_carte", UnitPLN, CostNone, "Napoje a la carte"},
	FnBBanquetFoodPLN:      {"fnb.banquet_food_pln", "fnb_zywnosc_bankiety", UnitPLN, CostNone, "Żywność bankiety"},
	FnBBanquetBeveragePLN:  {"fnb.banquet_beverage_pln", "fnb_napoje_bankiety", UnitPLN, CostNone, "Napoje bankiety"},
	FnBCateringPLN:         {"fnb.catering_pln", "fnb_catering", UnitPLN, CostNone, "Catering"},

	SalesHallRentalPLN: {"sales.hall_rental_pln", "fnb_wynajem_sali", UnitPLN, CostNone, "Wynajem sal"},
	SalesRoomsSMNetPLN: {"sales.rooms_sm_net_pln", "", UnitPLN, CostNone, "Sprzedaż pokoi (dział sprzedaży, netto)"},

	OtherParkingRoomsPct:   {"other-revenue.parking_rooms_pct", "proc_pokoi_parking", UnitPct, CostNone, "% pokoi z parkingiem"},
	OtherParkingPLN:        {"other-revenue.parking_pln", "przychody_parking", UnitPLN, CostNone, "Przychody parking"},
	OtherReceptionShopPLN:  {"other-revenue.reception_shop_pln", "przychody_sklep_recepcyjny", UnitPLN, CostNone, "Sklep recepcyjny"},
	OtherGuestLaundryPLN:   {"other-revenue.guest_laundry_pln", "przychody_pralnia_gosci", UnitPLN, CostNone, "Pralnia (goście)"},
	OtherGuestTransportPLN: {"other-revenue.guest_transport_pln", "przychody_transport_gosci", UnitPLN, CostNone, "Transport (goście)"},
	OtherRecreationPLN:     {"other-revenue.recreation_pln", "przychody_rekreacja", UnitPLN, CostNone, "Rekreacja"},
	OtherOtherPLN:          {"other-revenue.other_pln", "przychody_pozostale", UnitPLN, CostNone, "Pozostałe przychody"},

	RoomsCostPersonnelSalariesPLN:       {"rooms-cost.personnel_salaries_pln", "r_osobowe_wynagrodzenia", UnitPLN, CostPersonnel, "Pokoje: wynagrodzenia"},
	RoomsCostPersonnelSocialSecurityPLN: {"rooms-cost.personnel_social_security_pln", "r_osobowe_zus", UnitPLN, CostPersonnel, "Pokoje: ZUS"},
	RoomsCostPersonnelPFRONPLN:          {"rooms-cost.personnel_pfron_pln", "r_osobowe_pfron", UnitPLN, CostPersonnel, "Pokoje: PFRON"},
	RoomsCostPersonnelMealsPLN:          {"rooms-cost.personnel_meals_pln", "r_osobowe_wyzywienie", UnitPLN, CostPersonnel, "Pokoje: wyżywienie"},
	RoomsCostPersonnelWorkwearPLN:       {"rooms-cost.personnel_workwear_pln", "r_osobowe_odziez_bhp", UnitPLN, CostPersonnel, "Pokoje: odzież/BHP"},
	RoomsCostPersonnelMedicalPLN:        {"rooms-cost.personnel_medical_pln", "r_osobowe_medyczne", UnitPLN, CostPersonnel, "Pokoje: medyczne"},
	RoomsCostPersonnelOtherPLN:          {"rooms-cost.personnel_other_pln", "r_osobowe_inne", UnitPLN, CostPersonnel, "Pokoje: inne osobowe"},
	RoomsCostMaterialsConsumablesPLN:    {"rooms-cost.materials_consumables_pln", "r_materialy_eksploatacyjne_spozywcze", UnitPLN, CostMaterials, "Pokoje: materiały eksploat./spoż."},
	RoomsCostMaterialsAmenitiesPLN:      {"rooms-cost.materials_amenities_pln", "r_materialy_kosmetyki_srodki", UnitPLN, CostMaterials, "Pokoje: kosmetyki/środki czystości"},
	RoomsCostMaterialsOfficePLN:         {"rooms-cost.materials_office_pln", "r_materialy_inne_biurowe", UnitPLN, CostMaterials, "Pokoje: inne/biurowe"},
	RoomsCostServicesCleaningPLN:        {"rooms-cost.services_cleaning_pln", "r_uslugi_sprzatania", UnitPLN, CostServices, "Pokoje: sprzątanie"},
	RoomsCostServicesLaundryPLN:         {"rooms-cost.services_laundry_pln", "r_uslugi_pranie_zew", UnitPLN, CostServices, "Pokoje: pranie (zew.)"},
	RoomsCostServicesWorkwearLaundryPLN: {"rooms-cost.services_workwear_laundry_pln", "r_uslugi_pranie_odziezy_sluzbowej", UnitPLN, CostServices, "Pokoje: pranie odzieży sł."},
	RoomsCostServicesEquipmentRentalPLN: {"rooms-cost.services_equipment_rental_pln", "r_uslugi_wynajem_sprzetu", UnitPLN, CostServices, "Pokoje: wynajem sprzętu"},
	RoomsCostServicesOtherPLN:           {"rooms-cost.services_other_pln", "r_uslugi_inne_bhp", UnitPLN, CostServices, "Pokoje: inne usługi"},
	RoomsCostOTAGDSCommissionPLN:        {"rooms-cost.ota_gds_commission_pln", "r_pozostale_prowizje_ota_gds", UnitPLN, CostOther, "Pokoje: prowizje OTA/GDS"},

	FnBCostRawFoodPLN:                 {"fnb-cost.raw_food_pln", "g_koszt_surowca_zywnosc_pln", UnitPLN, CostRaw, "F&B: surowiec – żywność"},
	FnBCostRawBeveragePLN:             {"fnb-cost.raw_beverage_pln", "g_koszt_surowca_napoje_pln", UnitPLN, CostRaw, "F&B: surowiec – napoje"},
	FnBCostPersonnelSalariesPLN:       {"fnb-cost.personnel_salaries_pln", "g_osobowe_wynagrodzenia", UnitPLN, CostPersonnel, "F&B: wynagrodzenia"},
	FnBCostPersonnelSocialSecurityPLN: {"fnb-cost.personnel_social_security_pln", "g_osobowe_zus", UnitPLN, CostPersonnel, "F&B: ZUS"},
	FnBCostPersonnelPFRONPLN:          {"fnb-cost.personnel_pfron_pln", "g_osobowe_pfron", UnitPLN, CostPersonnel, "F&B: PFRON"},
	FnBCostPersonnelMealsPLN:          {"fnb-cost.personnel_meals_pln", "g_osobowe_wyzywienie", UnitPLN, CostPersonnel, "F&B: wyżywienie"},
	FnBCostPersonnelWorkwearPLN:       {"fnb-cost.personnel_workwear_pln", "g_osobowe_odziez_bhp", UnitPLN, CostPersonnel, "F&B: odzież/BHP"},
	FnBCostPersonnelMedicalPLN:        {"fnb-cost.personnel_medical_pln", "g_osobowe_medyczne", UnitPLN, CostPersonnel, "F&B: medyczne"},
	FnBCostPersonnelOtherPLN:          {"fnb-cost.personnel_other_pln", "g_osobowe_inne", UnitPLN, CostPersonnel, "F&B: inne osobowe"},
	FnBCostMaterialsTablewarePLN:      {"fnb-cost.materials_tableware_pln", "g_materialy_zastawa", UnitPLN, CostMaterials, "F&B: zastawa"},
	FnBCostMaterialsSmallEquipmentPLN: {"fnb-cost.materials_small_equipment_pln", "g_materialy_drobne_wyposazenie", UnitPLN, CostMaterials, "F&B: drobne wyposażenie"},
	FnBCostMaterialsLinenDecorPLN:     {"fnb-cost.materials_linen_decor_pln", "g_materialy_bielizna_dekoracje", UnitPLN, CostMaterials, "F&B: bielizna/dekoracje"},
	FnBCostMaterialsMenusPLN:          {"fnb-cost.materials_menus_pln", "g_materialy_karty_dan", UnitPLN, CostMaterials, "F&B: karty dań"},
	FnBCostMaterialsCleaningPLN:       {"fnb-cost.materials_cleaning_pln", "g_materialy_srodki_czystosci", UnitPLN, CostMaterials, "F&B: środki czystości"},
	FnBCostMaterialsOtherPLN:          {"fnb-cost.materials_other_pln", "g_materialy_inne", UnitPLN, CostMaterials, "F&B: inne materiały"},
	FnBCostServicesCleaningPLN:        {"fnb-cost.services_cleaning_pln", "g_uslugi_sprzatania_tapicerki", UnitPLN, CostServices, "F&B: sprzątanie"},
	FnBCostServicesWorkwearLaundryPLN: {"fnb-cost.services_workwear_laundry_pln", "g_uslugi_pranie_odziezy_sluzbowej", UnitPLN, CostServices, "F&B: pranie odzieży sł."},
	FnBCostServicesLinenLaundryPLN:    {"fnb-cost.services_linen_laundry_pln", "g_uslugi_pranie_bielizny_gastro", UnitPLN, CostServices, "F&B: pranie bielizny"},
	FnBCostServicesEquipmentRentalPLN: {"fnb-cost.services_equipment_rental_pln", "g_uslugi_wynajem_sprzetu_lokali", UnitPLN, CostServices, "F&B: wynajem sprzętu"},
	FnBCostServicesOtherPLN:           {"fnb-cost.services_other_pln", "g_uslugi_inne", UnitPLN, CostServices, "F&B: inne usługi"},
}

var (
	byName   map[string]Metric
	byLegacy map[string]Metric
)

func init() {
	byName = make(map[string]Metric, NumMetrics)
	byLegacy = make(map[string]Metric, NumMetrics)
	for i, def := range definitions {
		m := Metric(i)
		if def.Name == "" {
			panic(fmt.Sprintf("metric %d has no canonical name", i))
		}
		if _, dup := byName[def.Name]; dup {
			panic("duplicate canonical metric: " + def.Name)
		}
		byName[def.Name] = m
		if def.Legacy == "" {
			continue
		}
		if _, dup := byLegacy[def.Legacy]; dup {
			panic("legacy name mapped twice: " + def.Legacy)
		}
		byLegacy[def.Legacy] = m
	}
	for legacy := range byLegacy {
		if _, clash := byName[legacy]; clash {
			panic("legacy name collides with canonical name: " + legacy)
		}
	}
}

// Def 返回指标定义
func (m Metric) Def() MetricDef { return definitions[m] }

// Name 规范名称
func (m Metric) Name() string { return definitions[m].Name }

func (m Metric) String() string { return definitions[m].Name }

// Label 显示名称（波兰语）
func (m Metric) Label() string { return definitions[m].Label }

// Metrics 按注册表顺序返回全部规范指标
func Metrics() []Metric {
	out := make([]Metric, NumMetrics)
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}

// Definitions 按注册表顺序返回全部指标定义
func Definitions() []MetricDef {
	out := make([]MetricDef, NumMetrics)
	copy(out, definitions[:])
	return out
}

// CanonicalNames 按注册表顺序返回全部规范名称
func CanonicalNames() []string {
	out := make([]string, NumMetrics)
	for i, def := range definitions {
		out[i] = def.Name
	}
	return out
}

// MetricByName 按规范名称查找
func MetricByName(name string) (Metric, bool) {
	m, ok := byName[name]
	return m, ok
}

// LegacyToCanonical 旧列名 → 规范名称
func LegacyToCanonical(legacy string) (string, bool) {
	m, ok := byLegacy[legacy]
	if !ok {
		return "", false
	}
	return definitions[m].Name, true
}

// CanonicalToLegacy 规范名称 → 旧列名（无迁移来源的指标返回 false）
func CanonicalToLegacy(canonical string) (string, bool) {
	m, ok := byName[canonical]
	if !ok || definitions[m].Legacy == "" {
		return "", false
	}
	return definitions[m].Legacy, true
}

// LegacyMap 旧列名 → 规范名称的完整映射
func LegacyMap() map[string]string {
	out := make(map[string]string, len(byLegacy))
	for legacy, m := range byLegacy {
		out[legacy] = definitions[m].Name
	}
	return out
}

// MetricsWithPrefix 返回某前缀下的指标（注册表顺序）
func MetricsWithPrefix(prefix string) []Metric {
	var out []Metric
	for i, def := range definitions {
		if def.Prefix() == prefix {
			out = append(out, Metric(i))
		}
	}
	return out
}
