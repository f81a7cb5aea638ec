package calculator

import (
	"jamlo/internal/model"
)

// RoomsKPI 客房部指标
type RoomsKPI struct {
	AvailableRooms   float64                     `json:"availableRooms"`
	SoldRoomNights   float64                     `json:"soldRoomNights"`
	Occupancy        float64                     `json:"occupancy"`
	RevPOR           float64                     `json:"revpor"`
	RoomRevenue      float64                     `json:"roomRevenue"`
	DepartmentalCost float64                     `json:"departmentalCost"`
	Result           float64                     `json:"result"`
	CostPerSoldRoom  float64                     `json:"costPerSoldRoom"`
	CostBreakdown    map[model.CostGroup]float64 `json:"costBreakdown"`
}

// FnBKPI 餐饮部指标
type FnBKPI struct {
	Revenue float64 `json:"revenue"`
	RawCost float64 `json:"rawCost"`
	Cost    float64 `json:"cost"`
	Result  float64 `json:"result"`
}

var (
	roomsCost = model.MetricsWithPrefix(model.PrefixRoomsCost)
	fnbRev    = model.MetricsWithPrefix(model.PrefixFnB)
	fnbCost   = model.MetricsWithPrefix(model.PrefixFnBCost)
	otherRev  = model.MetricsWithPrefix(model.PrefixOtherRevenue)
)

func sum(days []model.Day, m model.Metric) float64 {
	total := 0.0
	for _, d := range days {
		total += d.Values[m].OrZero()
	}
	return total
}

func sumAll(days []model.Day, metrics []model.Metric) float64 {
	total := 0.0
	for _, m := range metrics {
		total += sum(days, m)
	}
	return total
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

// Rooms 客房部指标（未录入按 0）
func Rooms(days []model.Day) RoomsKPI {
	available := sum(days, model.RoomsAvailableQty) - sum(days, model.RoomsOOSQty)
	sold := sum(days, model.RoomsSoldWithoutBreakfastQty) + sum(days, model.RoomsSoldWithBreakfastQty)
	revenue := sum(days, model.RoomsNetRevenuePLN)

	breakdown := map[model.CostGroup]float64{
		model.CostPersonnel: 0,
		model.CostMaterials: 0,
		model.CostServices:  0,
		model.CostOther:     0,
	}
	cost := 0.0
	for _, m := range roomsCost {
		v := sum(days, m)
		breakdown[m.Def().CostGroup] += v
		cost += v
	}

	return RoomsKPI{
		AvailableRooms:   available,
		SoldRoomNights:   sold,
		Occupancy:        ratio(sold, available),
		RevPOR:           ratio(revenue, sold),
		RoomRevenue:      revenue,
		DepartmentalCost: cost,
		Result:           revenue - cost,
		CostPerSoldRoom:  ratio(cost, sold),
		CostBreakdown:    breakdown,
	}
}

// FnB 餐饮部指标
func FnB(days []model.Day) FnBKPI {
	revenue := sumAll(days, fnbRev)
	cost := sumAll(days, fnbCost)
	raw := 0.0
	for _, m := range fnbCost {
		if m.Def().CostGroup == model.CostRaw {
			raw += sum(days, m)
		}
	}
	return FnBKPI{Revenue: revenue, RawCost: raw, Cost: cost, Result: revenue - cost}
}

// OtherRevenue 其他收入合计（只计金额类指标）
func OtherRevenue(days []model.Day) float64 {
	total := 0.0
	for _, m := range otherRev {
		if m.Def().Unit == model.UnitPLN {
			total += sum(days, m)
		}
	}
	return total
}

// RoomsMonth 单月客房指标
func RoomsMonth(t model.MonthTable) RoomsKPI { return Rooms(t.Days) }

// FnBMonth 单月餐饮指标
func FnBMonth(t model.MonthTable) FnBKPI { return FnB(t.Days) }

// Concat 拼接多个月的行（YTD 按行重新聚合，不对月度比率求平均）
func Concat(tables []model.MonthTable) []model.Day {
	n := 0
	for _, t := range tables {
		n += len(t.Days)
	}
	out := make([]model.Day, 0, n)
	for _, t := range tables {
		out = append(out, t.Days...)
	}
	return out
}

// Summary 月度与年初至今汇总
type Summary struct {
	Year            int      `json:"year"`
	Month           int      `json:"month"`
	Rooms           RoomsKPI `json:"rooms"`
	RoomsYTD        RoomsKPI `json:"roomsYtd"`
	FnB             FnBKPI   `json:"fnb"`
	FnBYTD          FnBKPI   `json:"fnbYtd"`
	OtherRevenue    float64  `json:"otherRevenue"`
	OtherRevenueYTD float64  `json:"otherRevenueYtd"`
}

// Summarize 由 1..month 月的月表计算汇总；tables 按月份升序，最后一个为当月
func Summarize(year, month int, tables []model.MonthTable) Summary {
	s := Summary{Year: year, Month: month}
	if len(tables) == 0 {
		s.Rooms, s.RoomsYTD = Rooms(nil), Rooms(nil)
		return s
	}
	current := tables[len(tables)-1].Days
	ytd := Concat(tables)

	s.Rooms = Rooms(current)
	s.RoomsYTD = Rooms(ytd)
	s.FnB = FnB(current)
	s.FnBYTD = FnB(ytd)
	s.OtherRevenue = OtherRevenue(current)
	s.OtherRevenueYTD = OtherRevenue(ytd)
	return s
}

// RoomsMatrix 全年 12 个月的客房指标
func RoomsMatrix(tables []model.MonthTable) []RoomsKPI {
	out := make([]RoomsKPI, len(tables))
	for i, t := range tables {
		out[i] = RoomsMonth(t)
	}
	return out
}
