package model

// Group 表格列分组（界面按组显示）
type Group struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Prefixes []string `json:"prefixes"`
}

// GroupAll 全部列
const GroupAll = "all"

var groups = []Group{
	{Key: "rooms", Label: "Pokoje", Prefixes: []string{PrefixRooms}},
	{Key: "fnb", Label: "Gastronomia", Prefixes: []string{PrefixFnB}},
	{Key: "sales", Label: "Dział sprzedaży", Prefixes: []string{PrefixSales}},
	{Key: "other-revenue", Label: "Inne centra", Prefixes: []string{PrefixOtherRevenue}},
	{Key: "costs", Label: "Koszty", Prefixes: []string{PrefixRoomsCost, PrefixFnBCost}},
	{Key: GroupAll, Label: "Wszystko"},
}

// Groups 返回全部分组
func Groups() []Group {
	out := make([]Group, len(groups))
	copy(out, groups)
	return out
}

// GroupMetrics 返回分组包含的指标；未知分组返回 false
func GroupMetrics(key string) ([]Metric, bool) {
	if key == "" || key == GroupAll {
		return Metrics(), true
	}
	for _, g := range groups {
		if g.Key != key {
			continue
		}
		var out []Metric
		for _, p := range g.Prefixes {
			out = append(out, MetricsWithPrefix(p)...)
		}
		return out, true
	}
	return nil, false
}
