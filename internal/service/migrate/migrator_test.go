package migrate

import (
	"testing"
	"time"

	"jamlo/internal/model"
)

func legacyGrid() model.Grid {
	return model.Grid{
		Columns: []string{"pokoje_do_sprzedania", "sprzedane_pokoje_ze", "uwagi"},
		Rows: []model.GridRow{
			{Date: model.Date(2025, 3, 2), Cells: map[string]model.Value{
				"pokoje_do_sprzedania": model.Num(100),
				"sprzedane_pokoje_ze":  model.Num(20),
				"uwagi":                model.Num(7),
			}},
			{Date: model.Date(2025, 3, 1), Cells: map[string]model.Value{
				"pokoje_do_sprzedania": model.Num(90),
			}},
		},
	}
}

// TestMigrateLegacyColumns 旧列改名、补齐规范列、保留未识别列、补全日历日
func TestMigrateLegacyColumns(t *testing.T) {
	t.Parallel()

	tbl, report := Migrate(legacyGrid(), 2025, 3)

	if len(tbl.Days) != 31 {
		t.Fatalf("want 31 days got %d", len(tbl.Days))
	}
	if got := tbl.Days[0].Get(model.RoomsAvailableQty); !got.Equal(model.Num(90)) {
		t.Fatalf("2025-03-01 available want=90 got=%v", got)
	}
	if got := tbl.Days[1].Get(model.RoomsSoldWithBreakfastQty); !got.Equal(model.Num(20)) {
		t.Fatalf("2025-03-02 sold with breakfast want=20 got=%v", got)
	}
	if tbl.Days[5].Get(model.RoomsAvailableQty).IsSet() {
		t.Fatalf("filled day must be unset")
	}
	if len(tbl.Extra) != 1 || tbl.Extra[0] != "uwagi" || !tbl.Days[1].Extra["uwagi"].Equal(model.Num(7)) {
		t.Fatalf("unknown column not preserved: %v", tbl.Extra)
	}
	if len(report.Renamed) != 2 {
		t.Fatalf("want 2 renamed got %v", report.Renamed)
	}
	if len(report.Added) != model.NumMetrics-2 || len(report.Present) != 2 {
		t.Fatalf("added=%d present=%d", len(report.Added), len(report.Present))
	}
	if report.HasIssues() {
		t.Fatalf("unexpected issues: %+v", report)
	}
}

// TestMigrateIdempotent migrate(migrate(x)) == migrate(x)
func TestMigrateIdempotent(t *testing.T) {
	t.Parallel()

	first, _ := Migrate(legacyGrid(), 2025, 3)
	second, report := Migrate(first.Grid(), 2025, 3)
	if !first.Equal(second) {
		t.Fatalf("migration is not idempotent")
	}
	if len(report.Renamed) != 0 || len(report.Added) != 0 {
		t.Fatalf("canonical table should need no renames: %+v", report)
	}
	if !Table(first).Equal(first) {
		t.Fatalf("Table() changed a canonical table")
	}
}

// TestMigrateCanonicalWins 同时存在旧列与规范列时以规范列为准，并报告冲突
func TestMigrateCanonicalWins(t *testing.T) {
	t.Parallel()

	g := model.Grid{
		Columns: []string{"pokoje_oos", "rooms.oos_qty"},
		Rows: []model.GridRow{
			{Date: model.Date(2025, 3, 1), Cells: map[string]model.Value{"pokoje_oos": model.Num(3), "rooms.oos_qty": model.Num(2)}},
			{Date: model.Date(2025, 3, 2), Cells: map[string]model.Value{"pokoje_oos": model.Num(4), "rooms.oos_qty": model.Num(4)}},
		},
	}
	tbl, report := Migrate(g, 2025, 3)
	if got := tbl.Days[0].Get(model.RoomsOOSQty); !got.Equal(model.Num(2)) {
		t.Fatalf("canonical value must win, got %v", got)
	}
	if len(report.Conflicts) != 1 {
		t.Fatalf("want 1 conflict got %+v", report.Conflicts)
	}
	c := report.Conflicts[0]
	if c.Legacy != "pokoje_oos" || c.Canonical != "rooms.oos_qty" || !c.Discarded.Equal(model.Num(3)) || !c.Kept.Equal(model.Num(2)) {
		t.Fatalf("unexpected conflict: %+v", c)
	}
	if tbl.Extra != nil {
		t.Fatalf("discarded legacy column must not become extra: %v", tbl.Extra)
	}
}

func TestMigrateOutOfMonthAndDuplicates(t *testing.T) {
	t.Parallel()

	g := model.Grid{
		Columns: []string{"rooms.available_qty"},
		Rows: []model.GridRow{
			{Date: model.Date(2025, 2, 28), Cells: map[string]model.Value{"rooms.available_qty": model.Num(1)}},
			{Date: model.Date(2025, 3, 5), Cells: map[string]model.Value{"rooms.available_qty": model.Num(1)}},
			{Date: time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC), Cells: map[string]model.Value{"rooms.available_qty": model.Num(2)}},
		},
	}
	tbl, report := Migrate(g, 2025, 3)
	if len(report.OutOfMonth) != 1 || len(report.Duplicates) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := tbl.Days[4].Get(model.RoomsAvailableQty); !got.Equal(model.Num(2)) {
		t.Fatalf("last duplicate must win, got %v", got)
	}
}

// TestMigrateTotal 空输入也得到完整的规范月表
func TestMigrateTotal(t *testing.T) {
	t.Parallel()

	tbl, report := Migrate(model.Grid{}, 2023, 2)
	if len(tbl.Days) != 28 || len(report.Added) != model.NumMetrics {
		t.Fatalf("days=%d added=%d", len(tbl.Days), len(report.Added))
	}
}

func TestAuditEntries(t *testing.T) {
	t.Parallel()

	in := []model.AuditEntry{
		{User: "GM", Metric: "pokoje_oos"},
		{User: "GM", Metric: "rooms.oos_qty"},
		{User: "GM", Metric: "uwagi"},
	}
	out, renamed := AuditEntries(in)
	if renamed != 1 || out[0].Metric != "rooms.oos_qty" || out[2].Metric != "uwagi" {
		t.Fatalf("unexpected rename: %d %+v", renamed, out)
	}
	if in[0].Metric != "pokoje_oos" {
		t.Fatalf("input must not be modified")
	}
}
