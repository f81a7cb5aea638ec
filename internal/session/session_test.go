package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jamlo/internal/model"
)

type fakeSheets struct {
	mu     sync.Mutex
	sheets map[string]model.Grid
	err    error
	reads  int
	writes int
}

func newFakeSheets() *fakeSheets {
	return &fakeSheets{sheets: map[string]model.Grid{}}
}

func (f *fakeSheets) ReadSheet(_ context.Context, fileRef, sheet string) (*model.Grid, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	g, ok := f.sheets[fileRef+"/"+sheet]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (f *fakeSheets) UpsertSheet(_ context.Context, fileRef, sheet string, g model.Grid) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.err != nil {
		return f.err
	}
	f.sheets[fileRef+"/"+sheet] = g
	return nil
}

var fixedNow = time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

func newTestSession(sheets SheetStore) *Session {
	return New(Options{
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
		Sheets:   sheets,
		FileRef:  "hotel",
	})
}

func scenarioEdit() model.Grid {
	return model.Grid{
		Columns: []string{"rooms.available_qty", "rooms.sold_without_breakfast_qty", "rooms.sold_with_breakfast_qty", "rooms.net_revenue_pln"},
		Rows: []model.GridRow{{
			Date: model.Date(2025, 3, 1),
			Cells: map[string]model.Value{
				"rooms.available_qty":              model.Num(100),
				"rooms.sold_without_breakfast_qty": model.Num(40),
				"rooms.sold_with_breakfast_qty":    model.Num(20),
				"rooms.net_revenue_pln":            model.Num(18000),
			},
		}},
	}
}

// TestSaveScenario 2025-03-01 录入 4 个指标：4 条变更，旧值均为未录入
func TestSaveScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(nil)

	res, err := s.SaveMonth(ctx, 2025, 3, scenarioEdit(), "GM")
	if err != nil {
		t.Fatalf("SaveMonth failed: %v", err)
	}
	if len(res.Changes) != 4 {
		t.Fatalf("want 4 changes got %+v", res.Changes)
	}
	for _, c := range res.Changes {
		if c.Old.IsSet() {
			t.Fatalf("old value must be unset: %+v", c)
		}
	}

	kpi, err := s.KPI(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("KPI failed: %v", err)
	}
	if kpi.Rooms.SoldRoomNights != 60 || kpi.Rooms.RevPOR != 300 {
		t.Fatalf("unexpected kpi: %+v", kpi.Rooms)
	}

	entries, _ := s.Audit(2025, 3)
	if len(entries) != 4 || entries[0].User != "GM" || !entries[0].Time.Equal(fixedNow) {
		t.Fatalf("unexpected audit: %+v", entries)
	}

	again, err := s.SaveMonth(ctx, 2025, 3, scenarioEdit(), "GM")
	if err != nil || len(again.Changes) != 0 {
		t.Fatalf("re-saving unchanged data must yield no changes: %+v %v", again.Changes, err)
	}
	if entries, _ := s.Audit(2025, 3); len(entries) != 4 {
		t.Fatalf("audit grew on empty change set: %d", len(entries))
	}
}

// TestAuditLengthIsSumOfChanges 审计长度等于各次保存变更数之和
func TestAuditLengthIsSumOfChanges(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(nil)

	total := 0
	for i := 1; i <= 3; i++ {
		edit := model.Grid{
			Columns: []string{"rooms.oos_qty", "pokoje_do_sprzedania"},
			Rows: []model.GridRow{{Date: model.Date(2025, 3, i), Cells: map[string]model.Value{
				"rooms.oos_qty":        model.Num(float64(i)),
				"pokoje_do_sprzedania": model.Num(50),
			}}},
		}
		res, err := s.SaveMonth(ctx, 2025, 3, edit, "")
		if err != nil {
			t.Fatalf("SaveMonth failed: %v", err)
		}
		total += len(res.Changes)
	}
	entries, _ := s.Audit(2025, 3)
	if len(entries) != total || total != 6 {
		t.Fatalf("audit=%d sum=%d", len(entries), total)
	}
	if entries[0].User != "GM" {
		t.Fatalf("empty user must default to GM, got %q", entries[0].User)
	}
	if entries[0].Metric != "rooms.available_qty" {
		t.Fatalf("legacy column must be audited under canonical name, got %s", entries[0].Metric)
	}
}

// TestSaveRejectsInvalidRows 月外日期与重复日期在修改前被拒绝
func TestSaveRejectsInvalidRows(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(nil)

	edit := scenarioEdit()
	edit.Rows = append(edit.Rows, model.GridRow{Date: model.Date(2025, 4, 1), Cells: map[string]model.Value{}})
	if _, err := s.SaveMonth(ctx, 2025, 3, edit, "GM"); !errors.Is(err, model.ErrDateOutsideMonth) {
		t.Fatalf("want ErrDateOutsideMonth got %v", err)
	}

	edit = scenarioEdit()
	edit.Rows = append(edit.Rows, edit.Rows[0])
	if _, err := s.SaveMonth(ctx, 2025, 3, edit, "GM"); !errors.Is(err, model.ErrDuplicateDate) {
		t.Fatalf("want ErrDuplicateDate got %v", err)
	}

	tbl, _, err := s.GetMonthTable(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("GetMonthTable failed: %v", err)
	}
	if tbl.Days[0].Get(model.RoomsAvailableQty).IsSet() {
		t.Fatalf("rejected save mutated the store")
	}
	if entries, _ := s.Audit(2025, 3); len(entries) != 0 {
		t.Fatalf("rejected save wrote audit entries")
	}
}

func TestGetMonthTableAutoEnsures(t *testing.T) {
	s := newTestSession(nil)
	tbl, _, err := s.GetMonthTable(context.Background(), 2026, 2)
	if err != nil {
		t.Fatalf("GetMonthTable failed: %v", err)
	}
	if len(tbl.Days) != 28 {
		t.Fatalf("want 28 days got %d", len(tbl.Days))
	}
	if st := s.Status(); len(st.Years) != 1 || st.Years[0] != 2026 {
		t.Fatalf("year not ensured: %+v", st.Years)
	}
	if _, _, err := s.GetMonthTable(context.Background(), 2026, 0); !errors.Is(err, model.ErrInvalidMonth) {
		t.Fatalf("want ErrInvalidMonth got %v", err)
	}
}

// TestSheetStorePushAndPull 保存推送到表格存储，新会话初始化时拉取
func TestSheetStorePushAndPull(t *testing.T) {
	ctx := context.Background()
	sheets := newFakeSheets()

	first := newTestSession(sheets)
	if _, err := first.SaveMonth(ctx, 2025, 3, scenarioEdit(), "GM"); err != nil {
		t.Fatalf("SaveMonth failed: %v", err)
	}
	if sheets.writes != 1 {
		t.Fatalf("want 1 push got %d", sheets.writes)
	}

	second := newTestSession(sheets)
	tbl, warnings, err := second.GetMonthTable(ctx, 2025, 3)
	if err != nil || len(warnings) != 0 {
		t.Fatalf("GetMonthTable: %v %v", err, warnings)
	}
	if !tbl.Days[0].Get(model.RoomsNetRevenuePLN).Equal(model.Num(18000)) {
		t.Fatalf("pulled data missing")
	}
	if st := second.Status(); st.LastSync == nil || st.LastSync.Direction != "pull" || !st.LastSync.OK {
		t.Fatalf("unexpected last sync: %+v", st.LastSync)
	}
}

// TestSheetStoreFailureDegrades 表格存储失败：保存成功并返回警告
func TestSheetStoreFailureDegrades(t *testing.T) {
	ctx := context.Background()
	sheets := newFakeSheets()
	sheets.err = errors.New("network down")
	s := newTestSession(sheets)

	_, warnings, err := s.GetMonthTable(ctx, 2025, 3)
	if err != nil {
		t.Fatalf("read failure must not fail the call: %v", err)
	}
	if len(warnings) != 1 || sheets.reads != 1 {
		t.Fatalf("want one warning after one failed read, got %v (%d reads)", warnings, sheets.reads)
	}

	res, err := s.SaveMonth(ctx, 2025, 3, scenarioEdit(), "GM")
	if err != nil {
		t.Fatalf("SaveMonth failed: %v", err)
	}
	if len(res.Changes) != 4 || len(res.Warnings) != 1 {
		t.Fatalf("want 4 changes and one warning: %+v", res)
	}
	tbl, _, _ := s.GetMonthTable(ctx, 2025, 3)
	if !tbl.Days[0].Get(model.RoomsAvailableQty).Equal(model.Num(100)) {
		t.Fatalf("in-memory save lost after push failure")
	}
	st := s.Status()
	if st.LastSync == nil || st.LastSync.OK || len(st.Warnings) != 2 {
		t.Fatalf("status must surface failures: %+v", st)
	}
}

func TestSplitEditableUsesToday(t *testing.T) {
	s := newTestSession(nil)
	tbl, _, _ := s.GetMonthTable(context.Background(), 2025, 3)
	editable, future := s.SplitEditable(tbl)
	if len(editable.Days) != 15 || len(future.Days) != 16 {
		t.Fatalf("unexpected split %d/%d", len(editable.Days), len(future.Days))
	}
}

func TestRecordsAndImport(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(nil)
	if _, err := s.Records(); !errors.Is(err, model.ErrNothingToExport) {
		t.Fatalf("want ErrNothingToExport got %v", err)
	}

	grid := model.Grid{
		Columns: []string{"przychody_pokoje_netto"},
		Rows: []model.GridRow{{Date: model.Date(2024, 7, 4), Cells: map[string]model.Value{"przychody_pokoje_netto": model.Num(900)}}},
	}
	res, err := s.Import(ctx, []model.ImportedMonth{{
		Year: 2024, Month: 7, Grid: &grid,
		Audit: []model.AuditEntry{{User: "GM", Date: model.Date(2024, 7, 4), Metric: "przychody_pokoje_netto", New: model.Num(900)}},
	}})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Months != 1 || res.AuditEntries != 1 || len(res.Years) != 1 {
		t.Fatalf("unexpected import result: %+v", res)
	}

	records, err := s.Records()
	if err != nil || len(records) != 12 {
		t.Fatalf("want 12 records got %d (%v)", len(records), err)
	}
	july := records[6]
	if !july.Table.Days[3].Get(model.RoomsNetRevenuePLN).Equal(model.Num(900)) {
		t.Fatalf("imported value missing")
	}
	if len(july.Audit) != 1 || july.Audit[0].Metric != "rooms.net_revenue_pln" {
		t.Fatalf("imported audit not migrated: %+v", july.Audit)
	}
	missing, _ := s.MissingDays(ctx, 2024, 7)
	if len(missing) != 30 {
		t.Fatalf("want 30 missing days got %d", len(missing))
	}
	if st := s.Status(); st.LastImport == nil {
		t.Fatalf("last import time not recorded")
	}
}

func TestRoomsYear(t *testing.T) {
	s := newTestSession(nil)
	matrix, err := s.RoomsYear(context.Background(), 2025)
	if err != nil || len(matrix) != 12 {
		t.Fatalf("RoomsYear: %d %v", len(matrix), err)
	}
}
