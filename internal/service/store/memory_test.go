package store

import (
	"errors"
	"sync"
	"testing"

	"jamlo/internal/model"
)

// TestNewMemoryStore 测试创建存储
func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() returned nil")
	}
	if !store.Empty() || len(store.Years()) != 0 {
		t.Errorf("New store should be empty")
	}
}

// TestGetBeforeEnsure 未初始化的年份读取失败
func TestGetBeforeEnsure(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(2025, 3)
	if !errors.Is(err, model.ErrNotInitialized) {
		t.Fatalf("want ErrNotInitialized, got %v", err)
	}
	if _, err := store.Get(2025, 13); !errors.Is(err, model.ErrInvalidMonth) {
		t.Fatalf("want ErrInvalidMonth, got %v", err)
	}
}

// TestEnsureYear 测试初始化 12 个月
func TestEnsureYear(t *testing.T) {
	store := NewMemoryStore()
	store.EnsureYear(2025, nil)

	for month := 1; month <= 12; month++ {
		tbl, err := store.Get(2025, month)
		if err != nil {
			t.Fatalf("Get(%d) failed: %v", month, err)
		}
		if len(tbl.Days) != len(model.DaysIn(2025, month)) {
			t.Errorf("month %d has %d days", month, len(tbl.Days))
		}
	}
	if years := store.Years(); len(years) != 1 || years[0] != 2025 {
		t.Errorf("Years() = %v", years)
	}
}

// TestEnsureYearIdempotent 重复初始化不改变数据
func TestEnsureYearIdempotent(t *testing.T) {
	store := NewMemoryStore()
	store.EnsureYear(2025, nil)

	tbl, _ := store.Get(2025, 3)
	tbl.Days[0].Set(model.RoomsAvailableQty, model.Num(100))
	if err := store.Replace(2025, 3, tbl); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	store.EnsureYear(2025, func(month int) *model.Grid {
		t.Fatalf("loader must not be called for present months (month %d)", month)
		return nil
	})
	got, _ := store.Get(2025, 3)
	if !got.Equal(tbl) {
		t.Errorf("EnsureYear changed stored data")
	}
}

// TestEnsureYearUsesLoader 缺失月份使用加载器并经过迁移
func TestEnsureYearUsesLoader(t *testing.T) {
	store := NewMemoryStore()
	reports := store.EnsureYear(2024, func(month int) *model.Grid {
		if month != 5 {
			return nil
		}
		return &model.Grid{
			Columns: []string{"pokoje_oos"},
			Rows: []model.GridRow{{
				Date:  model.Date(2024, 5, 3),
				Cells: map[string]model.Value{"pokoje_oos": model.Num(4)},
			}},
		}
	})
	if len(reports) != 1 || reports[0].Month != 5 {
		t.Fatalf("want one report for May, got %+v", reports)
	}
	tbl, _ := store.Get(2024, 5)
	if got := tbl.Days[2].Get(model.RoomsOOSQty); !got.Equal(model.Num(4)) {
		t.Errorf("loaded value = %v, want 4", got)
	}
}

// TestGetReturnsCopy 修改读取结果不影响存储
func TestGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	store.EnsureYear(2025, nil)

	tbl, _ := store.Get(2025, 1)
	tbl.Days[0].Set(model.RoomsAvailableQty, model.Num(1))

	again, _ := store.Get(2025, 1)
	if again.Days[0].Get(model.RoomsAvailableQty).IsSet() {
		t.Errorf("store returned shared state")
	}
}

// TestAuditAppendOnly 测试审计日志追加与一次性改名
func TestAuditAppendOnly(t *testing.T) {
	store := NewMemoryStore()
	store.AppendAudit(2025, 3, model.AuditEntry{User: "GM", Metric: "pokoje_oos"})
	store.AppendAudit(2025, 3, model.AuditEntry{User: "GM", Metric: "rooms.oos_qty"}, model.AuditEntry{User: "GM", Metric: "x"})

	entries := store.Audit(2025, 3)
	if len(entries) != 3 || entries[0].Metric != "pokoje_oos" {
		t.Fatalf("unexpected audit: %+v", entries)
	}
	entries[0].User = "INV"
	if store.Audit(2025, 3)[0].User != "GM" {
		t.Errorf("Audit() must return a copy")
	}

	calls := 0
	rewrite := func(in []model.AuditEntry) []model.AuditEntry {
		calls++
		return in
	}
	if !store.MigrateAudit(rewrite) || store.MigrateAudit(rewrite) {
		t.Errorf("MigrateAudit must run exactly once")
	}
	if calls != 1 {
		t.Errorf("rewrite called %d times", calls)
	}
}

// TestRecordsOrdered 导出快照按年月排序
func TestRecordsOrdered(t *testing.T) {
	store := NewMemoryStore()
	store.EnsureYear(2025, nil)
	store.EnsureYear(2024, nil)

	records := store.Records()
	if len(records) != 24 {
		t.Fatalf("want 24 records, got %d", len(records))
	}
	if records[0].Table.Year != 2024 || records[0].Table.Month != 1 || records[23].Table.Year != 2025 || records[23].Table.Month != 12 {
		t.Errorf("records out of order")
	}
}

// TestConcurrentAccess 测试并发访问
func TestConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	store.EnsureYear(2025, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			month := i%12 + 1
			tbl, err := store.Get(2025, month)
			if err != nil {
				t.Errorf("Get failed: %v", err)
				return
			}
			tbl.Days[0].Set(model.RoomsAvailableQty, model.Num(float64(i)))
			_ = store.Replace(2025, month, tbl)
			store.AppendAudit(2025, month, model.AuditEntry{User: "GM"})
		}(i)
	}
	wg.Wait()

	total := 0
	for month := 1; month <= 12; month++ {
		total += len(store.Audit(2025, month))
	}
	if total != 20 {
		t.Errorf("want 20 audit entries, got %d", total)
	}
}
