package store

import (
	"fmt"
	"sort"
	"sync"

	"jamlo/internal/model"
	"jamlo/internal/service/migrate"
)

// MonthKey (年, 月)
type MonthKey struct {
	Year  int
	Month int
}

// LoaderFunc 为缺失的月份提供原始表格（无数据返回 nil）
type LoaderFunc func(month int) *model.Grid

// MemoryStore 内存月表存储
//
// 读取总是返回深拷贝；审计日志只追加。
type MemoryStore struct {
	tables        map[MonthKey]model.MonthTable
	audit         map[MonthKey][]model.AuditEntry
	years         map[int]bool
	auditMigrated bool
	mu            sync.RWMutex
}

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[MonthKey]model.MonthTable),
		audit:  make(map[MonthKey][]model.AuditEntry),
		years:  make(map[int]bool),
	}
}

// EnsureYear 保证某年 12 个月都存在且为规范结构
//
// 缺失的月份优先使用 load 提供的表格（经迁移），否则创建空表；已有月份重新迁移。
// 重复调用不改变任何数据。
func (s *MemoryStore) EnsureYear(year int, load LoaderFunc) []migrate.Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	var reports []migrate.Report
	for month := 1; month <= 12; month++ {
		key := MonthKey{year, month}
		if t, ok := s.tables[key]; ok {
			s.tables[key] = migrate.Table(t)
			continue
		}
		var g *model.Grid
		if load != nil {
			g = load(month)
		}
		if g == nil {
			s.tables[key] = model.NewMonthTable(year, month)
			continue
		}
		t, report := migrate.Migrate(*g, year, month)
		s.tables[key] = t
		reports = append(reports, report)
	}
	s.years[year] = true
	return reports
}

// Initialized 年份是否已初始化
func (s *MemoryStore) Initialized(year int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.years[year]
}

// Get 获取月表（深拷贝）
func (s *MemoryStore) Get(year, month int) (model.MonthTable, error) {
	if err := model.ValidMonth(month); err != nil {
		return model.MonthTable{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.years[year] {
		return model.MonthTable{}, fmt.Errorf("%w: %d", model.ErrNotInitialized, year)
	}
	return s.tables[MonthKey{year, month}].Clone(), nil
}

// Months 获取某年 1..upTo 月的月表（深拷贝，按月份升序）
func (s *MemoryStore) Months(year, upTo int) ([]model.MonthTable, error) {
	if err := model.ValidMonth(upTo); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.years[year] {
		return nil, fmt.Errorf("%w: %d", model.ErrNotInitialized, year)
	}
	out := make([]model.MonthTable, 0, upTo)
	for month := 1; month <= upTo; month++ {
		out = append(out, s.tables[MonthKey{year, month}].Clone())
	}
	return out, nil
}

// Replace 替换月表（保存时使用）
func (s *MemoryStore) Replace(year, month int, t model.MonthTable) error {
	if err := model.ValidMonth(month); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.years[year] {
		return fmt.Errorf("%w: %d", model.ErrNotInitialized, year)
	}
	s.tables[MonthKey{year, month}] = t.Clone()
	return nil
}

// Load 导入月表（不标记年份已初始化，随后需调用 EnsureYear）
func (s *MemoryStore) Load(year, month int, t model.MonthTable) error {
	if err := model.ValidMonth(month); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[MonthKey{year, month}] = t.Clone()
	return nil
}

// AppendAudit 追加审计条目
func (s *MemoryStore) AppendAudit(year, month int, entries ...model.AuditEntry) {
	if len(entries) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := MonthKey{year, month}
	s.audit[key] = append(s.audit[key], entries...)
}

// Audit 获取审计日志副本（按追加顺序）
func (s *MemoryStore) Audit(year, month int) []model.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.audit[MonthKey{year, month}]
	out := make([]model.AuditEntry, len(entries))
	copy(out, entries)
	return out
}

// MigrateAudit 对全部审计日志执行一次性改写；已执行过则返回 false
func (s *MemoryStore) MigrateAudit(rewrite func([]model.AuditEntry) []model.AuditEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.auditMigrated {
		return false
	}
	for key, entries := range s.audit {
		s.audit[key] = rewrite(entries)
	}
	s.auditMigrated = true
	return true
}

// Years 已初始化的年份（升序）
func (s *MemoryStore) Years() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int, 0, len(s.years))
	for y := range s.years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// Empty 是否没有任何月表
func (s *MemoryStore) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tables) == 0
}

// Records 导出用快照：按 (年, 月) 升序的月表与审计日志
func (s *MemoryStore) Records() []model.MonthRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]MonthKey, 0, len(s.tables))
	for k := range s.tables {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Month < keys[j].Month
	})

	out := make([]model.MonthRecord, 0, len(keys))
	for _, k := range keys {
		entries := make([]model.AuditEntry, len(s.audit[k]))
		copy(entries, s.audit[k])
		out = append(out, model.MonthRecord{Table: s.tables[k].Clone(), Audit: entries})
	}
	return out
}
