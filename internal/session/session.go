// Package session 单会话的月表状态：初始化年份、读取、保存（审计）、拆分、指标与导出
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"jamlo/internal/model"
	"jamlo/internal/parser"
	"jamlo/internal/service/audit"
	"jamlo/internal/service/calculator"
	"jamlo/internal/service/migrate"
	memstore "jamlo/internal/service/store"
)

// SheetStore 外部表格存储（云端表格或本地文件）
//
// ReadSheet 在表格不存在时返回 (nil, nil)。
type SheetStore interface {
	ReadSheet(ctx context.Context, fileRef, sheet string) (*model.Grid, error)
	UpsertSheet(ctx context.Context, fileRef, sheet string, g model.Grid) error
}

// Options 会话参数
type Options struct {
	DefaultUser  string
	Location     *time.Location
	Now          func() time.Time
	Sheets       SheetStore // 可为空：仅内存
	Backend      string     // 表格存储类型（状态展示用）
	FileRef      string
	SheetTimeout time.Duration
}

// SyncInfo 最近一次表格存储同步
type SyncInfo struct {
	Direction string    `json:"direction"`
	Sheet     string    `json:"sheet"`
	OK        bool      `json:"ok"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

// Status 会话状态
type Status struct {
	SessionID   string     `json:"sessionId"`
	StartedAt   time.Time  `json:"startedAt"`
	Today       string     `json:"today"`
	Years       []int      `json:"years"`
	Backend     string     `json:"backend"`
	FileRef     string     `json:"fileRef,omitempty"`
	LastSync    *SyncInfo  `json:"lastSync,omitempty"`
	LastImport  *time.Time `json:"lastImport,omitempty"`
	Warnings    []string   `json:"warnings"`
	DefaultUser string     `json:"defaultUser"`
}

// SaveResult 保存结果
type SaveResult struct {
	Changes   model.ChangeSet    `json:"changes"`
	Conflicts []migrate.Conflict `json:"conflicts,omitempty"`
	Warnings  []string           `json:"warnings,omitempty"`
}

// ImportResult 导入结果
type ImportResult struct {
	Months       int      `json:"months"`
	Years        []int    `json:"years"`
	AuditEntries int      `json:"auditEntries"`
	Conflicts    int      `json:"conflicts"`
	Warnings     []string `json:"warnings,omitempty"`
}

const maxWarnings = 50

// Session 一个用户会话：所有交互串行执行
type Session struct {
	mu         sync.Mutex
	id         string
	startedAt  time.Time
	opts       Options
	store      *memstore.MemoryStore
	lastSync   *SyncInfo
	lastImport *time.Time
	warnings   []string
}

// New 创建会话
func New(opts Options) *Session {
	if opts.DefaultUser == "" {
		opts.DefaultUser = "GM"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SheetTimeout <= 0 {
		opts.SheetTimeout = 10 * time.Second
	}
	if opts.Backend == "" {
		opts.Backend = "memory"
	}
	return &Session{
		id:        uuid.NewString(),
		startedAt: opts.Now(),
		opts:      opts,
		store:     memstore.NewMemoryStore(),
	}
}

// ID 会话标识
func (s *Session) ID() string { return s.id }

// Today 会话时区下的今天（UTC 零点表示）
func (s *Session) Today() time.Time {
	return model.TruncateDay(s.opts.Now().In(s.opts.Location))
}

func (s *Session) now() time.Time {
	return s.opts.Now().In(s.opts.Location)
}

func (s *Session) warnLocked(format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	log.Printf("[session] warning: %s", msg)
	s.warnings = append(s.warnings, msg)
	if len(s.warnings) > maxWarnings {
		s.warnings = s.warnings[len(s.warnings)-maxWarnings:]
	}
	return msg
}

// EnsureYear 初始化某年 12 个月：缺失月份先尝试从表格存储读取，否则创建空表
func (s *Session) EnsureYear(ctx context.Context, year int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureYearLocked(ctx, year)
}

func (s *Session) ensureYearLocked(ctx context.Context, year int) ([]string, error) {
	if s.store.Initialized(year) {
		return nil, nil
	}

	var warnings []string
	pulled := make(map[int]*model.Grid)
	if s.opts.Sheets != nil {
		for month := 1; month <= 12; month++ {
			sheet := parser.MonthSheetName(year, month)
			g, err := s.readSheetLocked(ctx, sheet)
			if err != nil {
				warnings = append(warnings, s.warnLocked("nie udało się odczytać %s: %v", sheet, err))
				if errors.Is(err, context.Canceled) {
					return warnings, err
				}
				// 表格存储不可用：其余月份只在内存中创建
				break
			}
			if g != nil {
				pulled[month] = g
			}
		}
	}

	reports := s.store.EnsureYear(year, func(month int) *model.Grid { return pulled[month] })
	for _, r := range reports {
		if len(r.Conflicts) > 0 {
			warnings = append(warnings, s.warnLocked("%04d-%02d: %d konfliktów kolumn (zachowano nowe nazwy)", r.Year, r.Month, len(r.Conflicts)))
		}
	}
	s.migrateAuditLocked()
	return warnings, nil
}

func (s *Session) migrateAuditLocked() {
	s.store.MigrateAudit(func(entries []model.AuditEntry) []model.AuditEntry {
		out, _ := migrate.AuditEntries(entries)
		return out
	})
}

func (s *Session) readSheetLocked(ctx context.Context, sheet string) (*model.Grid, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SheetTimeout)
	defer cancel()

	g, err := s.opts.Sheets.ReadSheet(ctx, s.opts.FileRef, sheet)
	s.recordSyncLocked("pull", sheet, err)
	return g, err
}

func (s *Session) upsertSheetLocked(ctx context.Context, sheet string, g model.Grid) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.SheetTimeout)
	defer cancel()

	err := s.opts.Sheets.UpsertSheet(ctx, s.opts.FileRef, sheet, g)
	s.recordSyncLocked("push", sheet, err)
	return err
}

func (s *Session) recordSyncLocked(direction, sheet string, err error) {
	info := &SyncInfo{Direction: direction, Sheet: sheet, OK: err == nil, At: s.now()}
	if err != nil {
		info.Error = err.Error()
	}
	s.lastSync = info
}

// GetMonthTable 读取月表（年份未初始化时自动初始化）
func (s *Session) GetMonthTable(ctx context.Context, year, month int) (model.MonthTable, []string, error) {
	if err := model.ValidMonth(month); err != nil {
		return model.MonthTable{}, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	warnings, err := s.ensureYearLocked(ctx, year)
	if err != nil {
		return model.MonthTable{}, warnings, err
	}
	t, err := s.store.Get(year, month)
	return t, warnings, err
}

// SaveMonth 保存编辑：校验、合并、比较、写审计、替换月表，并推送到表格存储
//
// 推送失败只产生警告，内存数据已保存。
func (s *Session) SaveMonth(ctx context.Context, year, month int, edit model.Grid, user string) (SaveResult, error) {
	if err := model.ValidMonth(month); err != nil {
		return SaveResult{}, err
	}
	if err := audit.ValidateEdit(edit, year, month); err != nil {
		return SaveResult{}, err
	}
	user = strings.TrimSpace(user)
	if user == "" {
		user = s.opts.DefaultUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	warnings, err := s.ensureYearLocked(ctx, year)
	if err != nil {
		return SaveResult{Warnings: warnings}, err
	}
	stored, err := s.store.Get(year, month)
	if err != nil {
		return SaveResult{Warnings: warnings}, err
	}

	merged, report := audit.Merge(stored, edit)
	changes := audit.Diff(stored, merged)
	result := SaveResult{Changes: changes, Conflicts: report.Conflicts, Warnings: warnings}
	if len(changes) == 0 {
		return result, nil
	}

	s.store.AppendAudit(year, month, changes.Entries(user, s.now())...)
	if err := s.store.Replace(year, month, merged); err != nil {
		return result, err
	}
	log.Printf("[session] %s saved %04d-%02d: %d changes", user, year, month, len(changes))

	if s.opts.Sheets != nil {
		sheet := parser.MonthSheetName(year, month)
		if err := s.upsertSheetLocked(ctx, sheet, merged.Grid()); err != nil {
			result.Warnings = append(result.Warnings, s.warnLocked("zapis do arkusza %s nie powiódł się, dane zostały tylko w sesji: %v", sheet, err))
		}
	}
	return result, nil
}

// Audit 月份审计日志（按追加顺序）
func (s *Session) Audit(year, month int) ([]model.AuditEntry, error) {
	if err := model.ValidMonth(month); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Audit(year, month), nil
}

// SplitEditable 以今天为界拆分月表
func (s *Session) SplitEditable(t model.MonthTable) (editable, future model.MonthTable) {
	return model.SplitEditable(t, s.Today())
}

// MissingDays 缺数日
func (s *Session) MissingDays(ctx context.Context, year, month int) ([]time.Time, error) {
	t, _, err := s.GetMonthTable(ctx, year, month)
	if err != nil {
		return nil, err
	}
	return model.MissingDays(t), nil
}

// KPI 月度与年初至今指标
func (s *Session) KPI(ctx context.Context, year, month int) (calculator.Summary, error) {
	if err := model.ValidMonth(month); err != nil {
		return calculator.Summary{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureYearLocked(ctx, year); err != nil {
		return calculator.Summary{}, err
	}
	tables, err := s.store.Months(year, month)
	if err != nil {
		return calculator.Summary{}, err
	}
	return calculator.Summarize(year, month, tables), nil
}

// RoomsYear 全年 12 个月客房指标
func (s *Session) RoomsYear(ctx context.Context, year int) ([]calculator.RoomsKPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.ensureYearLocked(ctx, year); err != nil {
		return nil, err
	}
	tables, err := s.store.Months(year, 12)
	if err != nil {
		return nil, err
	}
	return calculator.RoomsMatrix(tables), nil
}

// Records 导出快照；会话为空时返回 ErrNothingToExport
func (s *Session) Records() ([]model.MonthRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Empty() {
		return nil, model.ErrNothingToExport
	}
	return s.store.Records(), nil
}

// Import 载入工作簿中的月份：数据表经迁移后载入，审计条目追加，涉及的年份补齐 12 个月
//
// 已存在的月份被工作簿中的数据替换。
func (s *Session) Import(ctx context.Context, months []model.ImportedMonth) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result ImportResult
	years := map[int]bool{}
	for _, m := range months {
		if err := model.ValidMonth(m.Month); err != nil {
			return result, err
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !years[m.Year] {
			years[m.Year] = true
			result.Years = append(result.Years, m.Year)
		}
		if m.Grid != nil {
			t, report := migrate.Migrate(*m.Grid, m.Year, m.Month)
			if err := s.store.Load(m.Year, m.Month, t); err != nil {
				return result, err
			}
			result.Months++
			result.Conflicts += len(report.Conflicts)
			if report.HasIssues() {
				result.Warnings = append(result.Warnings, s.warnLocked(
					"%04d-%02d: konflikty %d, wiersze spoza miesiąca %d, duplikaty dat %d",
					m.Year, m.Month, len(report.Conflicts), len(report.OutOfMonth), len(report.Duplicates)))
			}
		}
		if len(m.Audit) > 0 {
			entries, _ := migrate.AuditEntries(m.Audit)
			s.store.AppendAudit(m.Year, m.Month, entries...)
			result.AuditEntries += len(entries)
		}
	}
	for _, y := range result.Years {
		s.store.EnsureYear(y, nil)
	}
	s.migrateAuditLocked()

	at := s.now()
	s.lastImport = &at
	log.Printf("[session] imported %d months, %d audit entries", result.Months, result.AuditEntries)
	return result, nil
}

// Status 会话状态
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		SessionID:   s.id,
		StartedAt:   s.startedAt,
		Today:       s.Today().Format(model.DateLayout),
		Years:       s.store.Years(),
		Backend:     s.opts.Backend,
		FileRef:     s.opts.FileRef,
		Warnings:    append([]string{}, s.warnings...),
		DefaultUser: s.opts.DefaultUser,
	}
	if s.lastSync != nil {
		cp := *s.lastSync
		st.LastSync = &cp
	}
	if s.lastImport != nil {
		cp := *s.lastImport
		st.LastImport = &cp
	}
	return st
}
