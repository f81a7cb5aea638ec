package model

import "errors"

var (
	// ErrNotInitialized 年份尚未初始化
	ErrNotInitialized = errors.New("year not initialized")
	// ErrNothingToExport 会话中没有可导出的数据
	ErrNothingToExport = errors.New("brak danych w sesji do eksportu")
	// ErrDateOutsideMonth 编辑行的日期不属于该月
	ErrDateOutsideMonth = errors.New("date outside month")
	// ErrDuplicateDate 编辑中出现重复日期
	ErrDuplicateDate = errors.New("duplicate date")
	// ErrInvalidMonth 月份不在 1..12
	ErrInvalidMonth = errors.New("invalid month")
	// ErrReadOnly 只读角色不能修改数据
	ErrReadOnly = errors.New("read-only role")
)
