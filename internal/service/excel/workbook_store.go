package excel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/xuri/excelize/v2"

	"jamlo/internal/model"
)

const upsertScratchSheet = "~upsert"

// WorkbookStore 以本地 xlsx 文件作为表格存储：fileRef 为文件路径
type WorkbookStore struct {
	mu sync.Mutex
}

// NewWorkbookStore 创建工作簿表格存储
func NewWorkbookStore() *WorkbookStore {
	return &WorkbookStore{}
}

// ReadSheet 读取工作表；文件或工作表不存在时返回 (nil, nil)
func (s *WorkbookStore) ReadSheet(ctx context.Context, fileRef, sheet string) (*model.Grid, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(fileRef); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	f, err := excelize.OpenFile(fileRef)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fileRef, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to look up sheet %s: %w", sheet, err)
	}
	if idx < 0 {
		return nil, nil
	}
	return ReadGrid(f, sheet)
}

// UpsertSheet 写入（或替换）工作表，保留文件中的其他工作表
func (s *WorkbookStore) UpsertSheet(ctx context.Context, fileRef, sheet string, g model.Grid) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		f     *excelize.File
		fresh bool
		err   error
	)
	if _, statErr := os.Stat(fileRef); errors.Is(statErr, fs.ErrNotExist) {
		f, fresh = excelize.NewFile(), true
	} else if f, err = excelize.OpenFile(fileRef); err != nil {
		return fmt.Errorf("failed to open %s: %w", fileRef, err)
	}
	defer f.Close()

	styles, err := newSheetStyles(f)
	if err != nil {
		return err
	}
	if _, err := f.NewSheet(upsertScratchSheet); err != nil {
		return fmt.Errorf("create scratch sheet: %w", err)
	}
	if err := writeGrid(f, upsertScratchSheet, g, styles); err != nil {
		return err
	}
	if idx, _ := f.GetSheetIndex(sheet); idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return fmt.Errorf("replace sheet %s: %w", sheet, err)
		}
	}
	if err := f.SetSheetName(upsertScratchSheet, sheet); err != nil {
		return fmt.Errorf("rename sheet %s: %w", sheet, err)
	}
	if fresh && sheet != defaultSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("delete default sheet: %w", err)
		}
	}

	if dir := filepath.Dir(fileRef); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create dir %s: %w", dir, err)
		}
	}
	if err := f.SaveAs(fileRef); err != nil {
		return fmt.Errorf("failed to save %s: %w", fileRef, err)
	}
	return nil
}
