package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jamlo/internal/model"
)

// ReadSheet 读取表格；不存在时返回 (nil, nil)
func (s *Store) ReadSheet(ctx context.Context, fileRef, sheet string) (*model.Grid, error) {
	g, status, err := s.readSheet(ctx, fileRef, sheet)
	s.logSync(ctx, fileRef, sheet, DirectionPull, status, err)
	return g, err
}

func (s *Store) readSheet(ctx context.Context, fileRef, sheet string) (*model.Grid, string, error) {
	var (
		payload   []byte
		encrypted bool
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT payload, encrypted FROM sheets
		WHERE file_ref = ? AND sheet_name = ?
	`, fileRef, sheet).Scan(&payload, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, StatusMissing, nil
	}
	if err != nil {
		return nil, StatusFailed, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	if encrypted {
		if s.identity == nil {
			return nil, StatusFailed, fmt.Errorf("%s: %w", sheet, ErrPassphraseRequired)
		}
		if payload, err = decryptData(payload, s.identity); err != nil {
			return nil, StatusFailed, fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	var g model.Grid
	if err := json.Unmarshal(payload, &g); err != nil {
		return nil, StatusFailed, fmt.Errorf("failed to decode sheet %s: %w", sheet, err)
	}
	return &g, StatusOK, nil
}

// UpsertSheet 写入或替换表格
func (s *Store) UpsertSheet(ctx context.Context, fileRef, sheet string, g model.Grid) error {
	err := s.upsertSheet(ctx, fileRef, sheet, g)
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	s.logSync(ctx, fileRef, sheet, DirectionPush, status, err)
	return err
}

func (s *Store) upsertSheet(ctx context.Context, fileRef, sheet string, g model.Grid) error {
	payload, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to encode sheet %s: %w", sheet, err)
	}
	encrypted := s.recipient != nil
	if encrypted {
		if payload, err = encryptData(payload, s.recipient); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sheets (file_ref, sheet_name, payload, encrypted, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_ref, sheet_name) DO UPDATE SET
			payload = excluded.payload,
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at
	`, fileRef, sheet, payload, encrypted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert sheet %s: %w", sheet, err)
	}
	return nil
}

// ListSheets 列出某 fileRef 下的全部表格名
func (s *Store) ListSheets(ctx context.Context, fileRef string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sheet_name FROM sheets WHERE file_ref = ? ORDER BY sheet_name
	`, fileRef)
	if err != nil {
		return nil, fmt.Errorf("failed to list sheets: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan sheet name: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
