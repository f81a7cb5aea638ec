package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

const (
	DirectionPush = "push"
	DirectionPull = "pull"

	StatusOK      = "ok"
	StatusMissing = "missing"
	StatusFailed  = "failed"
)

// SyncLog 一次同步记录
type SyncLog struct {
	ID        string    `json:"id"`
	FileRef   string    `json:"fileRef"`
	Sheet     string    `json:"sheet"`
	Direction string    `json:"direction"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// logSync 记录同步日志；记录失败只打印日志
func (s *Store) logSync(ctx context.Context, fileRef, sheet, direction, status string, syncErr error) {
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	_, err := s.db.ExecContext(context.WithoutCancel(ctx), `
		INSERT INTO sync_logs (id, file_ref, sheet_name, direction, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), fileRef, sheet, direction, status, msg, time.Now().UTC())
	if err != nil {
		log.Printf("[store] failed to write sync log: %v", err)
	}
}

// RecentSyncLogs 最近的同步记录（新的在前）
func (s *Store) RecentSyncLogs(ctx context.Context, limit int) ([]SyncLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_ref, sheet_name, direction, status, error_message, created_at
		FROM sync_logs
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync logs: %w", err)
	}
	defer rows.Close()

	var out []SyncLog
	for rows.Next() {
		var l SyncLog
		if err := rows.Scan(&l.ID, &l.FileRef, &l.Sheet, &l.Direction, &l.Status, &l.Error, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
