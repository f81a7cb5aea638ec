package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"jamlo/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "sheets.db"))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleGrid() model.Grid {
	tbl := model.NewMonthTable(2025, 3)
	tbl.Days[0].Set(model.RoomsAvailableQty, model.Num(100))
	tbl.Days[0].Set(model.RoomsNetRevenuePLN, model.Num(18000))
	return tbl.Grid()
}

func TestReadMissingSheet(t *testing.T) {
	s := newTestStore(t)
	g, err := s.ReadSheet(context.Background(), "hotel", "WYKONANIE_2025_03")
	if err != nil || g != nil {
		t.Fatalf("missing sheet must read as (nil, nil), got %v %v", g, err)
	}
}

// TestUpsertAndRead 写入后读取得到相同的表格，重复写入覆盖
func TestUpsertAndRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	g := sampleGrid()
	if err := s.UpsertSheet(ctx, "hotel", "WYKONANIE_2025_03", g); err != nil {
		t.Fatalf("UpsertSheet failed: %v", err)
	}
	g.Rows[0].Cells["rooms.available_qty"] = model.Num(90)
	if err := s.UpsertSheet(ctx, "hotel", "WYKONANIE_2025_03", g); err != nil {
		t.Fatalf("UpsertSheet replace failed: %v", err)
	}

	got, err := s.ReadSheet(ctx, "hotel", "WYKONANIE_2025_03")
	if err != nil || got == nil {
		t.Fatalf("ReadSheet failed: %v", err)
	}
	if len(got.Columns) != len(g.Columns) || len(got.Rows) != 31 {
		t.Fatalf("unexpected shape: %d cols %d rows", len(got.Columns), len(got.Rows))
	}
	if !got.Rows[0].Date.Equal(model.Date(2025, 3, 1)) {
		t.Fatalf("date mismatch: %v", got.Rows[0].Date)
	}
	if !got.Rows[0].Cells["rooms.available_qty"].Equal(model.Num(90)) || got.Rows[0].Cells["rooms.oos_qty"].IsSet() {
		t.Fatalf("values mismatch: %v", got.Rows[0].Cells)
	}

	names, err := s.ListSheets(ctx, "hotel")
	if err != nil || len(names) != 1 {
		t.Fatalf("ListSheets: %v %v", names, err)
	}
	if other, _ := s.ListSheets(ctx, "other"); len(other) != 0 {
		t.Fatalf("file refs must be isolated: %v", other)
	}
}

// TestEncryptedSheets age 加密写入，需口令读取
func TestEncryptedSheets(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.workFactor = 10
	if err := s.SetPassphrase("tajne-haslo"); err != nil {
		t.Fatalf("SetPassphrase failed: %v", err)
	}
	if !s.Encrypted() {
		t.Fatalf("store should be encrypted")
	}
	if err := s.UpsertSheet(ctx, "hotel", "WYKONANIE_2025_03", sampleGrid()); err != nil {
		t.Fatalf("UpsertSheet failed: %v", err)
	}

	got, err := s.ReadSheet(ctx, "hotel", "WYKONANIE_2025_03")
	if err != nil || got == nil || !got.Rows[0].Cells["rooms.net_revenue_pln"].Equal(model.Num(18000)) {
		t.Fatalf("encrypted round trip failed: %v", err)
	}

	_ = s.SetPassphrase("")
	if _, err := s.ReadSheet(ctx, "hotel", "WYKONANIE_2025_03"); !errors.Is(err, ErrPassphraseRequired) {
		t.Fatalf("want ErrPassphraseRequired, got %v", err)
	}

	_ = s.SetPassphrase("zle-haslo")
	if _, err := s.ReadSheet(ctx, "hotel", "WYKONANIE_2025_03"); err == nil {
		t.Fatalf("wrong passphrase must fail")
	}
}

// TestSyncLogs 每次读写记录一条同步日志
func TestSyncLogs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_ = s.UpsertSheet(ctx, "hotel", "WYKONANIE_2025_03", sampleGrid())
	_, _ = s.ReadSheet(ctx, "hotel", "WYKONANIE_2025_04")
	_, _ = s.ReadSheet(ctx, "hotel", "WYKONANIE_2025_03")

	logs, err := s.RecentSyncLogs(ctx, 10)
	if err != nil {
		t.Fatalf("RecentSyncLogs failed: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("want 3 logs got %d", len(logs))
	}
	if logs[0].Direction != DirectionPull || logs[0].Status != StatusOK {
		t.Fatalf("newest log first: %+v", logs[0])
	}
	if logs[1].Status != StatusMissing || logs[2].Direction != DirectionPush {
		t.Fatalf("unexpected logs: %+v", logs)
	}
	if logs[0].ID == "" || logs[0].CreatedAt.IsZero() {
		t.Fatalf("log id/time not set: %+v", logs[0])
	}
}
