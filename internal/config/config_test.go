package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileMissingUsesDefaults(t *testing.T) {
	cfg, info, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if info.PortSpecified || cfg.Server.Port != 20262 || cfg.Session.DefaultUser != "GM" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.SheetTimeout() != 10*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.SheetTimeout())
	}
}

// TestLoadFileOverrides 文件值覆盖默认值，环境变量覆盖文件值
func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
port = 8088

[session]
default_user = "Recepcja"
timezone = "UTC"

[sheets]
backend = "workbook"
file_ref = "hotel.xlsx"
timeout_seconds = 3
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("JAMLO_SHEETS_FILE_REF", "other.xlsx")

	cfg, info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !info.PortSpecified || cfg.Server.Port != 8088 {
		t.Fatalf("port want=8088 got=%d", cfg.Server.Port)
	}
	if cfg.Session.DefaultUser != "Recepcja" || cfg.Location() != time.UTC {
		t.Fatalf("unexpected session config: %+v", cfg.Session)
	}
	if cfg.Sheets.FileRef != "other.xlsx" || cfg.SheetTimeout() != 3*time.Second {
		t.Fatalf("unexpected sheets config: %+v", cfg.Sheets)
	}
	if cfg.Sheets.DBFile != "sheets.db" {
		t.Fatalf("unset keys keep defaults, got %q", cfg.Sheets.DBFile)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sheets.Backend = "gdrive"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("unknown backend must fail")
	}
	cfg.Sheets.Backend = BackendWorkbook
	if err := cfg.Validate(); err == nil {
		t.Fatalf("workbook backend without file_ref must fail")
	}
}

func TestEnsureDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")
	dir, err := EnsureDataDir(cfg)
	if err != nil {
		t.Fatalf("EnsureDataDir failed: %v", err)
	}
	for _, sub := range []string{"uploads", "exports"} {
		if st, err := os.Stat(filepath.Join(dir, sub)); err != nil || !st.IsDir() {
			t.Fatalf("missing %s: %v", sub, err)
		}
	}
	if got := GetDataPath(cfg, "", "sheets.db"); got != filepath.Join(dir, "sheets.db") {
		t.Fatalf("unexpected data path %s", got)
	}
}
