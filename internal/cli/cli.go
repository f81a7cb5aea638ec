// Package cli 离线命令行：迁移、指标、表格存储推送与拉取
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"jamlo/internal/service/excel"
	"jamlo/internal/session"
	"jamlo/internal/store"
)

// PassphraseEnv 加密口令环境变量
const PassphraseEnv = "JAMLO_SHEETS_PASSPHRASE"

const currencyPLN = "PLN"

// Register 注册全部子命令
func Register(c *subcommands.Commander) {
	c.Register(&migrateCmd{}, "workbook")
	c.Register(&kpiCmd{}, "workbook")
	c.Register(&pushCmd{}, "sheet store")
	c.Register(&pullCmd{}, "sheet store")
	c.Register(&historyCmd{}, "sheet store")
}

// loadWorkbook 读取工作簿并载入新会话（经迁移）
func loadWorkbook(ctx context.Context, path string) (*session.Session, session.ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, session.ImportResult{}, err
	}
	defer file.Close()

	p := excel.NewParser(time.Local)
	f, err := p.Open(file)
	if err != nil {
		return nil, session.ImportResult{}, err
	}
	defer f.Close()

	wb, err := p.Parse(f)
	if err != nil {
		return nil, session.ImportResult{}, err
	}
	s := session.New(session.Options{Location: time.Local})
	res, err := s.Import(ctx, wb.Months)
	return s, res, err
}

// writeWorkbook 导出会话到文件
func writeWorkbook(s *session.Session, path string) (int, error) {
	records, err := s.Records()
	if err != nil {
		return 0, err
	}
	f, err := excel.NewExporter().ExportAll(records, nil)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return len(records), nil
}

// openStore 打开 sqlite 表格存储；encrypt 时读取口令
func openStore(dbPath string, encrypt bool) (*store.Store, error) {
	st, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}
	if !encrypt {
		return st, nil
	}
	pass, err := readPassphrase()
	if err == nil {
		err = st.SetPassphrase(pass)
	}
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// readPassphrase 先读环境变量，否则在终端提示输入
func readPassphrase() (string, error) {
	if v := os.Getenv(PassphraseEnv); v != "" {
		return v, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: set %s", store.ErrPassphraseRequired, PassphraseEnv)
	}
	fmt.Fprint(os.Stderr, "Hasło: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	pass := strings.TrimSpace(string(b))
	if pass == "" {
		return "", errors.New("empty passphrase")
	}
	return pass, nil
}

// formatPLN 金额按 PLN 显示（四舍五入到分）
func formatPLN(v float64) string {
	cents := decimal.NewFromFloat(v).Shift(2).Round(0).IntPart()
	return money.New(cents, currencyPLN).Display()
}

func formatPct(v float64) string {
	return decimal.NewFromFloat(v).Shift(2).StringFixed(1) + "%"
}

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}
