package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	"jamlo/internal/parser"
	"jamlo/internal/session"
	"jamlo/internal/store"
)

type storeFlags struct {
	db      string
	ref     string
	encrypt bool
}

func (s *storeFlags) set(f *flag.FlagSet) {
	f.StringVar(&s.db, "db", "sheets.db", "SQLite sheet store")
	f.StringVar(&s.ref, "ref", "", "file reference inside the store")
	f.BoolVar(&s.encrypt, "encrypt", false, "encrypt/decrypt sheets with a passphrase ($"+PassphraseEnv+" or prompt)")
}

type pushCmd struct {
	storeFlags
	in string
}

func (*pushCmd) Name() string     { return "push" }
func (*pushCmd) Synopsis() string { return "upload every month sheet of a workbook to the sheet store" }
func (*pushCmd) Usage() string {
	return `jamloctl push -in <book.xlsx> -db <sheets.db> -ref <REF> [-encrypt]
`
}

func (c *pushCmd) SetFlags(f *flag.FlagSet) {
	c.storeFlags.set(f)
	f.StringVar(&c.in, "in", "", "workbook")
}

func (c *pushCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" || c.ref == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	st, err := openStore(c.db, c.encrypt)
	if err != nil {
		return fail(err)
	}
	defer st.Close()
	if err := runPush(ctx, os.Stdout, st, c.in, c.ref); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// runPush 推送工作簿涉及年份的全部月份（迁移后）
func runPush(ctx context.Context, w io.Writer, st *store.Store, in, ref string) error {
	s, _, err := loadWorkbook(ctx, in)
	if err != nil {
		return err
	}
	records, err := s.Records()
	if err != nil {
		return err
	}
	for _, r := range records {
		sheet := parser.MonthSheetName(r.Table.Year, r.Table.Month)
		if err := st.UpsertSheet(ctx, ref, sheet, r.Table.Grid()); err != nil {
			return err
		}
		fmt.Fprintln(w, sheet)
	}
	return nil
}

type pullCmd struct {
	storeFlags
	year int
	out  string
}

func (*pullCmd) Name() string     { return "pull" }
func (*pullCmd) Synopsis() string { return "read a year from the sheet store into a workbook" }
func (*pullCmd) Usage() string {
	return `jamloctl pull -db <sheets.db> -ref <REF> -year <Y> -out <book.xlsx> [-encrypt]
`
}

func (c *pullCmd) SetFlags(f *flag.FlagSet) {
	c.storeFlags.set(f)
	f.IntVar(&c.year, "year", 0, "year")
	f.StringVar(&c.out, "out", "", "target workbook")
}

func (c *pullCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ref == "" || c.year == 0 || c.out == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	st, err := openStore(c.db, c.encrypt)
	if err != nil {
		return fail(err)
	}
	defer st.Close()
	if err := runPull(ctx, os.Stdout, st, c.ref, c.year, c.out); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// runPull 经会话初始化年份（读取表格存储），再导出；读取失败视为错误
func runPull(ctx context.Context, w io.Writer, st *store.Store, ref string, year int, out string) error {
	s := session.New(session.Options{Location: time.Local, Sheets: st, Backend: "sqlite", FileRef: ref})
	warnings, err := s.EnsureYear(ctx, year)
	if err != nil {
		return err
	}
	if len(warnings) > 0 {
		return fmt.Errorf("pull %d: %s", year, warnings[0])
	}
	n, err := writeWorkbook(s, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d miesięcy\n", out, n)
	return nil
}

type historyCmd struct {
	db    string
	limit int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list recent sheet store synchronisations" }
func (*historyCmd) Usage() string {
	return `jamloctl history [-db <sheets.db>] [-n 20]
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "sheets.db", "SQLite sheet store")
	f.IntVar(&c.limit, "n", 20, "number of entries")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	st, err := store.New(c.db)
	if err != nil {
		return fail(err)
	}
	defer st.Close()
	if err := runHistory(ctx, os.Stdout, st, c.limit); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func runHistory(ctx context.Context, w io.Writer, st *store.Store, limit int) error {
	logs, err := st.RecentSyncLogs(ctx, limit)
	if err != nil {
		return err
	}
	for _, l := range logs {
		line := fmt.Sprintf("%s  %-4s  %-7s  %s/%s", l.CreatedAt.Local().Format("2006-01-02 15:04:05"), l.Direction, l.Status, l.FileRef, l.Sheet)
		if l.Error != "" {
			line += "  " + l.Error
		}
		fmt.Fprintln(w, line)
	}
	return nil
}
