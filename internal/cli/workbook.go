package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/google/subcommands"

	"jamlo/internal/service/calculator"
)

type migrateCmd struct {
	in  string
	out string
}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "rewrite a workbook with canonical column names" }
func (*migrateCmd) Usage() string {
	return `jamloctl migrate -in <legacy.xlsx> -out <canonical.xlsx>

  Imports every WYKONANIE_/AUDYT_ sheet, migrates legacy columns and
  audit metric names, and writes the canonical workbook.
`
}

func (c *migrateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "source workbook")
	f.StringVar(&c.out, "out", "", "target workbook")
}

func (c *migrateCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" || c.out == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err := runMigrate(ctx, os.Stdout, c.in, c.out); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func runMigrate(ctx context.Context, w io.Writer, in, out string) error {
	s, res, err := loadWorkbook(ctx, in)
	if err != nil {
		return err
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "uwaga: %s\n", warning)
	}
	n, err := writeWorkbook(s, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d miesięcy, %d wpisów audytu, %d konfliktów\n", out, n, res.AuditEntries, res.Conflicts)
	return nil
}

type kpiCmd struct {
	in    string
	year  int
	month int
}

func (*kpiCmd) Name() string     { return "kpi" }
func (*kpiCmd) Synopsis() string { return "print month and year-to-date KPIs of a workbook" }
func (*kpiCmd) Usage() string {
	return `jamloctl kpi -in <book.xlsx> -year <Y> -month <M>
`
}

func (c *kpiCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "workbook")
	f.IntVar(&c.year, "year", 0, "year")
	f.IntVar(&c.month, "month", 0, "month (1-12)")
}

func (c *kpiCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.in == "" || c.year == 0 || c.month == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if err := runKPI(ctx, os.Stdout, c.in, c.year, c.month); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func runKPI(ctx context.Context, w io.Writer, in string, year, month int) error {
	s, _, err := loadWorkbook(ctx, in)
	if err != nil {
		return err
	}
	summary, err := s.KPI(ctx, year, month)
	if err != nil {
		return err
	}
	printSummary(w, summary)
	return nil
}

func printSummary(w io.Writer, s calculator.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%04d-%02d\tmiesiąc\tod początku roku\t\n", s.Year, s.Month)
	fmt.Fprintf(tw, "Pokoje dostępne\t%.0f\t%.0f\t\n", s.Rooms.AvailableRooms, s.RoomsYTD.AvailableRooms)
	fmt.Fprintf(tw, "Pokojonoce sprzedane\t%.0f\t%.0f\t\n", s.Rooms.SoldRoomNights, s.RoomsYTD.SoldRoomNights)
	fmt.Fprintf(tw, "Obłożenie\t%s\t%s\t\n", formatPct(s.Rooms.Occupancy), formatPct(s.RoomsYTD.Occupancy))
	fmt.Fprintf(tw, "RevPOR\t%s\t%s\t\n", formatPLN(s.Rooms.RevPOR), formatPLN(s.RoomsYTD.RevPOR))
	fmt.Fprintf(tw, "Przychód pokoje\t%s\t%s\t\n", formatPLN(s.Rooms.RoomRevenue), formatPLN(s.RoomsYTD.RoomRevenue))
	fmt.Fprintf(tw, "Koszty pokoje\t%s\t%s\t\n", formatPLN(s.Rooms.DepartmentalCost), formatPLN(s.RoomsYTD.DepartmentalCost))
	fmt.Fprintf(tw, "Wynik pokoje\t%s\t%s\t\n", formatPLN(s.Rooms.Result), formatPLN(s.RoomsYTD.Result))
	fmt.Fprintf(tw, "Przychód F&B\t%s\t%s\t\n", formatPLN(s.FnB.Revenue), formatPLN(s.FnBYTD.Revenue))
	fmt.Fprintf(tw, "Wynik F&B\t%s\t%s\t\n", formatPLN(s.FnB.Result), formatPLN(s.FnBYTD.Result))
	fmt.Fprintf(tw, "Pozostałe przychody\t%s\t%s\t\n", formatPLN(s.OtherRevenue), formatPLN(s.OtherRevenueYTD))
	_ = tw.Flush()
}
