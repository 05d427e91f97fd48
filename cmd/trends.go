package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/pipeline"

	"github.com/spf13/cobra"
)

var trendsCmd = &cobra.Command{
	Use:     "trends",
	Aliases: []string{"analytics"},
	Short:   "Monthly income and expense with category trends",
	Args:    cobra.NoArgs,
	RunE:    runTrends,
}

var trendsMonths int

func init() {
	trendsCmd.Flags().IntVarP(&trendsMonths, "months", "n", 0, "Number of months (default from config)")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, _ []string) error {
	months := trendsMonths
	if months <= 0 {
		months = appCfg.General.TrendMonths
	}
	if months <= 0 {
		months = 5
	}

	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	txs := l.Transactions()
	now := time.Now()
	series := pipeline.MonthlySeries(txs, months, now)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TRENDS  Last %d months", months)))
	fmt.Println()

	incomes := make([]float64, len(series))
	expenses := make([]float64, len(series))
	peak := 0.0
	for i, p := range series {
		incomes[i] = p.Income.InexactFloat64()
		expenses[i] = p.Expense.InexactFloat64()
		peak = max(peak, incomes[i], expenses[i])
	}
	fmt.Printf("  Income   %s\n", cli.RenderSparkline(incomes))
	fmt.Printf("  Expense  %s\n", cli.RenderSparkline(expenses))
	fmt.Println()

	for i, p := range series {
		label := fmt.Sprintf("%s %d", p.Month, p.Year)
		fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-9s", label), expenses[i], peak, 30))
	}
	fmt.Println()

	rows := make([][]string, 0, len(series))
	for _, p := range series {
		rows = append(rows, []string{
			fmt.Sprintf("%s %d", p.Month, p.Year),
			cli.FormatCurrency(p.Income),
			cli.FormatCurrency(p.Expense),
			cli.FormatDelta(p.Savings),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly",
		Headers: []string{"Month", "Income", "Expense", "Savings"},
		Rows:    rows,
	}))

	trends := pipeline.CategoryTrends(txs, now)
	if len(trends) == 0 {
		return nil
	}
	fmt.Println()
	trendRows := make([][]string, 0, len(trends))
	for _, t := range trends {
		trendRows = append(trendRows, []string{
			t.Category,
			cli.FormatCurrency(t.ThisMonth),
			cli.FormatCurrency(t.LastMonth),
			cli.FormatDelta(t.Delta),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Category Trends",
		Headers: []string{"Category", "This Month", "Last Month", "Change"},
		Rows:    trendRows,
	}))
	return nil
}
