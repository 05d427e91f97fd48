package cmd

import (
	"fmt"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Totals, spending by category and budget alerts",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	ds := l.Snapshot()
	if len(ds.Transactions) == 0 {
		fmt.Println("\n  No transactions yet.")
		fmt.Println("  Add one with `rupee tx add`, or try `rupee --demo`.")
		return nil
	}

	totals := pipeline.Totals(ds.Transactions)

	fmt.Println()
	fmt.Println(cli.RenderTitle("RUPEE  Dashboard"))
	fmt.Println()

	balance := cli.FormatCurrency(totals.Balance)
	if totals.Balance.IsNegative() {
		balance = "-" + cli.FormatCurrency(totals.Balance.Neg())
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total Income", cli.FormatCurrency(totals.Income)},
			{"Total Expense", cli.FormatCurrency(totals.Expense)},
			{"---"},
			{"Balance", balance},
			{"Savings Rate", cli.FormatPercent(totals.SavingsRate)},
			{"---"},
			{"Transactions", cli.FormatNumber(int64(len(ds.Transactions)))},
		},
	}))

	byCat := pipeline.ExpenseByCategory(ds.Transactions)
	if len(byCat) > 0 {
		fmt.Println()
		rows := make([][]string, 0, len(byCat)+2)
		for _, c := range byCat {
			rows = append(rows, []string{
				model.EmojiFor(model.Expense, c.Name) + " " + c.Name,
				cli.FormatCurrency(c.Value),
				cli.FormatPercent(pipeline.Share(c.Value, totals.Expense)),
			})
		}
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{"TOTAL", cli.FormatCurrency(totals.Expense), ""})
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Expenses by Category",
			Headers: []string{"Category", "Spent", "Share"},
			Rows:    rows,
		}))
	}

	printAlerts(pipeline.BudgetAlerts(budgetsOf(ds)))
	return nil
}

func printAlerts(alerts []model.Notification) {
	if len(alerts) == 0 {
		return
	}
	fmt.Println()
	for _, n := range alerts {
		fmt.Printf("  %s %s\n", notificationIcon(n.Kind), n.Message)
	}
}

func notificationIcon(k model.NotificationKind) string {
	switch k {
	case model.NotifyWarning:
		return "⚠"
	case model.NotifySuccess:
		return "✓"
	default:
		return "ℹ"
	}
}
