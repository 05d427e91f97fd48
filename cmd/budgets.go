package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var budgetsCmd = &cobra.Command{
	Use:     "budgets",
	Aliases: []string{"budget"},
	Short:   "Budget utilization by category",
	Args:    cobra.NoArgs,
	RunE:    runBudgets,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <category> <limit>",
	Short: "Create or update a category budget",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetSet,
}

var budgetRmCmd = &cobra.Command{
	Use:   "rm <category>",
	Short: "Delete a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetRm,
}

var (
	budgetDerive bool
	budgetSpent  string
	budgetEmoji  string
	budgetMonth  string
)

func init() {
	budgetsCmd.Flags().BoolVar(&budgetDerive, "derive", false, "Recompute spent from expense transactions")
	budgetSetCmd.Flags().StringVar(&budgetSpent, "spent", "", "Amount already spent (kept when omitted)")
	budgetSetCmd.Flags().StringVar(&budgetEmoji, "emoji", "", "Override the category emoji")
	budgetSetCmd.Flags().StringVar(&budgetMonth, "month", "", "Scope the budget to one month, as YYYY-MM")

	budgetsCmd.AddCommand(budgetSetCmd, budgetRmCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func runBudgets(cmd *cobra.Command, _ []string) error {
	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	ds := l.Snapshot()
	budgets := budgetsOf(ds)
	if budgetDerive && !appCfg.Budget.DeriveSpent {
		budgets = pipeline.DeriveBudgetSpent(ds.Budgets, ds.Transactions)
	}
	if len(budgets) == 0 {
		fmt.Println("\n  No budgets set. Add one with `rupee budgets set Food 1000`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGETS"))
	fmt.Println()

	rows := make([][]string, 0, len(budgets)+2)
	var totalLimit, totalSpent decimal.Decimal
	for _, st := range pipeline.BudgetStatuses(budgets) {
		b := st.Budget
		totalLimit = totalLimit.Add(b.Limit)
		totalSpent = totalSpent.Add(b.Spent)

		name := b.Emoji + " " + b.Category
		if b.Month != 0 {
			name += cli.RenderMuted(fmt.Sprintf(" %04d-%02d", b.Year, b.Month))
		}
		rows = append(rows, []string{
			name,
			cli.FormatCurrency(b.Spent) + " / " + cli.FormatCurrency(b.Limit),
			cli.RenderProgressBar(st.BarPercentage, st.Severity, 20),
			cli.SeverityStyle(st.Severity).Render(fmt.Sprintf("%.0f%%", st.Percentage)),
			cli.FormatRemaining(st.Remaining),
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{
		"TOTAL",
		cli.FormatCurrency(totalSpent) + " / " + cli.FormatCurrency(totalLimit),
		"",
		cli.FormatPercent(pipeline.Share(totalSpent, totalLimit)),
		cli.FormatRemaining(totalLimit.Sub(totalSpent)),
	})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:    []string{"Category", "Spent / Limit", "", "Used", "Remaining"},
		Rows:       rows,
		RightAlign: []bool{false, true, false, true, true},
	}))

	printAlerts(pipeline.BudgetAlerts(budgets))
	return nil
}

func runBudgetSet(cmd *cobra.Command, args []string) error {
	limit, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("parsing limit %q: %w", args[1], err)
	}

	b := model.Budget{Category: args[0], Limit: limit, Emoji: budgetEmoji}
	if budgetMonth != "" {
		d, err := model.ParseDate(budgetMonth + "-01")
		if err != nil {
			return fmt.Errorf("--month wants YYYY-MM: %w", err)
		}
		b.Year, b.Month = d.Year(), int(d.Month())
	}

	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if existing, err := l.Budget(b.Key()); err == nil {
		b.Spent = existing.Spent
		if b.Emoji == "" {
			b.Emoji = existing.Emoji
		}
	}
	if budgetSpent != "" {
		spent, err := decimal.NewFromString(budgetSpent)
		if err != nil {
			return fmt.Errorf("parsing spent %q: %w", budgetSpent, err)
		}
		b.Spent = spent
	}

	saved, err := l.SetBudget(cmd.Context(), b)
	if err != nil {
		return err
	}
	st := pipeline.BudgetStatus(saved)
	fmt.Printf("  %s %s: %s of %s (%s)\n", saved.Emoji, saved.Category,
		cli.FormatCurrency(saved.Spent), cli.FormatCurrency(saved.Limit),
		cli.SeverityStyle(st.Severity).Render(fmt.Sprintf("%.0f%%", st.Percentage)))
	return nil
}

func runBudgetRm(cmd *cobra.Command, args []string) error {
	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	if err := l.DeleteBudget(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("  Deleted budget %s\n", strings.TrimSpace(args[0]))
	return nil
}
