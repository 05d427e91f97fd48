package cmd

import (
	"fmt"
	"time"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var goalsCmd = &cobra.Command{
	Use:     "goals",
	Aliases: []string{"goal"},
	Short:   "Savings goals and progress",
	Args:    cobra.NoArgs,
	RunE:    runGoals,
}

var goalAddCmd = &cobra.Command{
	Use:   "add <name> <target>",
	Short: "Add a savings goal",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalAdd,
}

var goalContributeCmd = &cobra.Command{
	Use:   "contribute <id> <amount>",
	Short: "Add savings to a goal",
	Args:  cobra.ExactArgs(2),
	RunE:  runGoalContribute,
}

var goalRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalRm,
}

var (
	goalCurrent  string
	goalDeadline string
	goalEmoji    string
)

func init() {
	goalAddCmd.Flags().StringVar(&goalCurrent, "current", "0", "Amount already saved")
	goalAddCmd.Flags().StringVar(&goalDeadline, "deadline", "", "Deadline as YYYY-MM-DD")
	goalAddCmd.Flags().StringVar(&goalEmoji, "emoji", "", "Goal emoji (default 🎯)")

	goalsCmd.AddCommand(goalAddCmd, goalContributeCmd, goalRmCmd)
	rootCmd.AddCommand(goalsCmd)
}

func runGoals(cmd *cobra.Command, _ []string) error {
	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	goals := l.Snapshot().Goals
	if len(goals) == 0 {
		fmt.Println("\n  No goals yet. Add one with `rupee goals add \"Emergency Fund\" 5000`.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVINGS GOALS"))
	fmt.Println()

	now := time.Now()
	rows := make([][]string, 0, len(goals))
	for _, p := range pipeline.GoalProgresses(goals) {
		g := p.Goal
		sev := model.SeverityWarning
		if p.Achieved {
			sev = model.SeverityNormal
		}
		rows = append(rows, []string{
			g.Emoji + " " + g.Name,
			cli.FormatCurrency(g.Current) + " / " + cli.FormatCurrency(g.Target),
			cli.RenderProgressBar(p.BarPercentage, sev, 20),
			cli.FormatPercent(p.Percentage),
			deadlineLabel(g.Deadline, now),
			cli.RenderMuted(shortID(g.ID)),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:    []string{"Goal", "Saved / Target", "", "Done", "Deadline", "ID"},
		Rows:       rows,
		RightAlign: []bool{false, true, false, true, false, false},
	}))
	return nil
}

// deadlineLabel renders the due date plus the days left, or "overdue".
func deadlineLabel(d model.Date, now time.Time) string {
	if d.IsZero() {
		return "-"
	}
	days := int(d.Sub(model.DateOf(now).Time).Hours() / 24)
	switch {
	case days < 0:
		return cli.FormatDate(d) + " " + cli.RenderMuted("overdue")
	case days == 0:
		return cli.FormatDate(d) + " " + cli.RenderMuted("today")
	default:
		return cli.FormatDate(d) + " " + cli.RenderMuted(fmt.Sprintf("%dd left", days))
	}
}

func runGoalAdd(cmd *cobra.Command, args []string) error {
	target, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("parsing target %q: %w", args[1], err)
	}
	current, err := decimal.NewFromString(goalCurrent)
	if err != nil {
		return fmt.Errorf("parsing --current %q: %w", goalCurrent, err)
	}
	g := model.Goal{Name: args[0], Target: target, Current: current, Emoji: goalEmoji}
	if goalDeadline != "" {
		if g.Deadline, err = model.ParseDate(goalDeadline); err != nil {
			return err
		}
	}

	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	added, err := l.AddGoal(cmd.Context(), g)
	if err != nil {
		return err
	}
	fmt.Printf("  Added goal %s %s (%s)\n", added.Emoji, added.Name, shortID(added.ID))
	return nil
}

func runGoalContribute(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", args[1], err)
	}

	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	id, err := findGoalID(l.Snapshot().Goals, args[0])
	if err != nil {
		return err
	}
	g, err := l.Contribute(cmd.Context(), id, amount)
	if err != nil {
		return err
	}
	p := pipeline.GoalProgress(g)
	fmt.Printf("  %s %s: %s of %s (%s)\n", g.Emoji, g.Name,
		cli.FormatCurrency(g.Current), cli.FormatCurrency(g.Target), cli.FormatPercent(p.Percentage))
	if p.Achieved {
		fmt.Println("  Goal reached!")
	}
	return nil
}

func runGoalRm(cmd *cobra.Command, args []string) error {
	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	id, err := findGoalID(l.Snapshot().Goals, args[0])
	if err != nil {
		return err
	}
	if err := l.DeleteGoal(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("  Deleted goal %s\n", shortID(id))
	return nil
}

// findGoalID resolves a full id, a unique id prefix or an exact name.
func findGoalID(goals []model.Goal, ref string) (string, error) {
	var match []string
	for _, g := range goals {
		if g.ID == ref || g.Name == ref {
			return g.ID, nil
		}
		if len(ref) >= 4 && len(g.ID) > len(ref) && g.ID[:len(ref)] == ref {
			match = append(match, g.ID)
		}
	}
	if len(match) == 1 {
		return match[0], nil
	}
	if len(match) > 1 {
		return "", fmt.Errorf("id prefix %q matches %d goals", ref, len(match))
	}
	return "", fmt.Errorf("no goal matching %q", ref)
}
