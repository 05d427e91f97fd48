package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:     "tx",
	Aliases: []string{"transactions"},
	Short:   "List and manage transactions",
	RunE:    runTxList,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "Transaction list with search and type filter",
	Args:  cobra.NoArgs,
	RunE:  runTxList,
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a transaction",
	Args:  cobra.NoArgs,
	RunE:  runTxAdd,
}

var txEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a transaction; only the given flags change",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxEdit,
}

var txRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a transaction",
	Args:    cobra.ExactArgs(1),
	RunE:    runTxRm,
}

var (
	txQuery     string
	txFilter    string
	txType      string
	txLimit     int
	txAmount    string
	txCategory  string
	txDesc      string
	txDate      string
	txEmoji     string
	txNotes     string
	txRecurring bool
	txYes       bool
)

func init() {
	for _, c := range []*cobra.Command{txCmd, txListCmd} {
		c.Flags().StringVarP(&txQuery, "query", "s", "", "Search description and category")
		c.Flags().StringVarP(&txFilter, "type", "t", "all", "Filter: all, income or expense")
		c.Flags().IntVarP(&txLimit, "limit", "l", 0, "Number of transactions to show (0 = all)")
	}
	for _, c := range []*cobra.Command{txAddCmd, txEditCmd} {
		c.Flags().StringVarP(&txType, "type", "t", "expense", "income or expense")
		c.Flags().StringVarP(&txAmount, "amount", "a", "", "Amount, e.g. 25.50")
		c.Flags().StringVarP(&txCategory, "category", "c", "", "Category name")
		c.Flags().StringVarP(&txDesc, "desc", "d", "", "Description")
		c.Flags().StringVar(&txDate, "date", "", "Date as YYYY-MM-DD (default today)")
		c.Flags().StringVar(&txEmoji, "emoji", "", "Override the category emoji")
		c.Flags().StringVar(&txNotes, "notes", "", "Free-form notes")
		c.Flags().BoolVar(&txRecurring, "recurring", false, "Mark as recurring")
	}
	txRmCmd.Flags().BoolVarP(&txYes, "yes", "y", false, "Skip confirmation")

	txCmd.AddCommand(txListCmd, txAddCmd, txEditCmd, txRmCmd)
	rootCmd.AddCommand(txCmd)
}

func runTxList(cmd *cobra.Command, _ []string) error {
	filter, err := model.ParseTypeFilter(txFilter)
	if err != nil {
		return err
	}

	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	txs := pipeline.FilterTransactions(l.Transactions(), txQuery, filter)
	if len(txs) == 0 {
		fmt.Println("\n  No transactions found.")
		return nil
	}
	if txLimit > 0 && len(txs) > txLimit {
		txs = txs[:txLimit]
	}

	title := fmt.Sprintf("TRANSACTIONS  %s (showing %d)", strings.ToUpper(string(filter)), len(txs))
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		desc := tx.Description
		if tx.Recurring {
			desc += " ↻"
		}
		rows = append(rows, []string{
			cli.FormatDate(tx.Date),
			tx.Emoji + " " + cli.Truncate(tx.Category, 14),
			cli.Truncate(desc, 28),
			cli.RenderAmount(tx.Type, tx.Amount),
			cli.RenderMuted(shortID(tx.ID)),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:    []string{"Date", "Category", "Description", "Amount", "ID"},
		Rows:       rows,
		RightAlign: []bool{false, false, false, true, false},
	}))
	return nil
}

func runTxAdd(cmd *cobra.Command, _ []string) error {
	if txAmount == "" || txCategory == "" {
		return errors.New("--amount and --category are required")
	}
	tx, err := txFromFlags(cmd, model.Transaction{})
	if err != nil {
		return err
	}

	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	added, err := l.AddTransaction(cmd.Context(), tx)
	if err != nil {
		return err
	}
	fmt.Printf("  Added %s %s %s (%s)\n", added.Emoji, added.Category,
		cli.RenderAmount(added.Type, added.Amount), shortID(added.ID))
	return nil
}

func runTxEdit(cmd *cobra.Command, args []string) error {
	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	existing, err := findTransaction(l.Transactions(), args[0])
	if err != nil {
		return err
	}
	tx, err := txFromFlags(cmd, existing)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("category") && !cmd.Flags().Changed("emoji") {
		tx.Emoji = ""
	}

	updated, err := l.UpdateTransaction(cmd.Context(), tx)
	if err != nil {
		return err
	}
	fmt.Printf("  Updated %s %s %s\n", updated.Emoji, updated.Category, cli.RenderAmount(updated.Type, updated.Amount))
	return nil
}

func runTxRm(cmd *cobra.Command, args []string) error {
	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	tx, err := findTransaction(l.Transactions(), args[0])
	if err != nil {
		return err
	}

	if !txYes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s %s (%s)?", tx.Category, cli.FormatCurrency(tx.Amount), tx.Description)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("  Cancelled.")
			return nil
		}
	}

	if err := l.DeleteTransaction(cmd.Context(), tx.ID); err != nil {
		return err
	}
	fmt.Printf("  Deleted %s\n", shortID(tx.ID))
	return nil
}

// txFromFlags overlays the flags the user actually set onto base.
func txFromFlags(cmd *cobra.Command, base model.Transaction) (model.Transaction, error) {
	tx := base
	flags := cmd.Flags()
	if flags.Changed("type") || tx.Type == "" {
		t, err := model.ParseTxType(txType)
		if err != nil {
			return tx, err
		}
		tx.Type = t
	}
	if flags.Changed("amount") {
		amt, err := decimal.NewFromString(strings.TrimSpace(txAmount))
		if err != nil {
			return tx, fmt.Errorf("parsing amount %q: %w", txAmount, err)
		}
		tx.Amount = amt
	}
	if flags.Changed("category") {
		tx.Category = txCategory
	}
	if flags.Changed("desc") {
		tx.Description = txDesc
	}
	if flags.Changed("date") {
		d, err := model.ParseDate(txDate)
		if err != nil {
			return tx, err
		}
		tx.Date = d
	}
	if flags.Changed("emoji") {
		tx.Emoji = txEmoji
	}
	if flags.Changed("notes") {
		tx.Notes = txNotes
	}
	if flags.Changed("recurring") {
		tx.Recurring = txRecurring
	}
	return tx, nil
}

// findTransaction resolves a full id or a unique prefix of one.
func findTransaction(txs []model.Transaction, id string) (model.Transaction, error) {
	var match []model.Transaction
	for _, tx := range txs {
		if tx.ID == id {
			return tx, nil
		}
		if strings.HasPrefix(tx.ID, id) {
			match = append(match, tx)
		}
	}
	switch len(match) {
	case 0:
		return model.Transaction{}, fmt.Errorf("no transaction with id %q", id)
	case 1:
		return match[0], nil
	default:
		return model.Transaction{}, fmt.Errorf("id prefix %q matches %d transactions", id, len(match))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
