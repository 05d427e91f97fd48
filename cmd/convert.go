package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/rupee/internal/currency"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <amount> <from> <to>",
	Short: "Convert an amount between currencies",
	Example: "  rupee convert 100 USD INR\n" +
		"  rupee convert 8300 USD INR --swap",
	Args: cobra.ExactArgs(3),
	RunE: runConvert,
}

var (
	convertSwap  bool
	convertRates bool
)

func init() {
	convertCmd.Flags().BoolVar(&convertSwap, "swap", false, "Swap the from and to currencies")
	convertCmd.Flags().BoolVar(&convertRates, "rates", false, "Also list the supported currencies")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(_ *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return fmt.Errorf("parsing amount %q: %w", args[0], err)
	}
	q := currency.Quote{From: strings.ToUpper(args[1]), To: strings.ToUpper(args[2]), Amount: amount}
	if convertSwap {
		q = q.Swap()
	}

	conv, err := currency.NewConverter(appCfg.Converter.Rates)
	if err != nil {
		return fmt.Errorf("loading converter rates: %w", err)
	}
	out, err := conv.Convert(q.Amount, q.From, q.To)
	if err != nil {
		return err
	}
	rate, _ := conv.Rate(q.From, q.To)

	fmt.Printf("  %s %s = %s %s\n", q.Amount.StringFixed(2), q.From, out.StringFixed(2), q.To)
	fmt.Printf("  1 %s = %s %s\n", q.From, rate.Round(4).String(), q.To)
	if convertRates {
		fmt.Printf("  Supported: %s\n", strings.Join(conv.Codes(), ", "))
	}
	return nil
}
