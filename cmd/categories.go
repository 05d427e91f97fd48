package cmd

import (
	"fmt"

	"github.com/theirongolddev/rupee/internal/cli"
	"github.com/theirongolddev/rupee/internal/model"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Built-in category catalog",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var categoriesType string

func init() {
	categoriesCmd.Flags().StringVarP(&categoriesType, "type", "t", "", "Only income or expense categories")
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	var typ model.TxType
	if categoriesType != "" {
		t, err := model.ParseTxType(categoriesType)
		if err != nil {
			return err
		}
		typ = t
	}

	cats := model.Categories(typ)
	rows := make([][]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, []string{c.Emoji, c.Name, string(c.Type)})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:      "Categories",
		Headers:    []string{"", "Name", "Type"},
		Rows:       rows,
		RightAlign: []bool{false, false, false},
	}))
	return nil
}
