package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/stemsi/bezem-backend/internal/repository"
	"github.com/stemsi/bezem-backend/internal/service"
	"github.com/stemsi/bezem-backend/internal/sheet"
)

var previewCmd = &cobra.Command{
	Use:   "preview <workbook.xlsx>",
	Short: "Render a workbook without storing anything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := setup(cmd)
		full, _ := cmd.Flags().GetBool("full")
		only, _ := cmd.Flags().GetString("sheet")
		query, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		wb, err := sheet.OpenWorkbook(args[0])
		if err != nil {
			return err
		}

		svc := service.NewImportService(cfg, repository.NewMemoryStore(), nil, nil, nil, log)
		preview, err := svc.Preview(cmd.Context(), wb, full)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if query != "" {
			results := preview.Search(query)
			fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%d matches for %q", len(results), query)))
			for _, r := range results {
				fmt.Fprintf(out, "%s %s\n",
					mutedStyle.Render(fmt.Sprintf("%s #%d", r.Sheet, sheet.RowNumber(r.RowIndex))),
					strings.Join(nonEmpty(r.Values), " · "))
			}
			return nil
		}

		for _, t := range preview.Tables {
			if only != "" && !strings.EqualFold(only, string(t.Sheet)) {
				continue
			}
			fmt.Fprintln(out, renderTable(t, limit))
		}
		fmt.Fprintln(out, renderReport(preview.Report, false))
		return nil
	},
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().BoolP("full", "f", false, "Show every column instead of the browse columns")
	previewCmd.Flags().StringP("sheet", "s", "", "Only show this worksheet")
	previewCmd.Flags().StringP("search", "q", "", "Search the rendered rows instead of printing tables")
	previewCmd.Flags().IntP("limit", "n", 20, "Rows per table (0 for all)")
}
