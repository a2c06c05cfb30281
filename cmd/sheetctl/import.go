package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/stemsi/bezem-backend/internal/model"
	"github.com/stemsi/bezem-backend/internal/service"
	"github.com/stemsi/bezem-backend/internal/sheet"
)

var importCmd = &cobra.Command{
	Use:   "import <workbook.xlsx>",
	Short: "Import a workbook into the store",
	Long: `Import normalizes every worksheet and appends the conversions to the
store. Without --db the store lives in memory and the command only reports
what would be imported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := setup(cmd)
		verbose, _ := cmd.Flags().GetBool("verbose")
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		store, release, err := openStore(ctx, cmd, cfg, log)
		if err != nil {
			return err
		}
		defer release()

		wb, err := sheet.OpenWorkbook(args[0])
		if err != nil {
			return err
		}

		svc := service.NewImportService(cfg, store, nil, nil, nil, log)
		report, runErr := svc.Run(ctx, wb, service.RunOptions{
			Persist: true,
			Progress: func(ev model.ProgressEvent) {
				if verbose {
					fmt.Fprintln(out, progressLine(ev))
				}
			},
		})
		if report != nil {
			fmt.Fprintln(out, renderReport(report, verbose))
		}
		if runErr != nil {
			return runErr
		}

		counts, err := store.Counts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("store: %d exams, %d courses, %d conversions",
			counts.Exams, counts.Courses, counts.Conversions)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolP("verbose", "v", false, "Print progress and skipped rows")
}
