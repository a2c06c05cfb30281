package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stemsi/bezem-backend/internal/service"
	"github.com/stemsi/bezem-backend/internal/sheet"
)

var exportCmd = &cobra.Command{
	Use:   "export [workbook.xlsx]",
	Short: "Write the re-export workbook",
	Long: `Export writes one worksheet per sheet tag from the stored conversions.
Given a workbook, it is imported first, so the output is the normalized
version of that file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log := setup(cmd)
		output, _ := cmd.Flags().GetString("output")
		useDB, _ := cmd.Flags().GetBool("db")
		ctx := cmd.Context()

		if len(args) == 0 && !useDB {
			return errors.New("nothing to export: pass a workbook or --db")
		}

		store, release, err := openStore(ctx, cmd, cfg, log)
		if err != nil {
			return err
		}
		defer release()

		if len(args) == 1 {
			wb, err := sheet.OpenWorkbook(args[0])
			if err != nil {
				return err
			}
			importer := service.NewImportService(cfg, store, nil, nil, nil, log)
			if _, err := importer.Run(ctx, wb, service.RunOptions{Persist: true}); err != nil {
				return err
			}
		}

		file, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()

		conversions := service.NewConversionService(store, nil, 0, log)
		if err := conversions.Export(ctx, file); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}

		counts, err := store.Counts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render(fmt.Sprintf("Exported %d conversions to %s", counts.Conversions, output)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "bezem-conversie.xlsx", "Output file path")
}
