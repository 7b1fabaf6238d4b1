package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportJobsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-jobs",
		Short: "Export jobs and their required skills to an .xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			svc, _ := e.services()
			defer svc.Close()

			buf, filename, err := svc.Export.ExportJobs(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" {
				output = filename
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("写入 %s 失败: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d octets)\n", output, buf.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: generated name)")
	return cmd
}
