package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImportSkillsCmd() *cobra.Command {
	var actor string

	cmd := &cobra.Command{
		Use:   "import-skills <file.xlsx>",
		Short: "Import skills from an .xlsx file (header: code | competence | categorie)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.close()

			svc, repo := e.services()
			defer svc.Close()

			// 审计字段记为执行导入的管理员
			admin, err := repo.Employee.GetByEmail(cmd.Context(), actor)
			if err != nil {
				return fmt.Errorf("--as %s: %w", actor, err)
			}

			res, err := svc.Skill.ImportXLSX(cmd.Context(), f, admin.ID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}

	cmd.Flags().StringVar(&actor, "as", "", "E-mail of the employee recorded as author (required)")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
