package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gesrh/backend/internal/service"
)

func newHashPasswordCmd() *cobra.Command {
	var skipCheck bool

	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("lecture du mot de passe: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}

			if !skipCheck {
				if err := service.CheckPasswordStrength(password); err != nil {
					return err
				}
			}
			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipCheck, "no-check", false, "Skip the password strength rules")
	return cmd
}
