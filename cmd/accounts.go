package main

import (
	"github.com/spf13/cobra"

	"cyberkids_accounts/internal/service"
)

// NewAccountsCmd groups operator actions on single accounts.
func NewAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newDeleteAccountCmd())
	cmd.AddCommand(newSetPasswordCmd())
	return cmd
}

func newDeleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an account",
		Long:  `Delete an account. Students linked to it stay, with the parent link cleared.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(admin service.AccountAdmin) error {
				if err := admin.DeleteAccount(cmd.Context(), args[0]); err != nil {
					return err
				}
				cmd.Printf("Account %q deleted\n", args[0])
				return nil
			})
		},
	}
}

func newSetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-password <username> [password]",
		Short: "Set an account password",
		Long: `Set the password of an account. Without a password argument a random
one is generated and printed.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 2 {
				password = args[1]
			}
			return withAdmin(cmd, func(admin service.AccountAdmin) error {
				generated, err := admin.SetPassword(cmd.Context(), args[0], password)
				if err != nil {
					return err
				}
				if generated != "" {
					cmd.Printf("Generated password for %q: %s\n", args[0], generated)
					return nil
				}
				cmd.Printf("Password for %q updated\n", args[0])
				return nil
			})
		},
	}
}

func withAdmin(cmd *cobra.Command, fn func(admin service.AccountAdmin) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, repos, _, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(service.NewService(repos, serviceOptions(cfg)))
}
