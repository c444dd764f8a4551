package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewHistoryCommand .
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Short:   "Show or clear the last 10 calculations",
		GroupID: gBasic,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := apiClient.GetView()
			if err != nil {
				return fmt.Errorf("failed to get history: %v", err)
			}
			printHistory(cmd.OutOrStdout(), *v)
			return nil
		},
	}

	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

func newHistoryClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				if !term.IsTerminal(int(os.Stdin.Fd())) {
					return fmt.Errorf("refusing to clear history without a terminal, pass --yes to confirm")
				}
				v, err := apiClient.GetView()
				if err != nil {
					return fmt.Errorf("failed to get history: %v", err)
				}
				if !askConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), v.Text.ConfirmClear) {
					cmd.Println("History kept.")
					return nil
				}
			}

			if _, err := apiClient.ClearHistory(); err != nil {
				return fmt.Errorf("failed to clear history: %v", err)
			}
			cmd.Println("History cleared.")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	return cmd
}
