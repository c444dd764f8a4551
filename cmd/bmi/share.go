package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/charlie0129/bmi/pkg/share"
)

// NewShareCommand .
func NewShareCommand() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:     "share",
		Short:   "Copy a message with the latest result to the clipboard",
		GroupID: gBasic,
		Long: `Copy a message with the latest result to the clipboard.

When no clipboard tool (pbcopy, wl-copy, xclip or xsel) is available, the
message is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			method := "clipboard"
			if printOnly {
				method = "print"
			}

			msg, err := apiClient.Share(method)
			if err != nil {
				return fmt.Errorf("failed to share: %v", err)
			}

			if printOnly {
				cmd.Println(msg.Text)
				return nil
			}

			if share.Do(context.Background(), *msg, share.NewClipboard()) == "" {
				cmd.Println(msg.Text)
				return nil
			}
			cmd.Println("Copied to clipboard.")

			return nil
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "print the message instead of copying it")

	return cmd
}
