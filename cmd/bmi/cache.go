package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charlie0129/bmi/pkg/client"
)

// NewCacheCommand .
func NewCacheCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "cache",
		Short:   "Show the offline cache",
		GroupID: gAdvanced,
		Long: `Show the offline cache the daemon keeps of its origin.

The cache is only used when the daemon is configured with an origin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := apiClient.GetCacheStatus()
			if err != nil {
				return fmt.Errorf("failed to get offline cache status: %v", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printCache(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "output in json format")

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Fetch every offline asset from the origin again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := apiClient.RefreshCache()
			if err != nil {
				return fmt.Errorf("failed to refresh offline cache: %v", err)
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printCache(cmd.OutOrStdout(), resp)
			return nil
		},
	})

	return cmd
}

func printCache(w io.Writer, resp *client.CacheResponse) {
	origin := resp.Origin
	if origin == "" {
		origin = color.New(color.Faint).Sprint("not configured")
	}

	fmt.Fprintf(w, "%s\n", bold("Offline cache"))
	fmt.Fprintf(w, "  Name: %s\n", resp.Status.Name)
	fmt.Fprintf(w, "  Origin: %s\n", origin)
	fmt.Fprintf(w, "  Cached paths: %d\n", len(resp.Status.Paths))

	r := resp.Refresh
	if r.Schedule != "" {
		fmt.Fprintf(w, "  Refresh schedule: %s\n", r.Schedule)
	}
	if !r.NextRun.IsZero() {
		fmt.Fprintf(w, "  Next refresh: %s\n", r.NextRun.Local().Format(time.DateTime))
	}
	if !r.LastRun.IsZero() {
		fmt.Fprintf(w, "  Last refresh: %s\n", r.LastRun.Local().Format(time.DateTime))
	}
	if r.Running {
		fmt.Fprintf(w, "  %s\n", color.YellowString("Refreshing"))
	}
	if r.LastError != "" {
		fmt.Fprintf(w, "  Last error: %s\n", color.RedString(r.LastError))
	}
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json: %v", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
