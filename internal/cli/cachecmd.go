package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the artifact cache",
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Print cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheMgr, err := a.newCache()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(cacheMgr.Stats(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}

	var olderThanHours int
	clear := &cobra.Command{
		Use:   "clear",
		Short: "Remove cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheMgr, err := a.newCache()
			if err != nil {
				return err
			}
			removed := cacheMgr.Evict(time.Duration(olderThanHours)*time.Hour, time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d cache entries\n", removed)
			return nil
		},
	}
	clear.Flags().IntVar(&olderThanHours, "older-than", 0, "only remove entries older than this many hours (0 removes all)")

	cmd.AddCommand(stats, clear)
	return cmd
}
