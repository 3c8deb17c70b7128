package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const remoteTimeout = 30 * time.Second

func refreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Replace local shifts with the remote store's contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			rep, err := a.tracker.Refresh(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Fetched %d row(s): %d finished shift(s)", rep.Rows, rep.History)
			if rep.Active != "" {
				fmt.Fprintf(out, ", running %s", rep.Active)
			}
			fmt.Fprintln(out)
			if rep.Skipped > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: skipped %d unreadable row(s)\n", rep.Skipped)
			}
			if len(rep.Discarded) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: remote had several running shifts, ignored %s\n",
					strings.Join(rep.Discarded, ", "))
			}
			return nil
		},
	}
}

func pingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the configured endpoint answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), remoteTimeout)
			defer cancel()

			start := time.Now()
			if err := a.tracker.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connection OK (%s)\n", time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
