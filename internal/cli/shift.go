package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
)

func startCmd(a *app) *cobra.Command {
	var title, distance string
	cmd := &cobra.Command{
		Use:   "start [title]",
		Short: "Start a new shift",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			if len(args) == 1 && title == "" {
				title = args[0]
			}
			sh, ch, err := a.tracker.Start(title, tracker.ParseDistance(distance))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %q at %s (id %s)\n", sh.Title, store.FormatStamp(&sh.StartTime), sh.ID)
			a.await(cmd, ch)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "shift title (default \"Shift <date>\")")
	cmd.Flags().StringVarP(&distance, "distance", "d", "", "distance covered so far")
	return cmd
}

func breakCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "break",
		Short: "Start or end a break on the running shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			sh, ch, err := a.tracker.ToggleBreak()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if sh.OnBreak() {
				fmt.Fprintf(out, "Break started at %s\n", store.FormatStamp(sh.BreakStartTime))
			} else {
				fmt.Fprintf(out, "Break ended, total pause %s\n", store.FormatHHMM(sh.Paused(a.tracker.Now())))
			}
			a.await(cmd, ch)
			return nil
		},
	}
}

func stopCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			sh, ch, err := a.tracker.Stop()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped %q: net %s, pause %s, distance %d\n",
				sh.Title,
				store.FormatHHMM(sh.Worked(*sh.EndTime)),
				store.FormatHHMM(sh.Paused(*sh.EndTime)),
				sh.Distance,
			)
			a.await(cmd, ch)
			return nil
		},
	}
}

func editCmd(a *app) *cobra.Command {
	var title, distance string
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Change the title or distance of the running shift",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			titleSet := cmd.Flags().Changed("title")
			distanceSet := cmd.Flags().Changed("distance")
			if !titleSet && !distanceSet {
				return fmt.Errorf("nothing to edit: pass --title and/or --distance")
			}
			if err := a.open(); err != nil {
				return err
			}
			if titleSet {
				sh, ch, err := a.tracker.EditTitle(title)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Title: %s\n", sh.Title)
				a.await(cmd, ch)
			}
			if distanceSet {
				sh, ch, err := a.tracker.EditDistance(tracker.ParseDistance(distance))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Distance: %d\n", sh.Distance)
				a.await(cmd, ch)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title; empty restores the default")
	cmd.Flags().StringVarP(&distance, "distance", "d", "", "new distance")
	return cmd
}

func statusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the running shift and today's totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			now := a.tracker.Now()
			st := a.tracker.State()

			if st.Active == nil {
				fmt.Fprintln(out, "No shift running.")
			} else {
				sh := st.Active
				state := "working"
				if sh.OnBreak() {
					state = "on break since " + store.FormatStamp(sh.BreakStartTime)
				}
				fmt.Fprintf(out, "Shift:     %s\n", sh.Title)
				fmt.Fprintf(out, "ID:        %s\n", sh.ID)
				fmt.Fprintf(out, "Started:   %s\n", store.FormatStamp(&sh.StartTime))
				fmt.Fprintf(out, "State:     %s\n", state)
				fmt.Fprintf(out, "Net:       %s\n", store.FormatHHMM(sh.Worked(now)))
				fmt.Fprintf(out, "Pause:     %s\n", store.FormatHHMM(sh.Paused(now)))
				fmt.Fprintf(out, "Distance:  %d\n", sh.Distance)
			}

			today := store.TodayFilter(now)
			today.Enabled = true
			sum := store.Summarize(today.Apply(st.History), now)
			fmt.Fprintf(out, "Today:     %d finished shift(s), net %s, distance %d\n",
				sum.Count, store.FormatHHMM(sum.Worked), sum.Distance)

			endpoint := a.store.Endpoint()
			if endpoint == "" {
				endpoint = "off"
			}
			fmt.Fprintf(out, "Sync:      %s\n", endpoint)
			return nil
		},
	}
}
