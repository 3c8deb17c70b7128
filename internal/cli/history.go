package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sadopc/shiftr/internal/export"
	"github.com/sadopc/shiftr/internal/store"
	"github.com/sadopc/shiftr/internal/tracker"
)

// rangeFlags is the --from/--to pair shared by history and export. Both
// must be given for the range to apply.
type rangeFlags struct {
	from, to string
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&r.to, "to", "", "last day, YYYY-MM-DD")
}

func (r rangeFlags) filter() (store.Filter, error) {
	var f store.Filter
	if r.from == "" && r.to == "" {
		return f, nil
	}
	if r.from == "" || r.to == "" {
		return f, fmt.Errorf("--from and --to go together")
	}
	from, err := store.ParseDate(r.from)
	if err != nil {
		return f, fmt.Errorf("--from: %w", err)
	}
	to, err := store.ParseDate(r.to)
	if err != nil {
		return f, fmt.Errorf("--to: %w", err)
	}
	return store.Filter{Enabled: true, From: from, To: to}, nil
}

func historyCmd(a *app) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"ls"},
		Short:   "List finished shifts, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rf.filter()
			if err != nil {
				return err
			}
			if err := a.open(); err != nil {
				return err
			}
			now := a.tracker.Now()
			shifts := f.Apply(a.tracker.State().History)
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, f.Label())
			if len(shifts) > 0 {
				fmt.Fprintln(out, historyTable(shifts, now))
			}
			sum := store.Summarize(shifts, now)
			fmt.Fprintf(out, "%d shift(s), net %s, pause %s, distance %d\n",
				sum.Count, store.FormatHHMM(sum.Worked), store.FormatHHMM(sum.Paused), sum.Distance)
			return nil
		},
	}
	rf.register(cmd)
	return cmd
}

func historyTable(shifts []store.Shift, now time.Time) string {
	rows := make([][]string, 0, len(shifts))
	for _, sh := range shifts {
		at := sh.EffectiveEnd(now)
		rows = append(rows, []string{
			shortID(sh.ID),
			sh.DisplayTitle(),
			store.FormatStamp(&sh.StartTime),
			store.FormatStamp(sh.EndTime),
			store.FormatHHMM(sh.Paused(at)),
			store.FormatHHMM(sh.Worked(at)),
			strconv.Itoa(sh.Distance),
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Title", "Start", "End", "Pause", "Net", "Distance").
		Rows(rows...).
		String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// resolveID accepts a full ID or an unambiguous prefix of one.
func resolveID(history []store.Shift, arg string) (string, error) {
	var match string
	for _, sh := range history {
		if sh.ID == arg {
			return sh.ID, nil
		}
		if strings.HasPrefix(sh.ID, arg) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", arg)
			}
			match = sh.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", tracker.ErrShiftNotFound, arg)
	}
	return match, nil
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a finished shift",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(); err != nil {
				return err
			}
			id, err := resolveID(a.tracker.State().History, strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			ch, err := a.tracker.Delete(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			a.await(cmd, ch)
			return nil
		},
	}
}

func exportCmd(a *app) *cobra.Command {
	var (
		rf     rangeFlags
		format string
		dir    string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the shift report to a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := rf.filter()
			if err != nil {
				return err
			}
			format = strings.ToLower(format)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unknown format %q (csv or json)", format)
			}
			if err := a.open(); err != nil {
				return err
			}
			if dir == "" {
				if dir, err = os.UserHomeDir(); err != nil {
					return err
				}
			}

			now := a.tracker.Now()
			shifts := f.Apply(a.tracker.State().History)
			path := filepath.Join(dir, export.ReportFileName(a.store.ReportPrefix(), now, format))
			if format == "csv" {
				err = export.ToCSV(shifts, path, now)
			} else {
				err = export.ToJSON(shifts, path, now)
			}
			if err != nil {
				return err
			}
			a.logger.Info("exported", "path", path, "shifts", len(shifts))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "csv", "csv or json")
	cmd.Flags().StringVarP(&dir, "out", "o", "", "output directory (default home)")
	return cmd
}
