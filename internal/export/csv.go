package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/shiftr/internal/store"
)

// Delimiter separates report fields.
const Delimiter = ';'

const bom = "\ufeff"

var header = []string{"Title", "Start", "End", "Pause_hh:mm", "Net_hh:mm", "Distance"}

var spaces = regexp.MustCompile(`\s+`)

// WriteReport renders shifts (given newest first, as displayed) oldest
// first, followed by a totals row, a blank line and a summary block.
func WriteReport(w io.Writer, shifts []store.Shift, now time.Time) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(bom); err != nil {
		return err
	}

	cw := csv.NewWriter(bw)
	cw.Comma = Delimiter
	cw.UseCRLF = true

	rows := [][]string{header}

	ordered := slices.Clone(shifts)
	slices.Reverse(ordered)
	for _, sh := range ordered {
		at := sh.EffectiveEnd(now)
		rows = append(rows, []string{
			sh.Title,
			store.FormatStamp(&sh.StartTime),
			store.FormatStamp(sh.EndTime),
			store.FormatHHMM(sh.Paused(at)),
			store.FormatHHMM(sh.Worked(at)),
			strconv.Itoa(max(sh.Distance, 0)),
		})
	}

	sum := store.Summarize(shifts, now)
	rows = append(rows,
		[]string{"SELECTION TOTAL", "", "", store.FormatHHMM(sum.Paused), store.FormatHHMM(sum.Worked), strconv.Itoa(sum.Distance)},
		[]string{""},
		[]string{"SUMMARY", "", "", "", "", ""},
		[]string{"Shifts", strconv.Itoa(sum.Count), "", "", "", ""},
		[]string{"Total hours (net)", store.FormatHHMM(sum.Worked), "", "", "", ""},
		[]string{"Total distance", strconv.Itoa(sum.Distance), "", "", "", ""},
	)

	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

// ToCSV writes the report to path.
func ToCSV(shifts []store.Shift, path string, now time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteReport(f, shifts, now); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

// ReportFileName builds "{prefix}-{unix millis}.{ext}", collapsing
// whitespace in the prefix to dashes.
func ReportFileName(prefix string, now time.Time, ext string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = store.DefaultReportPrefix
	}
	prefix = spaces.ReplaceAllString(prefix, "-")
	return fmt.Sprintf("%s-%d.%s", prefix, now.UnixMilli(), ext)
}
