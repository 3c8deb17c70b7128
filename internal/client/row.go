package client

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/shiftr/internal/store"
)

// TimeLayout matches the millisecond UTC stamps the remote stores.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Row is one shift as the remote store sees it. EndTime is empty while
// the shift is active.
type Row struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	StartTime    string  `json:"startTime"`
	EndTime      string  `json:"endTime"`
	PauseMinutes FlexInt `json:"pauseMinutes"`
	WorkMinutes  FlexInt `json:"workMinutes"`
	Distance     FlexInt `json:"distance"`
	Notes        string  `json:"notes"`

	decodeErr error
}

// RowFromShift converts sh for upload. Active shifts carry WorkMinutes
// computed at now; stopped ones carry their cached value.
func RowFromShift(sh store.Shift, now time.Time) Row {
	r := Row{
		ID:           sh.ID,
		Title:        sh.Title,
		StartTime:    FormatTime(sh.StartTime),
		PauseMinutes: FlexInt(max(sh.PauseMinutes, 0)),
		Distance:     FlexInt(max(sh.Distance, 0)),
	}
	if sh.EndTime != nil {
		r.EndTime = FormatTime(*sh.EndTime)
		r.WorkMinutes = FlexInt(sh.WorkMinutes)
	} else {
		r.WorkMinutes = FlexInt(store.FloorMinutes(sh.Worked(now)))
	}
	return r
}

// Shift converts a downloaded row. Rows that failed to decode or have no
// parseable start are rejected.
func (r Row) Shift() (store.Shift, error) {
	if r.decodeErr != nil {
		return store.Shift{}, r.decodeErr
	}
	if strings.TrimSpace(r.ID) == "" {
		return store.Shift{}, fmt.Errorf("row without id")
	}
	start, err := ParseTime(r.StartTime)
	if err != nil {
		return store.Shift{}, fmt.Errorf("row %s: start time: %w", r.ID, err)
	}
	sh := store.Shift{
		ID:           r.ID,
		Title:        r.Title,
		StartTime:    start,
		PauseMinutes: max(int(r.PauseMinutes), 0),
		WorkMinutes:  max(int(r.WorkMinutes), 0),
		Distance:     max(int(r.Distance), 0),
	}
	if strings.TrimSpace(r.EndTime) != "" {
		end, err := ParseTime(r.EndTime)
		if err != nil {
			return store.Shift{}, fmt.Errorf("row %s: end time: %w", r.ID, err)
		}
		sh.EndTime = &end
	}
	return sh, nil
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func ParseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
}

// FlexInt decodes JSON numbers, numeric strings and empty strings alike;
// spreadsheet-backed stores return all three. Anything else reads as 0.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = 0
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*n = 0
		return nil
	}
	*n = FlexInt(math.Round(f))
	return nil
}

func (n FlexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(n))
}
