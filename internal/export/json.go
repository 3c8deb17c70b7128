package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/shiftr/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Totals     jsonTotals  `json:"totals"`
	Shifts     []jsonShift `json:"shifts"`
}

type jsonTotals struct {
	WorkedMinutes int    `json:"worked_minutes"`
	Worked        string `json:"worked"`
	PausedMinutes int    `json:"paused_minutes"`
	Distance      int    `json:"distance"`
}

type jsonShift struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time,omitempty"`
	PauseMinutes  int    `json:"pause_minutes"`
	WorkedMinutes int    `json:"worked_minutes"`
	Worked        string `json:"worked"`
	Distance      int    `json:"distance"`
}

func ToJSON(shifts []store.Shift, path string, now time.Time) error {
	sum := store.Summarize(shifts, now)
	export := jsonExport{
		ExportedAt: now.UTC().Format(time.RFC3339),
		Count:      sum.Count,
		Totals: jsonTotals{
			WorkedMinutes: store.FloorMinutes(sum.Worked),
			Worked:        store.FormatHHMM(sum.Worked),
			PausedMinutes: store.FloorMinutes(sum.Paused),
			Distance:      sum.Distance,
		},
		Shifts: []jsonShift{},
	}

	for _, sh := range shifts {
		at := sh.EffectiveEnd(now)
		endStr := ""
		if sh.EndTime != nil {
			endStr = sh.EndTime.Local().Format(time.RFC3339)
		}
		export.Shifts = append(export.Shifts, jsonShift{
			ID:            sh.ID,
			Title:         sh.Title,
			StartTime:     sh.StartTime.Local().Format(time.RFC3339),
			EndTime:       endStr,
			PauseMinutes:  store.FloorMinutes(sh.Paused(at)),
			WorkedMinutes: store.FloorMinutes(sh.Worked(at)),
			Worked:        store.FormatHHMM(sh.Worked(at)),
			Distance:      sh.Distance,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
