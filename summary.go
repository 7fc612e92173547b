package fanwheel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// summaryHeader is the column order of the companion summary CSV.
var summaryHeader = []string{"label", "asset_key", "rank_value", "behavior_text"}

// WriteSummaryCSV writes one row per segment, in input order, alongside a
// rendered wheel. Behavior text is flattened to a single line so the CSV
// stays one-record-per-row friendly for spreadsheet tools.
func WriteSummaryCSV(path string, segments []SegmentRecord) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create summary dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(summaryHeader); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, s := range segments {
		row := []string{
			s.Label,
			s.AssetKey,
			strconv.FormatFloat(s.RankValue, 'f', -1, 64),
			strings.ReplaceAll(s.BehaviorText, "\n", " "),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write summary row for %s: %w", s.Label, err)
		}
	}
	w.Flush()
	return w.Error()
}
