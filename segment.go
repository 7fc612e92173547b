package fanwheel

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// SegmentRecord is one wedge of the wheel: a community paired with the
// merchant its fans over-index on.
type SegmentRecord struct {
	// Label is the community or category name, for display and the summary.
	Label string
	// AssetKey is the merchant/brand name used to resolve or synthesize a logo.
	AssetKey string
	// BehaviorText is the action phrase rendered in the outer ring,
	// pre-wrapped to at most two lines separated by '\n' (see WrapTwoLines).
	BehaviorText string
	// RankValue is the metric the caller ordered segments by. It does not
	// affect layout; sectors follow input order.
	RankValue float64
}

// Initials returns the uppercased first letters of the first two words of
// the asset key, used as the text fallback when a logo cannot be drawn.
func (s SegmentRecord) Initials() string {
	words := strings.Fields(s.AssetKey)
	if len(words) > 2 {
		words = words[:2]
	}
	var b strings.Builder
	for _, w := range words {
		r, _ := utf8.DecodeRuneInString(w)
		b.WriteString(strings.ToUpper(string(r)))
	}
	return b.String()
}

// LoadSegmentsCSV reads segment records from a CSV file with columns
// {label, asset_key, rank_value, behavior_text}, in any column order,
// matching the summary files this library writes. Behavior text is wrapped
// if the file supplies it unwrapped.
func LoadSegmentsCSV(path string) ([]SegmentRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open segments file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read segments file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("segments file %s has no data rows", path)
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"label", "asset_key"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("segments file missing column %q", required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	segments := make([]SegmentRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rank, _ := strconv.ParseFloat(field(row, "rank_value"), 64)
		seg := SegmentRecord{
			Label:        field(row, "label"),
			AssetKey:     field(row, "asset_key"),
			BehaviorText: field(row, "behavior_text"),
			RankValue:    rank,
		}
		if seg.BehaviorText == "" {
			seg.BehaviorText = BehaviorPhrase(seg.Label, seg.AssetKey)
		} else if !strings.Contains(seg.BehaviorText, "\n") {
			line1, line2 := WrapTwoLines(strings.Fields(seg.BehaviorText))
			if line2 != "" {
				seg.BehaviorText = line1 + "\n" + line2
			}
		}
		segments = append(segments, seg)
	}
	return segments, nil
}
