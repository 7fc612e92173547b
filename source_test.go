package fanwheel

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows implements pgx.Rows over an in-memory row set.
type fakeRows struct {
	rows [][]any
	idx  int
	err  error
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.idx-1], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: want %d destinations, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *float64:
			*p = row[i].(float64)
		case *int:
			*p = row[i].(int)
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

// fakeDB hands out queued result sets in order and records each query.
type fakeDB struct {
	results []*fakeRows
	queries []string
	args    [][]any
}

func (db *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.queries = append(db.queries, sql)
	db.args = append(db.args, args)
	if len(db.results) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", sql)
	}
	rows := db.results[0]
	db.results = db.results[1:]
	return rows, nil
}

func testPreset() Preset {
	return Preset{
		ComparisonPopulation: "TEAM_FANS_VS_GEN_POP",
		MinAudienceShare:     0.2,
		MinAudienceCount:     10000,
		SegmentLimit:         5,
		CommunityView:        "analytics.community_index",
		MerchantView:         "analytics.merchant_index",
	}
}

func TestWarehouseSegments(t *testing.T) {
	db := &fakeDB{results: []*fakeRows{
		{rows: [][]any{
			{"Skiers", 71.0},
			{"Yogis", 45.0},
		}},
		{rows: [][]any{
			{"Yogis", "Lululemon"},
			{"Skiers", "REI"},
		}},
	}}

	source := &WarehouseSource{DB: db}
	segments, err := source.Segments(context.Background(), testPreset())
	require.NoError(t, err)
	require.Len(t, segments, 2)

	// community rank order, regardless of merchant row order
	assert.Equal(t, "Skiers", segments[0].Label)
	assert.Equal(t, "REI", segments[0].AssetKey)
	assert.Equal(t, "Skies with\nREI", segments[0].BehaviorText)
	assert.InDelta(t, 71.0, segments[0].RankValue, 1e-9)

	assert.Equal(t, "Yogis", segments[1].Label)
	assert.Equal(t, "Lululemon", segments[1].AssetKey)

	require.Len(t, db.queries, 2)
	assert.Contains(t, db.queries[0], "analytics.community_index")
	assert.Contains(t, db.queries[1], "analytics.merchant_index")

	// community query carries the preset thresholds
	require.Len(t, db.args[0], 5)
	assert.Equal(t, "TEAM_FANS_VS_GEN_POP", db.args[0][0])
	assert.Equal(t, 0.2, db.args[0][1])
	assert.Equal(t, 5, db.args[0][4])

	// merchant query is scoped to the selected communities
	assert.Equal(t, []string{"Skiers", "Yogis"}, db.args[1][2])
}

func TestWarehouseSegmentsSkipsCommunityWithoutMerchant(t *testing.T) {
	db := &fakeDB{results: []*fakeRows{
		{rows: [][]any{
			{"Skiers", 71.0},
			{"Yogis", 45.0},
		}},
		{rows: [][]any{
			{"Skiers", "REI"},
		}},
	}}

	source := &WarehouseSource{DB: db}
	segments, err := source.Segments(context.Background(), testPreset())
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "Skiers", segments[0].Label)
}

func TestWarehouseSegmentsNoCommunities(t *testing.T) {
	db := &fakeDB{results: []*fakeRows{{}}}

	source := &WarehouseSource{DB: db}
	segments, err := source.Segments(context.Background(), testPreset())
	require.NoError(t, err)
	assert.Empty(t, segments)
	assert.Len(t, db.queries, 1, "merchant query skipped when nothing matched")
}

func TestWarehouseSegmentsRequiresViews(t *testing.T) {
	source := &WarehouseSource{DB: &fakeDB{}}
	_, err := source.Segments(context.Background(), Preset{})
	assert.Error(t, err)
}
