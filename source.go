package fanwheel

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// RowQuerier is the query surface the warehouse source needs. *pgxpool.Pool
// satisfies it; tests substitute a fake.
type RowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// NewPool connects to the analytics warehouse over the Postgres protocol and
// verifies the connection.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse warehouse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect warehouse: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping warehouse: %w", err)
	}
	return pool, nil
}

// WarehouseSource selects wheel segments from audience-affinity views: the
// top communities for an audience, each paired with the merchant that
// community over-indexes on most.
type WarehouseSource struct {
	DB RowQuerier
}

// communityRank is one row of the community selection query.
type communityRank struct {
	community string
	composite float64
}

// Segments returns up to preset.Limit() segment records ordered by community
// composite index, one per community that has a qualifying merchant.
func (s *WarehouseSource) Segments(ctx context.Context, preset Preset) ([]SegmentRecord, error) {
	if preset.CommunityView == "" || preset.MerchantView == "" {
		return nil, fmt.Errorf("preset does not name warehouse views")
	}

	communities, err := s.topCommunities(ctx, preset)
	if err != nil {
		return nil, err
	}
	if len(communities) == 0 {
		return nil, nil
	}

	names := make([]string, len(communities))
	for i, c := range communities {
		names[i] = c.community
	}

	merchants, err := s.topMerchants(ctx, preset, names)
	if err != nil {
		return nil, err
	}

	segments := make([]SegmentRecord, 0, len(communities))
	for _, c := range communities {
		merchant, ok := merchants[c.community]
		if !ok {
			log.Debug().Str("community", c.community).Msg("no qualifying merchant, skipping")
			continue
		}
		segments = append(segments, SegmentRecord{
			Label:        c.community,
			AssetKey:     merchant,
			BehaviorText: BehaviorPhrase(c.community, merchant),
			RankValue:    c.composite,
		})
	}
	return segments, nil
}

// topCommunities returns the approved communities for the comparison
// population, best composite index first, capped at the preset limit.
func (s *WarehouseSource) topCommunities(ctx context.Context, preset Preset) ([]communityRank, error) {
	exclude := preset.ExcludeCommunities
	if exclude == nil {
		exclude = []string{}
	}

	// View names come from operator-owned preset files.
	query := fmt.Sprintf(`
		SELECT community, composite_index
		FROM %s
		WHERE comparison_population = $1
		  AND perc_audience >= $2
		  AND community = ANY($3)
		  AND NOT (community = ANY($4))
		ORDER BY composite_index DESC
		LIMIT $5`, preset.CommunityView)

	rows, err := s.DB.Query(ctx, query,
		preset.ComparisonPopulation,
		preset.MinAudienceShare,
		ApprovedCommunities(),
		exclude,
		preset.Limit(),
	)
	if err != nil {
		return nil, fmt.Errorf("query communities: %w", err)
	}
	defer rows.Close()

	var out []communityRank
	for rows.Next() {
		var c communityRank
		if err := rows.Scan(&c.community, &c.composite); err != nil {
			return nil, fmt.Errorf("scan community row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read community rows: %w", err)
	}
	return out, nil
}

// topMerchants returns, for each named community, the merchant with the
// highest index among those clearing the audience-count floor.
func (s *WarehouseSource) topMerchants(ctx context.Context, preset Preset, communities []string) (map[string]string, error) {
	query := fmt.Sprintf(`
		SELECT community, merchant FROM (
			SELECT community, merchant,
			       ROW_NUMBER() OVER (PARTITION BY community ORDER BY perc_index DESC) AS rn
			FROM %s
			WHERE comparison_population = $1
			  AND audience_count > $2
			  AND community = ANY($3)
		) ranked
		WHERE rn = 1`, preset.MerchantView)

	rows, err := s.DB.Query(ctx, query,
		preset.ComparisonPopulation,
		preset.MinAudienceCount,
		communities,
	)
	if err != nil {
		return nil, fmt.Errorf("query merchants: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string, len(communities))
	for rows.Next() {
		var community, merchant string
		if err := rows.Scan(&community, &merchant); err != nil {
			return nil, fmt.Errorf("scan merchant row: %w", err)
		}
		out[community] = merchant
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read merchant rows: %w", err)
	}
	return out, nil
}
