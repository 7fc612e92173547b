package fanwheel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("BRANDFETCH_API_KEY", "")
	t.Setenv("WAREHOUSE_DSN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.brandfetch.io/v2", cfg.BrandfetchBaseURL)
	assert.Equal(t, "https://logo.clearbit.com", cfg.ClearbitBaseURL)
	assert.Equal(t, 10*time.Second, cfg.LookupTimeout)
	assert.Equal(t, "logos", cfg.CacheDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BRANDFETCH_API_KEY", "abc123")
	t.Setenv("LOOKUP_TIMEOUT", "3s")
	t.Setenv("LOGO_CACHE_DIR", "/tmp/wheel-logos")
	t.Setenv("WAREHOUSE_DSN", "postgres://u:p@wh:5432/analytics")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "abc123", cfg.BrandfetchAPIKey)
	assert.Equal(t, 3*time.Second, cfg.LookupTimeout)
	assert.Equal(t, "/tmp/wheel-logos", cfg.CacheDir)
	assert.Equal(t, "postgres://u:p@wh:5432/analytics", cfg.WarehouseDSN)

	opts := cfg.ResolverOptions(nil)
	assert.Equal(t, "abc123", opts.BrandfetchAPIKey)
	assert.Equal(t, "/tmp/wheel-logos", opts.CacheDir)
}

const testPresetsYAML = `
home_team:
  title: "THE AVERAGE FAN"
  primary_color: "#1D428A"
  secondary_color: "#4169E1"
  accent_color: "#FFD700"
  comparison_population: "TEAM_FANS_VS_GEN_POP"
  min_audience_share: 0.2
  min_audience_count: 10000
  exclude_communities:
    - "Gamers"
  segment_limit: 10
  community_view: "analytics.community_index"
  merchant_view: "analytics.merchant_index"
  output: "out/wheel.png"
  summary: "out/wheel.csv"
minimal:
  title: "MINIMAL"
`

func writePresets(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPresetsYAML), 0o644))
	return path
}

func TestLoadPresets(t *testing.T) {
	presets, err := LoadPresets(writePresets(t))
	require.NoError(t, err)
	require.Len(t, presets, 2)

	p := presets["home_team"]
	assert.Equal(t, "THE AVERAGE FAN", p.Title)
	assert.Equal(t, "TEAM_FANS_VS_GEN_POP", p.ComparisonPopulation)
	assert.InDelta(t, 0.2, p.MinAudienceShare, 1e-9)
	assert.Equal(t, 10000, p.MinAudienceCount)
	assert.Equal(t, []string{"Gamers"}, p.ExcludeCommunities)
	assert.Equal(t, 10, p.Limit())
	assert.Equal(t, "analytics.community_index", p.CommunityView)

	pal := p.Palette()
	assert.Equal(t, NewColor("1D428A"), pal.Primary)
	assert.Equal(t, NewColor("FFD700"), pal.Accent)
}

func TestPresetDefaults(t *testing.T) {
	presets, err := LoadPresets(writePresets(t))
	require.NoError(t, err)

	p := presets["minimal"]
	assert.Equal(t, 10, p.Limit())
	assert.Equal(t, DefaultPalette(), p.Palette())
}

func TestLoadPresetsMissingFile(t *testing.T) {
	_, err := LoadPresets(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
