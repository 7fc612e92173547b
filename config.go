package fanwheel

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds process-level settings read from the environment. A .env file
// in the working directory is loaded first when present.
type Config struct {
	// BrandfetchAPIKey enables the primary brand API. Empty skips it.
	BrandfetchAPIKey  string        `envconfig:"BRANDFETCH_API_KEY"`
	BrandfetchBaseURL string        `envconfig:"BRANDFETCH_BASE_URL" default:"https://api.brandfetch.io/v2"`
	ClearbitBaseURL   string        `envconfig:"CLEARBIT_BASE_URL" default:"https://logo.clearbit.com"`
	LookupTimeout     time.Duration `envconfig:"LOOKUP_TIMEOUT" default:"10s"`

	// WarehouseDSN is the Postgres-protocol connection string for the
	// analytics warehouse. Empty disables the warehouse source.
	WarehouseDSN string `envconfig:"WAREHOUSE_DSN"`

	CacheDir string `envconfig:"LOGO_CACHE_DIR" default:"logos"`
	FontDir  string `envconfig:"FONT_DIR"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load but panics on failure, for use at program startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// ResolverOptions builds resolver options from the config.
func (c *Config) ResolverOptions(fonts *FontCache) ResolverOptions {
	return ResolverOptions{
		CacheDir:          c.CacheDir,
		BrandfetchAPIKey:  c.BrandfetchAPIKey,
		BrandfetchBaseURL: c.BrandfetchBaseURL,
		ClearbitBaseURL:   c.ClearbitBaseURL,
		Timeout:           c.LookupTimeout,
		Fonts:             fonts,
	}
}

// Preset is one named wheel configuration from a presets YAML file: the
// selection criteria for the warehouse source plus the visual styling.
type Preset struct {
	// Title is drawn in the wheel medallion.
	Title string `yaml:"title"`

	// Brand colors as hex strings; empty entries fall back to the defaults.
	PrimaryColor   string `yaml:"primary_color"`
	SecondaryColor string `yaml:"secondary_color"`
	AccentColor    string `yaml:"accent_color"`

	// ComparisonPopulation names the baseline audience segments are indexed
	// against in the warehouse.
	ComparisonPopulation string `yaml:"comparison_population"`
	// MinAudienceShare filters communities by their share of the audience.
	MinAudienceShare float64 `yaml:"min_audience_share"`
	// MinAudienceCount filters merchants by absolute audience size.
	MinAudienceCount int `yaml:"min_audience_count"`
	// ExcludeCommunities drops specific communities from selection even
	// when approved.
	ExcludeCommunities []string `yaml:"exclude_communities"`
	// SegmentLimit caps the number of wheel sectors. Default 10.
	SegmentLimit int `yaml:"segment_limit"`

	// CommunityView and MerchantView are the warehouse views queried. They
	// come from operator-controlled preset files, not user input.
	CommunityView string `yaml:"community_view"`
	MerchantView  string `yaml:"merchant_view"`

	// Output and Summary are the destination file paths.
	Output  string `yaml:"output"`
	Summary string `yaml:"summary"`
	// CenterMark is an optional path to the medallion image.
	CenterMark string `yaml:"center_mark"`
}

// Palette builds the render palette from the preset colors, keeping the
// default for any color the preset leaves empty.
func (p Preset) Palette() Palette {
	pal := DefaultPalette()
	if p.PrimaryColor != "" {
		pal.Primary = NewColor(p.PrimaryColor)
	}
	if p.SecondaryColor != "" {
		pal.Secondary = NewColor(p.SecondaryColor)
	}
	if p.AccentColor != "" {
		pal.Accent = NewColor(p.AccentColor)
	}
	return pal
}

// Limit returns the effective segment cap.
func (p Preset) Limit() int {
	if p.SegmentLimit <= 0 {
		return 10
	}
	return p.SegmentLimit
}

// LoadPresets reads a map of named presets from a YAML file.
func LoadPresets(path string) (map[string]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets %s: %w", path, err)
	}
	presets := make(map[string]Preset)
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("parse presets %s: %w", path, err)
	}
	if len(presets) == 0 {
		return nil, fmt.Errorf("presets file %s defines no presets", path)
	}
	return presets, nil
}
