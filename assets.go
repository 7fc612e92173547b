package fanwheel

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	defaultBrandfetchBaseURL = "https://api.brandfetch.io/v2"
	defaultClearbitBaseURL   = "https://logo.clearbit.com"
	defaultLookupTimeout     = 10 * time.Second

	// maxLogoBytes bounds a single logo download.
	maxLogoBytes = 10 << 20

	placeholderSize = 400
)

// ResolverOptions configures an asset Resolver.
type ResolverOptions struct {
	// CacheDir is where resolved logos are stored, one PNG per normalized
	// asset key. Default: "logos".
	CacheDir string
	// BrandfetchAPIKey enables the primary brand-API lookup. Empty disables it.
	BrandfetchAPIKey string
	// BrandfetchBaseURL overrides the brand API endpoint (tests point this
	// at a local server).
	BrandfetchBaseURL string
	// ClearbitBaseURL overrides the secondary logo endpoint.
	ClearbitBaseURL string
	// Timeout bounds each individual lookup attempt. Default: 10s.
	Timeout time.Duration
	// Fonts supplies the face used to draw placeholder letters. Nil falls
	// back to the built-in bitmap font.
	Fonts *FontCache
}

// Resolver turns merchant names into local logo image files through an
// ordered fallback chain: disk cache, primary brand API, secondary logo API,
// synthesized letter placeholder. The terminal synthesis step cannot fail,
// so Resolve always yields a usable image.
type Resolver struct {
	cacheDir       string
	client         *http.Client
	brandfetchKey  string
	brandfetchBase string
	clearbitBase   string
	fonts          *FontCache
}

// NewResolver creates a Resolver with defaults applied for any unset option.
func NewResolver(opts ResolverOptions) *Resolver {
	if opts.CacheDir == "" {
		opts.CacheDir = "logos"
	}
	if opts.BrandfetchBaseURL == "" {
		opts.BrandfetchBaseURL = defaultBrandfetchBaseURL
	}
	if opts.ClearbitBaseURL == "" {
		opts.ClearbitBaseURL = defaultClearbitBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultLookupTimeout
	}
	return &Resolver{
		cacheDir:       opts.CacheDir,
		client:         &http.Client{Timeout: opts.Timeout},
		brandfetchKey:  opts.BrandfetchAPIKey,
		brandfetchBase: strings.TrimSuffix(opts.BrandfetchBaseURL, "/"),
		clearbitBase:   strings.TrimSuffix(opts.ClearbitBaseURL, "/"),
		fonts:          opts.Fonts,
	}
}

// NormalizeAssetKey produces the cache/domain key for an asset: lowercased
// with spaces, apostrophes, commas, and periods stripped.
func NormalizeAssetKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "", "'", "", "’", "", ",", "", ".", "").Replace(key)
}

// CachePath returns the deterministic on-disk location for an asset key.
func (r *Resolver) CachePath(key string) string {
	return filepath.Join(r.cacheDir, NormalizeAssetKey(key)+".png")
}

// Resolve returns a local file path to a logo image for the given asset key.
// A cached file is returned immediately; otherwise the primary and secondary
// lookup services are tried in order, and if both fail a letter placeholder
// is synthesized. Lookup failures are logged and swallowed; the returned
// error is only non-nil when the cache directory itself cannot be written.
func (r *Resolver) Resolve(ctx context.Context, key string) (string, error) {
	path := r.CachePath(key)
	if _, err := os.Stat(path); err == nil {
		log.Debug().Str("asset", key).Str("path", path).Msg("logo cache hit")
		return path, nil
	}

	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("create logo cache dir: %w", err)
	}

	norm := NormalizeAssetKey(key)
	if r.brandfetchKey != "" {
		for _, domain := range domainCandidates(norm) {
			data, err := r.fetchBrandfetch(ctx, domain)
			if err != nil {
				log.Debug().Err(err).Str("asset", key).Str("domain", domain).Msg("brand API lookup failed")
				continue
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return "", fmt.Errorf("write logo %s: %w", path, err)
			}
			log.Info().Str("asset", key).Str("domain", domain).Msg("logo resolved via brand API")
			return path, nil
		}
	}

	for _, domain := range domainCandidates(norm) {
		data, err := r.fetchClearbit(ctx, domain)
		if err != nil {
			log.Debug().Err(err).Str("asset", key).Str("domain", domain).Msg("logo API lookup failed")
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("write logo %s: %w", path, err)
		}
		log.Info().Str("asset", key).Str("domain", domain).Msg("logo resolved via logo API")
		return path, nil
	}

	if err := r.synthesize(key, path); err != nil {
		return "", fmt.Errorf("synthesize placeholder for %s: %w", key, err)
	}
	log.Info().Str("asset", key).Msg("logo synthesized as letter placeholder")
	return path, nil
}

// domainCandidates guesses the domains a brand might live at.
func domainCandidates(norm string) []string {
	return []string{norm + ".com", norm + ".net", norm + ".org"}
}

// brandResponse is the subset of the brand API payload we read.
type brandResponse struct {
	Logos []struct {
		Formats []struct {
			Src string `json:"src"`
		} `json:"formats"`
	} `json:"logos"`
}

// fetchBrandfetch queries the primary brand API for a domain and downloads
// the first logo format it advertises.
func (r *Resolver) fetchBrandfetch(ctx context.Context, domain string) ([]byte, error) {
	url := fmt.Sprintf("%s/brands/%s", r.brandfetchBase, domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.brandfetchKey)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brand API status %d", resp.StatusCode)
	}

	var brand brandResponse
	if err := json.NewDecoder(resp.Body).Decode(&brand); err != nil {
		return nil, fmt.Errorf("decode brand payload: %w", err)
	}
	if len(brand.Logos) == 0 || len(brand.Logos[0].Formats) == 0 || brand.Logos[0].Formats[0].Src == "" {
		return nil, fmt.Errorf("brand payload has no logo formats")
	}

	return r.fetchImage(ctx, brand.Logos[0].Formats[0].Src)
}

// fetchClearbit queries the secondary logo API, which serves the image
// directly at a domain-keyed URL.
func (r *Resolver) fetchClearbit(ctx context.Context, domain string) ([]byte, error) {
	return r.fetchImage(ctx, r.clearbitBase+"/"+domain)
}

// fetchImage downloads a URL and accepts it only as a non-empty image payload.
func (r *Resolver) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "image") {
		return nil, fmt.Errorf("non-image content type %q", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	return data, nil
}

// synthesize writes a letter placeholder to path: the first letter of the
// asset key, uppercased and centered in neutral gray on a transparent square.
func (r *Resolver) synthesize(key, path string) error {
	letter := "?"
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		r, _ := utf8.DecodeRuneInString(trimmed)
		letter = strings.ToUpper(string(r))
	}

	img := image.NewRGBA(image.Rect(0, 0, placeholderSize, placeholderSize))

	var face font.Face = basicfont.Face7x13
	if r.fonts != nil {
		for _, name := range []string{"Red Hat Display", "arial", "dejavu sans", "liberation sans"} {
			if f := r.fonts.GetFace(name, 200, true); f != nil {
				face = f
				break
			}
		}
	}

	gray := color.RGBA{R: 100, G: 100, B: 100, A: 255}
	w := font.MeasureString(face, letter).Ceil()
	m := face.Metrics()
	x := (placeholderSize - w) / 2
	y := placeholderSize/2 + (m.Ascent.Ceil()-m.Descent.Ceil())/2

	d := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{gray},
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(letter)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
