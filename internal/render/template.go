// Package render fetches theme templates from a remote source and substitutes
// page variables into them. The substitution syntax is the one the theme files
// use: {{field}} placeholders (HTML-escaped except content) and a
// {{#img}}...{{/img}} conditional block.
package render

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/blog-content-api/internal/cache"
	"github.com/rs/zerolog"
)

// ContentField is inserted without HTML escaping; everything else is escaped.
const ContentField = "content"

var (
	imgBlockKeep  = regexp.MustCompile(`(?s){{#img}}(.*?){{/img}}`)
	leftoverField = regexp.MustCompile(`{{[^}]*}}`)
	fieldPattern  = regexp.MustCompile(`{{(\w+)}}`)
)

// Fetcher retrieves theme templates over HTTP with a short timeout and an
// advisory TTL cache. Fetch failures surface as errors for the caller to turn
// into a 500 response; they never crash the process.
type Fetcher struct {
	client *http.Client
	cache  *cache.Cache
	log    zerolog.Logger
}

// NewFetcher creates a Fetcher with the given network timeout and cache TTL.
func NewFetcher(timeout, cacheTTL time.Duration, log zerolog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
		cache:  cache.New(cacheTTL),
		log:    log.With().Str("service", "render").Logger(),
	}
}

// Template fetches <themeURL><name>.html. The theme URL is request-scoped:
// callers pass it explicitly instead of mutating shared configuration.
func (f *Fetcher) Template(ctx context.Context, themeURL, name string) (string, error) {
	cacheKey := themeURL + name
	if cached, ok := f.cache.Get(cacheKey); ok {
		return cached.(string), nil
	}

	url := fmt.Sprintf("%s%s.html", themeURL, name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build template request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch template %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch template %s: HTTP %d", name, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read template %s: %w", name, err)
	}

	template := string(body)
	f.cache.Put(cacheKey, template)
	return template, nil
}

// ClearCache drops all cached templates.
func (f *Fetcher) ClearCache() {
	f.cache.Clear()
}

// Render substitutes data into a theme template. Known fields are replaced
// with their HTML-escaped value (content stays raw); the {{#img}} block is
// kept only when an img value is present; any leftover placeholder is
// stripped.
func Render(template string, data map[string]string) string {
	out := fieldPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2]
		value, ok := data[key]
		if !ok {
			return match // leftover placeholders are stripped at the end
		}
		if key == ContentField {
			return value
		}
		return html.EscapeString(value)
	})

	if data["img"] != "" {
		out = imgBlockKeep.ReplaceAllString(out, "$1")
	} else {
		out = imgBlockKeep.ReplaceAllString(out, "")
	}

	return leftoverField.ReplaceAllString(out, "")
}
