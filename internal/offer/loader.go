package offer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ingveliz02ia/Club-del-cafe/internal/metrics"
	"github.com/ingveliz02ia/Club-del-cafe/internal/platform/observability"
)

const (
	defaultLoadTimeout = 10 * time.Second
	maxDocumentBytes   = 4 << 20
)

// ErrLoad matches every *LoadError via errors.Is.
var ErrLoad = errors.New("offer: document could not be loaded")

// LoadError reports a failed document load. Status is the HTTP status for
// non-success responses and 0 otherwise.
type LoadError struct {
	Source string
	Status int
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != 0 {
		return fmt.Sprintf("offer: load %s: status %d", e.Source, e.Status)
	}
	return fmt.Sprintf("offer: load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is makes errors.Is(err, ErrLoad) hold for any LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// Loader fetches the offer document. Each call performs exactly one attempt
// and never serves a cached copy.
type Loader struct {
	client  *http.Client
	timeout time.Duration
}

// LoaderOption customises a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for http(s) sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithTimeout bounds a single load.
func WithTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// NewLoader constructs a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{client: http.DefaultClient, timeout: defaultLoadTimeout}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads source, an http(s) URL or a file path, and decodes it as JSON, or
// as YAML when the name or response content type says so.
func (l *Loader) Load(ctx context.Context, source string) (doc *Document, err error) {
	source = strings.TrimSpace(source)
	ctx, span := observability.StartSpan(ctx, "offer.Load", attribute.String("offer.source", observability.SanitizeURL(source)))
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, "load failed")
			observability.FromContext(ctx).Error("offer: load failed",
				zap.String("source", observability.SanitizeURL(source)), zap.Error(err))
		}
		metrics.DocumentLoads.WithLabelValues(outcome).Inc()
		span.End()
	}()

	if source == "" {
		return nil, &LoadError{Source: source, Err: errors.New("no source configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var (
		body   []byte
		asYAML = hasYAMLExt(source)
	)
	if isRemote(source) {
		var contentType string
		body, contentType, err = l.fetch(ctx, source)
		if err != nil {
			return nil, err
		}
		asYAML = asYAML || isYAMLContentType(contentType)
	} else {
		body, err = os.ReadFile(source)
		if err != nil {
			return nil, &LoadError{Source: source, Err: err}
		}
	}

	doc, err = decode(body, asYAML)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return doc, nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, "", &LoadError{Source: source, Err: err}
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", &LoadError{Source: source, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentBytes))
		return nil, "", &LoadError{
			Source: source,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes+1))
	if err != nil {
		return nil, "", &LoadError{Source: source, Err: err}
	}
	if len(body) > maxDocumentBytes {
		return nil, "", &LoadError{Source: source, Err: errors.New("document too large")}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func decode(body []byte, asYAML bool) (*Document, error) {
	var doc Document
	if asYAML {
		if err := yaml.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return &doc, nil
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return &doc, nil
}

func isRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func hasYAMLExt(source string) bool {
	name := source
	if isRemote(source) {
		if i := strings.IndexAny(name, "?#"); i >= 0 {
			name = name[:i]
		}
		name = path.Ext(name)
	} else {
		name = filepath.Ext(name)
	}
	switch strings.ToLower(name) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func isYAMLContentType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}
