package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGraphBaseURL    = "https://graph.facebook.com"
	defaultGraphAPIVersion = "v19.0"
	defaultConversionsWait = 5 * time.Second
)

// ConversionsConfig configures the Meta Conversions API sink.
type ConversionsConfig struct {
	PixelID       string
	AccessToken   string
	APIVersion    string
	TestEventCode string
	BaseURL       string
	HTTPClient    *http.Client
	Timeout       time.Duration
}

// ConversionsSink posts events to the Meta Conversions API, the server-side
// counterpart of the browser pixel.
type ConversionsSink struct {
	endpoint      string
	token         string
	testEventCode string
	client        *http.Client
	timeout       time.Duration
}

// NewConversionsSink validates cfg and builds the sink.
func NewConversionsSink(cfg ConversionsConfig) (*ConversionsSink, error) {
	pixel := strings.TrimSpace(cfg.PixelID)
	token := strings.TrimSpace(cfg.AccessToken)
	if pixel == "" || token == "" {
		return nil, errors.New("tracking: conversions sink needs pixel id and access token")
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultGraphBaseURL
	}
	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = defaultGraphAPIVersion
	}
	endpoint, err := url.JoinPath(base, version, pixel, "events")
	if err != nil {
		return nil, fmt.Errorf("tracking: conversions endpoint: %w", err)
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConversionsWait
	}
	return &ConversionsSink{
		endpoint:      endpoint,
		token:         token,
		testEventCode: strings.TrimSpace(cfg.TestEventCode),
		client:        client,
		timeout:       timeout,
	}, nil
}

func (s *ConversionsSink) Name() string { return "conversions" }

type conversionsPayload struct {
	Data          []conversionsEvent `json:"data"`
	TestEventCode string             `json:"test_event_code,omitempty"`
}

type conversionsEvent struct {
	EventName      string            `json:"event_name"`
	EventTime      int64             `json:"event_time"`
	EventID        string            `json:"event_id,omitempty"`
	ActionSource   string            `json:"action_source"`
	EventSourceURL string            `json:"event_source_url,omitempty"`
	UserData       conversionsUser   `json:"user_data"`
	CustomData     map[string]string `json:"custom_data"`
}

type conversionsUser struct {
	ClientIP  string `json:"client_ip_address,omitempty"`
	UserAgent string `json:"client_user_agent,omitempty"`
}

// Send implements Sink.
func (s *ConversionsSink) Send(ctx context.Context, ev Event) error {
	payload := conversionsPayload{
		Data: []conversionsEvent{{
			EventName:      ev.Name,
			EventTime:      ev.Time.Unix(),
			EventID:        ev.ID,
			ActionSource:   "website",
			EventSourceURL: ev.PageURL,
			UserData:       conversionsUser{ClientIP: ev.ClientIP, UserAgent: ev.UserAgent},
			CustomData: map[string]string{
				"content_name": ev.ContentName,
				"source":       ev.Source,
			},
		}},
		TestEventCode: s.testEventCode,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode conversions payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"?access_token="+url.QueryEscape(s.token), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build conversions request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post conversions event: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("conversions api status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
