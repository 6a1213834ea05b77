// ABOUTME: HTTP collector sink posting NDJSON or Splunk-HEC style batches.
// ABOUTME: Built on resty with bearer or Splunk token authentication.
package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/harperreed/runlog/internal/storage"
)

// DefaultHTTPTimeout bounds one batch request.
const DefaultHTTPTimeout = 30 * time.Second

// HTTPConfig configures the HTTP sink.
type HTTPConfig struct {
	URL   string
	Token string
	// HEC sends a JSON array of {event, sourcetype, source} envelopes.
	HEC     bool
	Timeout time.Duration
}

// HTTP posts table batches to a collector endpoint.
type HTTP struct {
	cfg    HTTPConfig
	client *resty.Client
}

type hecEvent struct {
	Event      storage.Record `json:"event"`
	SourceType string         `json:"sourcetype"`
	Source     string         `json:"source"`
}

// NewHTTP creates an HTTP sink. HEC mode requires a token.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.URL == "" {
		return nil, errors.New("http sink: url is required")
	}
	if cfg.HEC && cfg.Token == "" {
		return nil, errors.New("http sink: HEC requires a token")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultHTTPTimeout
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", "runlog")

	switch {
	case cfg.HEC:
		client.SetHeader("Content-Type", "application/json").
			SetHeader("Authorization", "Splunk "+cfg.Token)
	default:
		client.SetHeader("Content-Type", "application/x-ndjson")
		if cfg.Token != "" {
			client.SetAuthToken(cfg.Token)
		}
	}

	return &HTTP{cfg: cfg, client: client}, nil
}

// Send posts every record of table as one request.
func (h *HTTP) Send(ctx context.Context, table string, recs []storage.Record) error {
	body, err := h.encode(table, recs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", table, err)
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(h.cfg.URL)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("collector returned %s", resp.Status())
	}
	return nil
}

func (h *HTTP) encode(table string, recs []storage.Record) ([]byte, error) {
	if h.cfg.HEC {
		events := make([]hecEvent, len(recs))
		for i, r := range recs {
			events[i] = hecEvent{Event: r, SourceType: SourceType, Source: table}
		}
		return json.Marshal(events)
	}

	tagged := make([]storage.Record, len(recs))
	for i, r := range recs {
		tagged[i] = r.With("_sourcetype", SourceType).With("_source", table)
	}
	var buf bytes.Buffer
	if err := storage.WriteNDJSON(&buf, tagged); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close releases idle connections.
func (h *HTTP) Close() error {
	h.client.GetClient().CloseIdleConnections()
	return nil
}
