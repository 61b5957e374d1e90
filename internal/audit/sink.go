package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	mdwerror "github.com/msto63/termcore/foundation/core/error"
	mdwlog "github.com/msto63/termcore/foundation/core/log"
)

// Sink kinds accepted by NewSink
const (
	SinkNone   = "none"
	SinkLog    = "log"
	SinkHTTP   = "http"
	SinkSQLite = "sqlite"
)

// SinkConfig selects and configures the sinks built by NewSink
type SinkConfig struct {
	Kinds      []string
	Endpoint   string
	SQLitePath string
	Timeout    time.Duration
	Logger     *mdwlog.Logger
}

// NewSink builds the sinks named in cfg.Kinds. More than one kind yields a
// MultiSink; none yields a NopSink.
func NewSink(cfg SinkConfig) (Sink, error) {
	var sinks []Sink
	for _, kind := range cfg.Kinds {
		switch kind {
		case "", SinkNone:
		case SinkLog:
			sinks = append(sinks, NewLogSink(cfg.Logger))
		case SinkHTTP:
			s, err := NewHTTPSink(cfg.Endpoint, cfg.Timeout)
			if err != nil {
				closeAll(sinks)
				return nil, err
			}
			sinks = append(sinks, s)
		case SinkSQLite:
			s, err := NewSQLiteSink(cfg.SQLitePath)
			if err != nil {
				closeAll(sinks)
				return nil, err
			}
			sinks = append(sinks, s)
		default:
			closeAll(sinks)
			return nil, mdwerror.Newf("unknown audit sink %q", kind).
				WithCode(mdwerror.CodeConfigError).
				WithOperation("audit.NewSink").
				WithDetail("sink", kind)
		}
	}

	switch len(sinks) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinks[0], nil
	default:
		return MultiSink(sinks), nil
	}
}

func closeAll(sinks []Sink) {
	for _, s := range sinks {
		if c, ok := s.(io.Closer); ok {
			c.Close()
		}
	}
}

// NopSink discards records
type NopSink struct{}

// Write implements Sink
func (NopSink) Write(context.Context, Record) error { return nil }

// MultiSink writes every record to each sink in turn
type MultiSink []Sink

// Write implements Sink; failures are joined
func (m MultiSink) Write(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// LogSink writes records through the structured logger at audit level
type LogSink struct {
	logger *mdwlog.Logger
}

// NewLogSink creates a LogSink; a nil logger uses the package default
func NewLogSink(logger *mdwlog.Logger) *LogSink {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	return &LogSink{logger: logger}
}

// Write implements Sink
func (s *LogSink) Write(_ context.Context, rec Record) error {
	s.logger.Audit("Command executed", mdwlog.Fields{
		"recordID":   rec.ID,
		"command":    rec.Command,
		"output":     rec.Output,
		"mode":       rec.Mode,
		"status":     string(rec.Status),
		"branch":     string(rec.Branch),
		"durationMs": rec.Duration.Milliseconds(),
	})
	return nil
}

// payload is the JSON body posted by HTTPSink
type payload struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	Output     string    `json:"output"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	Branch     string    `json:"branch"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms"`
}

func toPayload(rec Record) payload {
	return payload{
		ID:         rec.ID,
		Command:    rec.Command,
		Output:     rec.Output,
		Mode:       rec.Mode,
		Status:     string(rec.Status),
		Branch:     string(rec.Branch),
		Timestamp:  rec.Timestamp,
		DurationMs: rec.Duration.Milliseconds(),
	}
}

// HTTPSink posts each record as JSON to an external logging endpoint
type HTTPSink struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPSink validates endpoint and creates the sink
func NewHTTPSink(endpoint string, timeout time.Duration) (*HTTPSink, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, mdwerror.Newf("invalid audit endpoint %q", endpoint).
			WithCode(mdwerror.CodeConfigError).
			WithOperation("audit.NewHTTPSink")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSink{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Write implements Sink. Any non-2xx response is a delivery failure.
func (s *HTTPSink) Write(ctx context.Context, rec Record) error {
	body, err := json.Marshal(toPayload(rec))
	if err != nil {
		return fmt.Errorf("failed to encode audit record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return mdwerror.Wrap(err, "audit request failed").
			WithCode(mdwerror.CodeAuditDelivery).
			WithOperation("audit.HTTPSink.Write")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return mdwerror.Newf("audit endpoint returned status %d", resp.StatusCode).
			WithCode(mdwerror.CodeAuditDelivery).
			WithOperation("audit.HTTPSink.Write").
			WithDetail("status", resp.StatusCode)
	}
	return nil
}
