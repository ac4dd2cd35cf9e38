package transport

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/ledgrio/ledgrio-go/internal/errors"
	"github.com/ledgrio/ledgrio-go/session"
)

const requestIDHeader = "X-Request-ID"

// Pipeline decorates every outbound request with the current credentials.
// It implements http.RoundTripper: requests issued while the host is
// closing are rejected before touching the network, otherwise the bearer
// token (when present) and a request ID are attached and the request is
// handed to the base transport. The pipeline never blocks beyond the
// synchronous token lookup and the optional rate limiter.
type Pipeline struct {
	base    http.RoundTripper
	store   *session.Store
	probe   Probe
	limiter *rate.Limiter
	log     zerolog.Logger
}

var _ http.RoundTripper = (*Pipeline)(nil)

// PipelineOption defines a function type to modify the Pipeline instance.
type PipelineOption func(*Pipeline)

// WithBaseTransport sets the underlying transport (default http.DefaultTransport).
func WithBaseTransport(base http.RoundTripper) PipelineOption {
	return func(p *Pipeline) {
		p.base = base
	}
}

// WithPipelineProbe sets the environment probe used for the closing check.
func WithPipelineProbe(probe Probe) PipelineOption {
	return func(p *Pipeline) {
		p.probe = probe
	}
}

// WithRateLimiter throttles outbound requests. Nil disables throttling.
func WithRateLimiter(limiter *rate.Limiter) PipelineOption {
	return func(p *Pipeline) {
		p.limiter = limiter
	}
}

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(log zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = log
	}
}

// NewPipeline creates a request pipeline reading credentials from store.
func NewPipeline(store *session.Store, options ...PipelineOption) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("[NewPipeline] store is required")
	}

	pipeline := &Pipeline{
		base:  http.DefaultTransport,
		store: store,
		probe: NopProbe{},
		log:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(pipeline)
	}
	return pipeline, nil
}

// RoundTrip implements http.RoundTripper.
func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	if p.probe.Closing() {
		return nil, apperrors.ErrClientClosed
	}

	if p.limiter != nil {
		if err := p.limiter.Wait(req.Context()); err != nil {
			return nil, errors.Wrap(err, "[Pipeline.RoundTrip] rate limiter")
		}
	}

	// RoundTrippers must not mutate the caller's request.
	req = req.Clone(req.Context())
	if token := p.store.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Header.Get(requestIDHeader) == "" {
		req.Header.Set(requestIDHeader, uuid.New().String())
	}

	p.log.Trace().Str("method", req.Method).Str("path", req.URL.Path).Msg("outbound request")
	return p.base.RoundTrip(req)
}
