// Package client is the public surface of the Ledgrio API client: verb
// methods over the authenticated pipeline, file helpers, and the session
// operations (login, logout, refresh, profile).
package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ledgrio/ledgrio-go/internal/config"
	"github.com/ledgrio/ledgrio-go/session"
	"github.com/ledgrio/ledgrio-go/storage"
	"github.com/ledgrio/ledgrio-go/transport"
)

// Client is an authenticated HTTP client for the Ledgrio API. All feature
// code goes through its verb methods or session operations; the pipeline
// and guard behind them handle token attachment, refresh-and-retry-once,
// and error classification.
type Client struct {
	cfg     config.Config
	baseURL *url.URL
	store   *session.Store
	httpc   *http.Client // guarded: refresh-retry + classification
	rawc    *http.Client // pipeline only, for the session endpoints themselves
	probe   *hostProbe
	log     zerolog.Logger

	// construction state, set by options
	repo      session.Repo
	notifier  transport.Notifier
	userProbe transport.Probe
	base      http.RoundTripper
	limiter   *rate.Limiter
	onExpired func()
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithStorage overrides the durable session storage chosen by config.
func WithStorage(repo session.Repo) Option {
	return func(c *Client) {
		c.repo = repo
	}
}

// WithNotifier sets the notifier receiving classified request failures.
func WithNotifier(notifier transport.Notifier) Option {
	return func(c *Client) {
		c.notifier = notifier
	}
}

// WithProbe wires the host application's lifecycle signals into the client.
func WithProbe(probe transport.Probe) Option {
	return func(c *Client) {
		c.userProbe = probe
	}
}

// WithTransport sets the underlying network transport (primarily for testing).
func WithTransport(base http.RoundTripper) Option {
	return func(c *Client) {
		c.base = base
	}
}

// WithRateLimit throttles outbound requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithOnSessionExpired sets the hook fired once when a refresh cycle fails
// terminally and the session has been cleared.
func WithOnSessionExpired(hook func()) Option {
	return func(c *Client) {
		c.onExpired = hook
	}
}

// New creates a Ledgrio API client from cfg. A nil cfg reads configuration
// from the environment.
func New(cfg config.Config, options ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.New()
	}

	c := &Client{
		cfg: cfg,
		log: zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}

	baseURL, err := url.Parse(strings.TrimSuffix(cfg.GetBaseURL(), "/"))
	if err != nil {
		return nil, errors.Wrap(err, "[client.New] parse base URL")
	}
	c.baseURL = baseURL

	if c.repo == nil {
		c.repo, err = newRepoFromConfig(cfg)
		if err != nil {
			return nil, errors.Wrap(err, "[client.New] session storage")
		}
	}

	c.store = session.NewStore(c.repo, session.WithLogger(c.log))
	c.store.Hydrate()

	c.probe = &hostProbe{wrapped: c.userProbe}

	pipelineOpts := []transport.PipelineOption{
		transport.WithPipelineProbe(c.probe),
		transport.WithPipelineLogger(c.log),
	}
	if c.base != nil {
		pipelineOpts = append(pipelineOpts, transport.WithBaseTransport(c.base))
	}
	if c.limiter != nil {
		pipelineOpts = append(pipelineOpts, transport.WithRateLimiter(c.limiter))
	}
	pipeline, err := transport.NewPipeline(c.store, pipelineOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "[client.New] pipeline")
	}

	guardOpts := []transport.GuardOption{
		transport.WithGuardProbe(c.probe),
		transport.WithGuardLogger(c.log),
	}
	if c.notifier != nil {
		guardOpts = append(guardOpts, transport.WithNotifier(c.notifier))
	}
	if c.onExpired != nil {
		guardOpts = append(guardOpts, transport.WithOnSessionExpired(c.onExpired))
	}
	guard, err := transport.NewGuard(pipeline, c.store, c.refreshForGuard, guardOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "[client.New] guard")
	}

	timeout := cfg.GetRequestTimeout()
	c.httpc = &http.Client{Transport: guard, Timeout: timeout}
	c.rawc = &http.Client{Transport: pipeline, Timeout: timeout}
	return c, nil
}

func newRepoFromConfig(cfg config.Config) (session.Repo, error) {
	switch cfg.GetStorageDriver() {
	case "sqlite":
		return storage.NewSQLiteRepo(cfg.GetSQLitePath())
	case "memory":
		return nil, nil
	default:
		return storage.NewFileRepo(cfg.GetSessionFile(), cfg.GetSealKey())
	}
}

// Store exposes the session store for read access by the host application.
func (c *Client) Store() *session.Store {
	return c.store
}

// Close marks the client as closing. Requests issued afterwards, or racing
// the close, are rejected silently. Durable storage holding resources is
// released.
func (c *Client) Close() error {
	c.probe.closing.Store(true)
	if closer, ok := c.repo.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// refreshForGuard adapts RefreshAccessToken to the guard's RefreshFunc.
func (c *Client) refreshForGuard(ctx context.Context) error {
	_, err := c.RefreshAccessToken(ctx)
	return err
}

// hostProbe combines the client's own closing flag with the host
// application's optional probe.
type hostProbe struct {
	closing atomic.Bool
	wrapped transport.Probe
}

func (p *hostProbe) Hidden() bool {
	if p.wrapped != nil {
		return p.wrapped.Hidden()
	}
	return false
}

func (p *hostProbe) Closing() bool {
	if p.closing.Load() {
		return true
	}
	if p.wrapped != nil {
		return p.wrapped.Closing()
	}
	return false
}

var _ transport.Probe = (*hostProbe)(nil)
