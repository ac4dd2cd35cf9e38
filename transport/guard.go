package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/ledgrio/ledgrio-go/internal/errors"
	"github.com/ledgrio/ledgrio-go/session"
)

// maxErrorBody bounds how much of an error response body is read for
// message extraction.
const maxErrorBody = 64 << 10

// RefreshFunc exchanges the stored refresh token for a new session and
// updates the store. It must not retry itself; a failed refresh is terminal
// for that cycle.
type RefreshFunc func(ctx context.Context) error

// Guard intercepts every response from the pipeline. A 401 triggers exactly
// one refresh-and-retry cycle per originating request; concurrent refreshes
// coalesce into a single in-flight call. Any other failure is classified,
// notified at most once, and returned to the caller as a *Error.
type Guard struct {
	next      http.RoundTripper
	store     *session.Store
	refresh   RefreshFunc
	probe     Probe
	notifier  Notifier
	onExpired func()
	group     singleflight.Group
	log       zerolog.Logger
}

var _ http.RoundTripper = (*Guard)(nil)

// GuardOption defines a function type to modify the Guard instance.
type GuardOption func(*Guard)

// WithGuardProbe sets the environment probe used for notification suppression.
func WithGuardProbe(probe Probe) GuardOption {
	return func(g *Guard) {
		g.probe = probe
	}
}

// WithNotifier sets the notifier receiving classified failures.
func WithNotifier(notifier Notifier) GuardOption {
	return func(g *Guard) {
		g.notifier = notifier
	}
}

// WithOnSessionExpired sets the hook fired once per unrecoverable refresh,
// after the store has been cleared. The host application uses it to return
// the user to its login surface.
func WithOnSessionExpired(hook func()) GuardOption {
	return func(g *Guard) {
		g.onExpired = hook
	}
}

// WithGuardLogger sets the guard logger.
func WithGuardLogger(log zerolog.Logger) GuardOption {
	return func(g *Guard) {
		g.log = log
	}
}

// NewGuard creates a response guard in front of next (normally a *Pipeline).
func NewGuard(next http.RoundTripper, store *session.Store, refresh RefreshFunc, options ...GuardOption) (*Guard, error) {
	if next == nil {
		return nil, errors.New("[NewGuard] next transport is required")
	}
	if store == nil {
		return nil, errors.New("[NewGuard] store is required")
	}

	guard := &Guard{
		next:  next,
		store: store,
		refresh: refresh,
		probe: NopProbe{},
		log:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(guard)
	}
	if guard.notifier == nil {
		guard.notifier = LogNotifier{Log: guard.log}
	}
	return guard, nil
}

// RoundTrip implements http.RoundTripper.
func (g *Guard) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := g.next.RoundTrip(req)
	if err != nil {
		// A closing host abandons the request silently; the caller sees the
		// rejection but the user sees nothing.
		if apperrors.Is(err, apperrors.ErrClientClosed) {
			return nil, err
		}
		cls := Classify(0, req.URL.Path, "", err)
		g.emit(cls)
		return nil, &Error{Message: cls.Message, err: cls.Err, cause: err}
	}

	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	if resp.StatusCode == http.StatusUnauthorized && !wasRetried(req.Context()) && g.refresh != nil {
		drain(resp)
		if err := g.refreshSession(req.Context()); err != nil {
			// The session is gone and the onExpired hook has fired; the
			// original caller observes a rejection, not a second retry.
			return nil, &Error{
				Status:  http.StatusUnauthorized,
				Message: "Your session has expired. Please log in again.",
				err:     apperrors.ErrSessionExpired,
				cause:   err,
			}
		}

		retryReq, err := replay(req)
		if err != nil {
			return nil, errors.Wrap(err, "[Guard.RoundTrip] prepare retry")
		}
		g.log.Debug().Str("path", req.URL.Path).Msg("retrying request with refreshed token")
		// The retried context falls through to classification on a second 401.
		return g.RoundTrip(retryReq)
	}

	serverMessage := extractMessage(resp)
	cls := Classify(resp.StatusCode, req.URL.Path, serverMessage, nil)
	if cls.Action != ActionSilent {
		g.emit(cls)
	}
	return nil, &Error{Status: resp.StatusCode, Message: cls.Message, err: cls.Err}
}

// refreshSession coalesces concurrent refresh attempts into one in-flight
// call. Every waiter shares the outcome; on failure the store is cleared and
// the expiry hook fires exactly once.
func (g *Guard) refreshSession(ctx context.Context) error {
	_, err, _ := g.group.Do("refresh", func() (interface{}, error) {
		if err := g.refresh(ctx); err != nil {
			g.log.Warn().Err(err).Msg("token refresh failed, clearing session")
			g.store.Clear()
			if g.onExpired != nil {
				g.onExpired()
			}
			return nil, err
		}
		return nil, nil
	})
	return err
}

func (g *Guard) emit(cls Classification) {
	if g.probe.Hidden() {
		g.log.Debug().Str("category", string(cls.Category)).Str("message", cls.Message).
			Msg("notification suppressed: host hidden")
		return
	}
	g.notifier.Notify(cls.Category, cls.Message)
}

// replay clones the request for resubmission, marking it retried and
// rewinding the body. Requests without a replayable body cannot be retried.
func replay(req *http.Request) (*http.Request, error) {
	if req.Body != nil && req.GetBody == nil {
		return nil, errors.New("request body is not replayable")
	}
	clone := req.Clone(markRetried(req.Context()))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "rewind request body")
		}
		clone.Body = body
	}
	return clone, nil
}

// extractMessage pulls the optional "message" field from an error response
// envelope, consuming and closing the body.
func extractMessage(resp *http.Response) string {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	_ = resp.Body.Close()
}
