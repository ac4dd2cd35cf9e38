package client

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	apperrors "github.com/ledgrio/ledgrio-go/internal/errors"
)

// TokenSource exposes the session as an oauth2.TokenSource so the client
// can feed libraries built around that interface. Expired tokens are
// refreshed before being handed out.
func (c *Client) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{ctx: ctx, client: c}
}

type sessionTokenSource struct {
	ctx    context.Context
	client *Client
}

func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	sess := ts.client.store.Current()
	if !sess.Valid() {
		return nil, apperrors.ErrNoSession
	}
	if sess.Expired(time.Now()) {
		refreshed, err := ts.client.RefreshAccessToken(ts.ctx)
		if err != nil {
			return nil, errors.Wrap(err, "[TokenSource] refresh expired token")
		}
		sess = refreshed
	}
	return &oauth2.Token{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       sess.ExpiresAt,
	}, nil
}

var _ oauth2.TokenSource = (*sessionTokenSource)(nil)
