package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	apperrors "github.com/ledgrio/ledgrio-go/internal/errors"
	"github.com/ledgrio/ledgrio-go/session"
)

const (
	loginPath          = "/auth/login"
	logoutPath         = "/auth/logout"
	refreshPath        = "/auth/refresh-token"
	currentUserPath    = "/user/me"
	profilePath        = "/user/profile"
	changePasswordPath = "/user/change-password"
	profilePicturePath = "/user/profile-picture"
)

// Credentials are the login parameters.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// tokenPayload is the data payload of the login and refresh endpoints.
type tokenPayload struct {
	Token        string              `json:"token"`
	RefreshToken string              `json:"refreshToken"`
	User         session.UserSummary `json:"user"`
}

// Login authenticates with the Ledgrio API and stores the resulting session.
// On failure the returned error carries the server-provided message when one
// exists, falling back to a transport-level description.
func (c *Client) Login(ctx context.Context, creds Credentials) (*session.Session, error) {
	env, status, err := c.postSessionEndpoint(ctx, loginPath, creds)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Login] post credentials")
	}
	if status >= http.StatusBadRequest || !env.Success {
		if env.Message != "" {
			return nil, errors.New(env.Message)
		}
		return nil, errors.Errorf("[Client.Login] login failed (%d)", status)
	}

	var payload tokenPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] decode login payload")
	}
	sess := session.Session{
		AccessToken:  payload.Token,
		RefreshToken: payload.RefreshToken,
		User:         payload.User,
	}
	if err := c.store.Set(sess); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] store session")
	}
	c.log.Info().Str("email", payload.User.Email).Msg("logged in")
	return c.store.Current(), nil
}

// Logout notifies the server best-effort and always clears the local
// session, even when the network call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.store.Clear()

	if c.store.Token() == "" {
		return nil
	}
	if _, _, err := c.postSessionEndpoint(ctx, logoutPath, nil); err != nil {
		c.log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
	}
	return nil
}

// RefreshAccessToken exchanges the stored refresh token for a new
// access/refresh pair. It never retries itself; a failed refresh is terminal
// for that cycle.
func (c *Client) RefreshAccessToken(ctx context.Context) (*session.Session, error) {
	current := c.store.Current()
	if !current.Valid() {
		return nil, apperrors.ErrNoRefreshToken
	}

	env, status, err := c.postSessionEndpoint(ctx, refreshPath, map[string]string{
		"refreshToken": current.RefreshToken,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[Client.RefreshAccessToken] post refresh token")
	}
	if status >= http.StatusBadRequest || !env.Success {
		if env.Message != "" {
			return nil, errors.Wrap(apperrors.ErrUnauthorized, env.Message)
		}
		return nil, errors.Wrapf(apperrors.ErrUnauthorized, "[Client.RefreshAccessToken] refresh rejected (%d)", status)
	}

	var payload tokenPayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return nil, errors.Wrap(err, "[Client.RefreshAccessToken] decode refresh payload")
	}

	next := session.Session{
		AccessToken:  payload.Token,
		RefreshToken: payload.RefreshToken,
		User:         payload.User,
	}
	// Servers that do not rotate the refresh token or re-send the user omit
	// them; carry the current values forward.
	if next.RefreshToken == "" {
		next.RefreshToken = current.RefreshToken
	}
	if next.User.ID == "" {
		next.User = current.User
	}
	if err := c.store.Set(next); err != nil {
		return nil, errors.Wrap(err, "[Client.RefreshAccessToken] store session")
	}
	return c.store.Current(), nil
}

// GetCurrentUser fetches the authenticated profile and refreshes the cached
// user display data.
func (c *Client) GetCurrentUser(ctx context.Context) (*session.UserSummary, error) {
	var user session.UserSummary
	if err := c.Get(ctx, currentUserPath, &user); err != nil {
		return nil, err
	}
	c.cacheUser(user)
	return &user, nil
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// UpdateProfile updates the authenticated user's profile.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*session.UserSummary, error) {
	var user session.UserSummary
	if err := c.Put(ctx, profilePath, req, &user); err != nil {
		return nil, err
	}
	c.cacheUser(user)
	return &user, nil
}

// ChangePassword changes the authenticated user's password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.Post(ctx, changePasswordPath, map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}, nil)
}

// UploadProfilePicture uploads a new profile picture.
func (c *Client) UploadProfilePicture(ctx context.Context, filename string, r io.Reader) (*session.UserSummary, error) {
	var user session.UserSummary
	file := FormFile{Field: "profilePicture", Name: filename, Reader: r}
	if err := c.UploadFile(ctx, profilePicturePath, file, url.Values{}, nil, &user); err != nil {
		return nil, err
	}
	c.cacheUser(user)
	return &user, nil
}

func (c *Client) cacheUser(user session.UserSummary) {
	if user.ID == "" {
		return
	}
	if current := c.store.Current(); current.Valid() {
		current.User = user
		if err := c.store.Set(*current); err != nil {
			c.log.Warn().Err(err).Msg("failed to cache updated user")
		}
	}
}

// postSessionEndpoint posts to a session endpoint through the raw pipeline.
// Session endpoints handle their own status codes, so the guard's
// refresh-and-retry must not apply to them.
func (c *Client) postSessionEndpoint(ctx context.Context, path string, body any) (*envelope, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, reader)
	if err != nil {
		return nil, 0, err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.rawc.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(apperrors.ErrNetwork, unwrapTransportErr(err).Error())
	}
	defer resp.Body.Close()

	var env envelope
	if body, err := io.ReadAll(resp.Body); err == nil {
		_ = json.Unmarshal(body, &env)
	}
	return &env, resp.StatusCode, nil
}
