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
	"github.com/ledgrio/ledgrio-go/transport"
)

// envelope is the response shape of every Ledgrio API endpoint.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Get issues a GET and decodes the response data payload into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the data payload into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the data payload into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH with a JSON body and decodes the data payload into out.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE and decodes the response data payload into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "[Client] encode %s %s body", method, path)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

// newRequest builds a request against the configured base URL.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "[Client] build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", errors.Wrapf(err, "[Client] invalid path %q", path)
	}
	resolved := *c.baseURL
	resolved.Path = joinPath(c.baseURL.Path, ref.Path)
	resolved.RawQuery = ref.RawQuery
	return resolved.String(), nil
}

func joinPath(base, ref string) string {
	switch {
	case ref == "":
		return base
	case base == "":
		return ref
	}
	if base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	if ref[0] != '/' {
		ref = "/" + ref
	}
	return base + ref
}

// send runs the request through the guarded client and decodes the success
// payload. Errors arrive pre-classified as *transport.Error.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return unwrapTransportErr(err)
	}
	defer resp.Body.Close()
	return decodePayload(resp.Body, out)
}

// unwrapTransportErr strips the *url.Error envelope http.Client adds so
// callers match sentinels and *transport.Error directly.
func unwrapTransportErr(err error) error {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return terr
	}
	if apperrors.Is(err, apperrors.ErrClientClosed) {
		return apperrors.ErrClientClosed
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err
	}
	return err
}

// decodePayload unmarshals the envelope's data field into out. Endpoints
// answering a bare object (no envelope) decode directly.
func decodePayload(r io.Reader, out any) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "[Client] read response body")
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		body = env.Data
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "[Client] decode response payload")
	}
	return nil
}
