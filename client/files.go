package client

import (
	"bytes"
	"context"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// FormFile is a file part of a multipart request.
type FormFile struct {
	Field  string
	Name   string
	Reader io.Reader
}

// ProgressFunc reports multipart upload progress as bytes sent out of total.
type ProgressFunc func(sent, total int64)

// UploadFile posts a single file with optional extra fields, reporting
// progress as the body is consumed. The response data payload decodes into out.
func (c *Client) UploadFile(ctx context.Context, path string, file FormFile, fields url.Values, onProgress ProgressFunc, out any) error {
	return c.doMultipart(ctx, http.MethodPost, path, fields, []FormFile{file}, onProgress, out)
}

// PostFormData posts fields and files as multipart form data.
func (c *Client) PostFormData(ctx context.Context, path string, fields url.Values, files []FormFile, out any) error {
	return c.doMultipart(ctx, http.MethodPost, path, fields, files, nil, out)
}

// PutFormData puts fields and files as multipart form data.
func (c *Client) PutFormData(ctx context.Context, path string, fields url.Values, files []FormFile, out any) error {
	return c.doMultipart(ctx, http.MethodPut, path, fields, files, nil, out)
}

// DownloadFile streams the response body of path into w and returns the
// server-suggested filename, when one is present in Content-Disposition.
func (c *Client) DownloadFile(ctx context.Context, path string, w io.Writer) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", unwrapTransportErr(err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", errors.Wrap(err, "[Client.DownloadFile] stream response")
	}
	return attachmentFilename(resp.Header.Get("Content-Disposition")), nil
}

func attachmentFilename(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// doMultipart buffers the whole multipart body so the guard can replay it
// after a token refresh.
func (c *Client) doMultipart(ctx context.Context, method, path string, fields url.Values, files []FormFile, onProgress ProgressFunc, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for field, values := range fields {
		for _, value := range values {
			if err := writer.WriteField(field, value); err != nil {
				return errors.Wrap(err, "[Client] write form field")
			}
		}
	}
	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return errors.Wrap(err, "[Client] create form file")
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return errors.Wrapf(err, "[Client] read form file %q", file.Name)
		}
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "[Client] finalize multipart body")
	}

	req, err := c.newRequest(ctx, method, path, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	if onProgress != nil {
		total := int64(buf.Len())
		// Keep GetBody intact so a guard retry rewinds cleanly; a retried
		// upload simply reports progress from zero again.
		req.Body = io.NopCloser(&progressReader{
			reader:     bytes.NewReader(buf.Bytes()),
			total:      total,
			onProgress: onProgress,
		})
	}
	return c.send(req, out)
}

type progressReader struct {
	reader     io.Reader
	sent       int64
	total      int64
	onProgress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.sent += int64(n)
		pr.onProgress(pr.sent, pr.total)
	}
	return n, err
}
