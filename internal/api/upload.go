package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/lehigh-university-libraries/pustak/internal/apperr"
)

// UploadKind tells the file service which bucket to use
type UploadKind string

const (
	UploadImage    UploadKind = "image"
	UploadDocument UploadKind = "document"
)

type UploadResult struct {
	URL string `json:"url"`
}

// Upload streams a file to the upload endpoint and returns the stored file's URL.
func (c *Client) Upload(ctx context.Context, kind UploadKind, filename string, r io.Reader) (UploadResult, error) {
	op := "POST " + c.UploadPath

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			if err := mw.WriteField("kind", string(kind)); err != nil {
				return err
			}
			part, err := mw.CreateFormFile("file", filepath.Base(filename))
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, r); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint(c.UploadPath, nil), pr)
	if err != nil {
		pr.CloseWithError(err)
		return UploadResult{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var result UploadResult
	if err := c.send(req, op, &result); err != nil {
		pr.CloseWithError(err)
		return UploadResult{}, err
	}
	if result.URL == "" {
		return UploadResult{}, &apperr.FetchError{Op: op, Message: "upload response did not include a url"}
	}
	return result, nil
}
