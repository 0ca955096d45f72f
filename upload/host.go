package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"merchant-kyc-portal/config"
)

const maxResponseBytes = 1 << 20

// urlPaths are the response fields a file host may return the stored URL in.
var urlPaths = []string{"url", "data.url", "secure_url", "data.link"}

// HostUploader posts files as multipart forms to an external file host.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff; validation failures and 4xx responses are not.
type HostUploader struct {
	endpoint   string
	client     *http.Client
	maxBytes   int64
	maxRetries uint
	backoff    time.Duration
	log        *zap.Logger
}

func NewHostUploader(cfg config.UploadConfig, log *zap.Logger) *HostUploader {
	return &HostUploader{
		endpoint:   cfg.Endpoint,
		client:     &http.Client{Timeout: cfg.Timeout},
		maxBytes:   cfg.MaxBytes,
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		log:        log,
	}
}

func (u *HostUploader) Upload(ctx context.Context, f File) (string, error) {
	if err := Validate(&f, u.maxBytes); err != nil {
		return "", err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.backoff
	b.Multiplier = 2
	b.RandomizationFactor = 0

	attempt := 0
	operation := func() (string, error) {
		attempt++
		url, err := u.post(ctx, f)
		if err == nil {
			return url, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return "", backoff.Permanent(err)
		}
		u.log.Warn("Upload attempt failed",
			zap.String("file", f.Name),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		return "", err
	}

	url, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(u.maxRetries+1),
	)
	if err != nil {
		return "", err
	}
	u.log.Info("Uploaded file", zap.String("file", f.Name), zap.Int("attempts", attempt))
	return url, nil
}

func (u *HostUploader) post(ctx context.Context, f File) (string, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, f.Name))
	header.Set("Content-Type", f.ContentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	switch {
	case resp.StatusCode >= 500:
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode, hostMessage(raw))
	}

	for _, p := range urlPaths {
		if v := gjson.GetBytes(raw, p); v.Exists() && v.String() != "" {
			return v.String(), nil
		}
	}
	return "", fmt.Errorf("%w: response carries no file url", ErrRejected)
}

func hostMessage(raw []byte) string {
	for _, p := range []string{"message", "error.message", "error"} {
		if v := gjson.GetBytes(raw, p); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	return "no message"
}
