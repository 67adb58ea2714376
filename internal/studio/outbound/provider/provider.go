// Package provider talks to the upstream text-to-image service. The service
// renders on a GET request whose path carries the prompt, so the client here
// is a thin URL builder with retry around transient upstream failures.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/visiondraft/visiondraft/internal/pkg/config"
	"github.com/visiondraft/visiondraft/internal/pkg/goerror"
	"github.com/visiondraft/visiondraft/internal/pkg/instrument"
	"github.com/visiondraft/visiondraft/internal/studio/entity"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxImageBytes caps a single rendered image. Anything larger is treated as a
// broken upstream response.
const maxImageBytes = 32 << 20

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries uint64
	ins        instrument.Instrumentation
}

func NewClient(cfg config.Config, ins instrument.Instrumentation) *Client {
	timeout := cfg.GetSecond("modules.studio.provider_timeout_seconds")
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.GetString("modules.studio.provider_base_url"),
		apiKey:     cfg.GetString("modules.studio.provider_api_key"),
		maxRetries: uint64(cfg.GetInt("modules.studio.provider_max_retries")),
		ins:        ins,
	}
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("studio.outbound.provider").Start(ctx, name)
}

func (c *Client) imageURL(spec entity.ImageSpec) string {
	q := url.Values{}
	q.Set("model", spec.Model)
	q.Set("width", strconv.FormatInt(int64(spec.Width), 10))
	q.Set("height", strconv.FormatInt(int64(spec.Height), 10))
	q.Set("seed", strconv.FormatInt(spec.Seed, 10))
	q.Set("nologo", "true")
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	return fmt.Sprintf("%s/image/%s?%s", c.baseURL, url.PathEscape(spec.Prompt), q.Encode())
}

// GenerateImage renders the spec. 5xx responses and transport errors are
// retried with fibonacci backoff; 4xx responses fail immediately since
// retrying the same prompt cannot help.
func (c *Client) GenerateImage(ctx context.Context, spec entity.ImageSpec) (_ *entity.GeneratedImage, err error) {
	ctx, span := c.startSpan(ctx, "GenerateImage")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	target := c.imageURL(spec)

	var out *entity.GeneratedImage

	b := retry.NewFibonacci(500 * time.Millisecond)
	b = retry.WithMaxRetries(c.maxRetries, b)
	b = retry.WithCappedDuration(10*time.Second, b)

	err = retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			io.Copy(io.Discard, resp.Body)
			return retry.RetryableError(fmt.Errorf("provider responded %s", resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("provider responded %s", resp.Status)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
		if err != nil {
			return retry.RetryableError(err)
		}
		if len(data) > maxImageBytes {
			return fmt.Errorf("provider image exceeds %d bytes", maxImageBytes)
		}

		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "image/png"
		}

		out = &entity.GeneratedImage{Data: data, ContentType: contentType}
		return nil
	})
	if err != nil {
		return nil, goerror.NewServer(err)
	}

	return out, nil
}
