package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"infiniteLeafWeb/internal/shared/auth"
)

const maxBodyBytes = 4 << 20

// Proxy forwards authenticated JSON calls to the upstream API and folds every
// outcome into a Result.
type Proxy struct {
	rest    *RESTClient
	metrics *Metrics
}

func NewProxy(rest *RESTClient, metrics *Metrics) *Proxy {
	if rest == nil {
		rest = NewRESTClient("", 0, nil)
	}
	return &Proxy{rest: rest, metrics: metrics}
}

func (p *Proxy) Get(ctx context.Context, token, path string) Result {
	return p.send(ctx, http.MethodGet, token, path, nil)
}

func (p *Proxy) Post(ctx context.Context, token, path string, body any) Result {
	return p.send(ctx, http.MethodPost, token, path, body)
}

func (p *Proxy) Put(ctx context.Context, token, path string, body any) Result {
	return p.send(ctx, http.MethodPut, token, path, body)
}

func (p *Proxy) Delete(ctx context.Context, token, path string) Result {
	return p.send(ctx, http.MethodDelete, token, path, nil)
}

func (p *Proxy) send(ctx context.Context, method, token, path string, body any) (result Result) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("upstream request panic", slog.String("method", method), slog.String("path", path), slog.Any("panic", r))
			result = failure(0, unexpectedMessage)
		}
		p.metrics.observe(method, path, result.Status, started)
	}()

	ctx, cancel := context.WithTimeout(ctx, p.rest.timeout())
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			slog.Error("upstream encode body failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
			return failure(0, err.Error())
		}
		reader = bytes.NewReader(payload)
	}

	req, err := p.rest.NewRequest(ctx, method, path, reader)
	if err != nil {
		slog.Error("upstream build request failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return failure(0, err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer := auth.BearerValue(token); bearer != "" {
		req.Header.Set("Authorization", bearer)
	}

	slog.Debug("upstream request", slog.String("method", method), slog.String("url", req.URL.String()), slog.Bool("authenticated", token != ""))

	resp, err := p.rest.Do(req)
	if err != nil {
		slog.Warn("upstream transport error", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return failure(0, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		slog.Warn("upstream read body failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return failure(resp.StatusCode, err.Error())
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := describeFailure(resp.StatusCode, resp.Status, raw)
		slog.Warn("upstream non-success response", slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode), slog.String("error", msg))
		return failure(resp.StatusCode, msg)
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && !json.Valid(trimmed) {
		slog.Warn("upstream returned invalid json", slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))
		return failure(resp.StatusCode, "Invalid JSON response from server")
	}

	return Result{Success: true, Status: resp.StatusCode, Data: json.RawMessage(trimmed)}
}
