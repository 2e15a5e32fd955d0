package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// StarsClient calls a hosted text-classification model that predicts a
// 1-5 star rating, e.g. a Hugging Face inference endpoint.
type StarsClient struct {
	httpClient       *http.Client
	endpoint         string
	model            string
	token            string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	limiter          *rate.Limiter
}

// NewStarsClient validates cfg and returns a client. It returns an
// *UnavailableError when no endpoint or model is configured, or when a hosted
// endpoint has no API token. No request is made.
func NewStarsClient(cfg Config) (*StarsClient, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(cfg.StarsEndpoint), "/")
	if endpoint == "" {
		return nil, &UnavailableError{Backend: BackendStars, Reason: "no endpoint configured (set EDALOOM_STARS_ENDPOINT)"}
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &UnavailableError{Backend: BackendStars, Reason: fmt.Sprintf("invalid endpoint %q", endpoint), Err: err}
	}
	if strings.TrimSpace(cfg.StarsModel) == "" {
		return nil, &UnavailableError{Backend: BackendStars, Reason: "no model configured (set EDALOOM_STARS_MODEL)"}
	}
	if cfg.StarsAPIToken == "" && isHostedInference(u.Host) {
		return nil, &UnavailableError{Backend: BackendStars, Reason: "hosted inference needs an API token (set EDALOOM_STARS_API_TOKEN)"}
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 3
	}
	c := &StarsClient{
		httpClient:       &http.Client{Timeout: cfg.HTTPTimeout},
		endpoint:         endpoint,
		model:            strings.TrimSpace(cfg.StarsModel),
		token:            cfg.StarsAPIToken,
		retryMaxAttempts: cfg.RetryMax,
		retryBaseDelay:   cfg.BaseDelay,
		retryMaxDelay:    cfg.MaxDelay,
	}
	if cfg.RateLimitRPS > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}
	return c, nil
}

func isHostedInference(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), "huggingface.co")
}

func (c *StarsClient) Name() string { return BackendStars }

// StarsLabel maps a rating to a label: 4-5 positive, 3 neutral, 1-2 negative.
func StarsLabel(stars int) Label {
	switch {
	case stars >= 4:
		return Positive
	case stars == 3:
		return Neutral
	default:
		return Negative
	}
}

type starsPrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Analyze classifies text. Score is the probability of the top label. A
// missing model, rejected credentials or an unreachable endpoint yield an
// error matching ErrBackendUnavailable.
func (c *StarsClient) Analyze(ctx context.Context, text string) (Result, error) {
	preds, err := c.predict(ctx, text)
	if err != nil {
		var nf *ModelNotFoundError
		var ae *AuthError
		var ue *UnreachableError
		switch {
		case errors.As(err, &nf):
			return Result{}, &UnavailableError{Backend: BackendStars, Reason: fmt.Sprintf("model %q not found", c.model), Err: err}
		case errors.As(err, &ae):
			return Result{}, &UnavailableError{Backend: BackendStars, Reason: "credentials rejected", Err: err}
		case errors.As(err, &ue):
			return Result{}, &UnavailableError{Backend: BackendStars, Reason: "endpoint unreachable", Err: err}
		}
		return Result{}, err
	}
	top := preds[0]
	for _, p := range preds[1:] {
		if p.Score > top.Score {
			top = p
		}
	}
	stars, err := parseStars(top.Label)
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Score: top.Score, Label: StarsLabel(stars), Stars: stars}, nil
}

// parseStars reads the rating from labels such as "4 stars" or "1 star".
func parseStars(label string) (int, error) {
	f := strings.Fields(label)
	if len(f) > 0 {
		if n, err := strconv.Atoi(f[0]); err == nil && n >= 1 && n <= 5 {
			return n, nil
		}
	}
	return 0, fmt.Errorf("unexpected label %q: want \"<1-5> stars\"", label)
}

func (c *StarsClient) predict(ctx context.Context, text string) ([]starsPrediction, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.endpoint + "/models/" + c.model
	maxAttempts := c.retryMaxAttempts
	backoff := c.retryBaseDelay
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = &UnreachableError{Host: c.endpoint, Err: err}
			if isRetryableNetErr(err) && attempt < maxAttempts {
				backoff = c.sleep(ctx, backoff)
				continue
			}
			return nil, lastErr
		}
		preds, retryAfter, err := c.readResponse(resp)
		if err == nil {
			return preds, nil
		}
		lastErr = err
		var se *ServerError
		var rl *RateLimitError
		if !(errors.As(err, &se) || errors.As(err, &rl)) || attempt == maxAttempts {
			break
		}
		slog.Debug("stars request failed, retrying", "attempt", attempt, "err", err)
		if retryAfter > 0 {
			backoff = retryAfter
		}
		backoff = c.sleep(ctx, backoff)
	}
	return nil, lastErr
}

func (c *StarsClient) readResponse(resp *http.Response) ([]starsPrediction, time.Duration, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var raw map[string]any
		if json.Unmarshal(body, &raw) == nil {
			if msg, ok := raw["error"].(string); ok {
				apiErr.Message = msg
			}
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, 0, &ModelNotFoundError{APIError: apiErr}
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, 0, &AuthError{APIError: apiErr}
		case resp.StatusCode == http.StatusTooManyRequests:
			var ra time.Duration
			if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s > 0 {
				ra = time.Duration(s) * time.Second
			}
			return nil, ra, &RateLimitError{APIError: apiErr, RetryAfter: ra}
		case resp.StatusCode >= 500:
			return nil, 0, &ServerError{APIError: apiErr}
		}
		return nil, 0, apiErr
	}
	preds, err := decodePredictions(body)
	return preds, 0, err
}

// decodePredictions accepts [[{label,score}...]] and [{label,score}...].
func decodePredictions(body []byte) ([]starsPrediction, error) {
	var nested [][]starsPrediction
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0], nil
	}
	var flat []starsPrediction
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}
	return nil, fmt.Errorf("decode response: no predictions in %q", truncate(string(body), 120))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// sleep waits a jittered backoff and returns the next, capped at retryMaxDelay.
func (c *StarsClient) sleep(ctx context.Context, d time.Duration) time.Duration {
	t := time.NewTimer(withJitter(d))
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
	next := d * 2
	if c.retryMaxDelay > 0 && next > c.retryMaxDelay {
		next = c.retryMaxDelay
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	// jitter factor in [0.8, 1.2)
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
