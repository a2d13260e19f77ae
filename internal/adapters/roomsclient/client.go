// internal/adapters/roomsclient/client.go
package roomsclient

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_rooms/internal/adapters/observability"
	"hotel_rooms/internal/app"
)

// Client talks to the rooms HTTP API.
type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) *Client {
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// Query mirrors the search form. Empty fields are not sent.
type Query struct {
	Type   string
	Action string
	Number string
	From   string // YYYY-MM-DD
	To     string
}

func (q Query) values() url.Values {
	v := url.Values{}
	for k, s := range map[string]string{"type": q.Type, "action": q.Action, "number": q.Number, "from": q.From, "to": q.To} {
		if s != "" {
			v.Set(k, s)
		}
	}
	return v
}

type BookingResult struct {
	Room      app.RoomView    `json:"room"`
	Booking   app.BookingView `json:"booking"`
	Persisted bool            `json:"persisted"`
}

type RoomResult struct {
	Room      app.RoomView `json:"room"`
	Persisted bool         `json:"persisted"`
}

// ---- Public API ----

func (c *Client) Search(ctx context.Context, q Query) (app.SearchView, error) {
	var out app.SearchView
	u := c.base + "/v1/rooms"
	if enc := q.values().Encode(); enc != "" {
		u += "?" + enc
	}
	err := c.do(ctx, http.MethodGet, u, "search", nil, &out)
	return out, err
}

func (c *Client) Room(ctx context.Context, number int) (app.RoomView, error) {
	var out app.RoomView
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/v1/rooms/%d", c.base, number), "room", nil, &out)
	return out, err
}

func (c *Client) Book(ctx context.Context, number int, start, end string) (BookingResult, error) {
	var out BookingResult
	body := map[string]string{"startDate": start, "endDate": end}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("%s/v1/rooms/%d/bookings", c.base, number), "book", body, &out)
	return out, err
}

func (c *Client) Cancel(ctx context.Context, number int, start, end string) (RoomResult, error) {
	var out RoomResult
	u := fmt.Sprintf("%s/v1/rooms/%d/bookings?%s", c.base, number, url.Values{"from": {start}, "to": {end}}.Encode())
	err := c.do(ctx, http.MethodDelete, u, "cancel", nil, &out)
	return out, err
}

// ---- Internals ----

var (
	ErrNotFound   = errors.New("rooms api: not found")
	ErrBadRequest = errors.New("rooms api: bad request")
	ErrConflict   = errors.New("rooms api: conflict")
)

// ProblemError carries a problem+json response. Detail is the user-facing text.
type ProblemError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *ProblemError) Error() string {
	return fmt.Sprintf("rooms api %d: %s", e.Status, e.Detail)
}

func (e *ProblemError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusConflict:
		return ErrConflict
	}
	return nil
}

// do sends one request with client-side rate limiting and retries.
// Writes are only retried on 429, which the server returns before doing any work.
func (c *Client) do(ctx context.Context, method, u, endpoint string, in, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		payload = b
	}
	idempotent := method == http.MethodGet

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotel-rooms/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("rooms", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if idempotent && i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("rooms", endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode == http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case resp.StatusCode == http.StatusTooManyRequests,
			idempotent && (resp.StatusCode == http.StatusInternalServerError ||
				resp.StatusCode == http.StatusBadGateway ||
				resp.StatusCode == http.StatusServiceUnavailable ||
				resp.StatusCode == http.StatusGatewayTimeout):
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			p := &ProblemError{Status: resp.StatusCode}
			if json.Unmarshal(b, p) != nil || p.Detail == "" {
				p.Detail = strings.TrimSpace(string(b))
			}
			p.Status = resp.StatusCode
			return p
		}
	}

	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
