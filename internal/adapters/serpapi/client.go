// internal/adapters/serpapi/client.go
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ratescope/internal/adapters/observability"
	"ratescope/internal/domain"
)

// Client wraps the paginated google_hotels search engine. It classifies
// outcomes (empty / fatal / retryable) and leaves retry policy to the caller.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
	now  func() time.Time
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, domain.ErrMissingCredential
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
		now:  time.Now,
	}, nil
}

// Default search parameters sent when no cursor URL encodes the query state.
const (
	engine   = "google_hotels"
	adults   = "2"
	children = "0"
	currency = "USD"
	locale   = "en"
)

// FetchBatch returns one page of results for q. A cursor URL, when present,
// is used verbatim (credential injected) since it already encodes the full
// query state; otherwise the request is rebuilt from q and the cursor token.
func (c *Client) FetchBatch(ctx context.Context, q domain.SearchQuery, cur domain.Cursor) (domain.Batch, error) {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return domain.Batch{}, err
	}

	u, err := c.requestURL(q, cur)
	if err != nil {
		return domain.Batch{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Batch{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ratescope/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("serpapi", "search", 0, time.Since(start))
		if ctx.Err() != nil {
			return domain.Batch{}, ctx.Err()
		}
		return domain.Batch{}, err // transport errors are retryable
	}
	defer resp.Body.Close()
	observability.ObserveExternal("serpapi", "search", resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
		return c.decode(resp.Body)

	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return domain.Batch{}, domain.ErrUnauthorized

	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		io.Copy(io.Discard, resp.Body)
		return domain.Batch{}, fmt.Errorf("serpapi: remote %d", resp.StatusCode)

	default:
		// read a small error body for diagnostics
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.Batch{}, fmt.Errorf("serpapi: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
}

type searchResponse struct {
	Error      string           `json:"error"`
	Properties []map[string]any `json:"properties"`
	Pagination pagination       `json:"pagination"`
	// Some engine versions nest continuation under serpapi_pagination.
	SerpapiPagination pagination `json:"serpapi_pagination"`
}

type pagination struct {
	Next          string `json:"next"`
	NextPageToken string `json:"next_page_token"`
}

func (c *Client) decode(r io.Reader) (domain.Batch, error) {
	var sr searchResponse
	if err := json.NewDecoder(r).Decode(&sr); err != nil {
		return domain.Batch{}, fmt.Errorf("serpapi: decode: %w", err)
	}

	if sr.Error != "" {
		if isNoResults(sr.Error) {
			// valid terminal state, not a failure
			return domain.Batch{Empty: true}, nil
		}
		return domain.Batch{}, fmt.Errorf("serpapi: %s", sr.Error)
	}

	pg := sr.Pagination
	if pg.Next == "" && pg.NextPageToken == "" {
		pg = sr.SerpapiPagination
	}
	return domain.Batch{
		Records: sr.Properties,
		Next:    domain.Cursor{Token: pg.NextPageToken, URL: pg.Next},
		Empty:   len(sr.Properties) == 0 && pg.Next == "" && pg.NextPageToken == "",
	}, nil
}

func isNoResults(msg string) bool {
	low := strings.ToLower(msg)
	return strings.Contains(low, "hasn't returned any results") ||
		strings.Contains(low, "no results")
}

func (c *Client) requestURL(q domain.SearchQuery, cur domain.Cursor) (string, error) {
	if cur.URL != "" {
		u, err := url.Parse(cur.URL)
		if err != nil {
			return "", fmt.Errorf("serpapi: bad cursor url: %w", err)
		}
		vals := u.Query()
		vals.Set("api_key", c.key)
		u.RawQuery = vals.Encode()
		return u.String(), nil
	}

	checkIn := c.now().AddDate(0, 0, 1).Format("2006-01-02")
	checkOut := c.now().AddDate(0, 0, 2).Format("2006-01-02")

	vals := url.Values{}
	vals.Set("engine", engine)
	vals.Set("q", strings.TrimSpace(q.City+" "+q.State)+" hotels")
	vals.Set("check_in_date", checkIn)
	vals.Set("check_out_date", checkOut)
	vals.Set("adults", adults)
	vals.Set("children", children)
	vals.Set("currency", currency)
	vals.Set("hl", locale)
	vals.Set("api_key", c.key)
	if cur.Token != "" {
		vals.Set("next_page_token", cur.Token)
	}
	return c.base + "/search.json?" + vals.Encode(), nil
}
