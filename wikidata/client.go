// Package wikidata looks up places on Wikidata: entity search by name,
// coordinates of an entity, and suggesters that pick one search hit for an
// inventory name either automatically or by asking the operator.
package wikidata

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/andreiashu/gazetteer"
	json "github.com/goccy/go-json"
)

const (
	defaultBaseURL   = "https://www.wikidata.org/w/api.php"
	defaultLanguage  = "en"
	defaultLimit     = 7
	defaultUserAgent = "inv2geo/1.0 (https://github.com/andreiashu/gazetteer)"
)

// Client talks to the MediaWiki action API of Wikidata.
type Client struct {
	baseURL    string
	language   string
	limit      int
	userAgent  string
	httpClient *http.Client
	retryDelay time.Duration
	log        *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL points the client at another api.php (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithLanguage sets the search and label language.
func WithLanguage(lang string) ClientOption {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header, which Wikimedia requires.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLimit caps the number of search hits.
func WithLimit(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewClient creates a Client for the public Wikidata endpoint.
func NewClient(logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		language:   defaultLanguage,
		limit:      defaultLimit,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retryDelay: 500 * time.Millisecond,
		log:        logger.With("adapter", "wikidata"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Search []searchHit `json:"search"`
	Error  *apiError   `json:"error"`
}

type searchHit struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	PageID      int64    `json:"pageid"`
	Repository  string   `json:"repository"`
	URL         string   `json:"url"`
	ConceptURI  string   `json:"concepturi"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases"`
	Match       struct {
		Type     string `json:"type"`
		Language string `json:"language"`
		Text     string `json:"text"`
	} `json:"match"`
}

type apiError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (h searchHit) entity() Entity {
	e := Entity{
		ID:          h.ID,
		Label:       h.Label,
		Description: h.Description,
		ConceptURI:  h.ConceptURI,
		URL:         h.URL,
		Title:       h.Title,
		PageID:      h.PageID,
		Repository:  h.Repository,
		Aliases:     h.Aliases,
	}
	if h.Match.Type != "" {
		e.Match = h.Match.Type + ":" + h.Match.Text
	}
	return e
}

// Search returns the entities matching name, best first. No hits is an empty
// slice and a nil error.
func (c *Client) Search(ctx context.Context, name string) ([]Entity, error) {
	q := url.Values{}
	q.Set("action", "wbsearchentities")
	q.Set("format", "json")
	q.Set("type", "item")
	q.Set("search", name)
	q.Set("language", c.language)
	q.Set("uselang", c.language)
	q.Set("limit", fmt.Sprint(c.limit))

	c.log.DebugContext(ctx, "wikidata search", slog.String("name", name))

	var body searchResponse
	found, err := c.get(ctx, q, name, &body)
	if err != nil || !found {
		return nil, err
	}
	if body.Error != nil {
		return nil, fmt.Errorf("wikidata: %s: %s", body.Error.Code, body.Error.Info)
	}

	out := make([]Entity, 0, len(body.Search))
	for _, h := range body.Search {
		out = append(out, h.entity())
	}
	c.log.DebugContext(ctx, "wikidata search done",
		slog.String("name", name),
		slog.Int("hits", len(out)))
	return out, nil
}

type claimsResponse struct {
	Claims map[string][]struct {
		MainSnak struct {
			DataValue struct {
				Value struct {
					Latitude  float64 `json:"latitude"`
					Longitude float64 `json:"longitude"`
				} `json:"value"`
			} `json:"datavalue"`
		} `json:"mainsnak"`
	} `json:"claims"`
	Error *apiError `json:"error"`
}

// coordinateLocation is the "coordinate location" property.
const coordinateLocation = "P625"

// Coordinates returns the coordinate location of entity id.
// Returns nil, nil when the entity has none.
func (c *Client) Coordinates(ctx context.Context, id string) (*gazetteer.Coordinates, error) {
	q := url.Values{}
	q.Set("action", "wbgetclaims")
	q.Set("format", "json")
	q.Set("entity", id)
	q.Set("property", coordinateLocation)

	var body claimsResponse
	found, err := c.get(ctx, q, id, &body)
	if err != nil || !found {
		return nil, err
	}
	if body.Error != nil {
		if body.Error.Code == "no-such-entity" {
			return nil, nil
		}
		return nil, fmt.Errorf("wikidata: %s: %s", body.Error.Code, body.Error.Info)
	}
	claims := body.Claims[coordinateLocation]
	if len(claims) == 0 {
		return nil, nil
	}
	v := claims[0].MainSnak.DataValue.Value
	coords, err := gazetteer.NewCoordinates(v.Latitude, v.Longitude)
	if err != nil {
		return nil, fmt.Errorf("wikidata: %s: %w", id, err)
	}
	return &coords, nil
}

// get runs one API call and decodes the JSON answer into out. It reports
// false when the endpoint answered 404.
func (c *Client) get(ctx context.Context, q url.Values, subject string, out any) (bool, error) {
	reqURL := c.baseURL + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return false, fmt.Errorf("wikidata: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doWithRetry(ctx, req, subject)
	if err != nil {
		c.log.ErrorContext(ctx, "wikidata request failed", slog.String("subject", subject), slog.String("error", err.Error()))
		return false, fmt.Errorf("wikidata: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("wikidata: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("wikidata: read body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("wikidata: decode json: %w", err)
	}
	return true, nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, subject string) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "wikidata retry", slog.String("subject", subject), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.retryDelay):
	}
	return c.httpClient.Do(req)
}
