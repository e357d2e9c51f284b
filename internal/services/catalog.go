// Remote movie catalog [Catalog] implementation
//
// Talks to the public phimapi.com JSON API. Every operation fails soft: transport, status and
// decode errors are logged and turned into an empty result.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

const (
	defaultCatalogBaseURL = "https://phimapi.com"
	defaultImageBaseURL   = "https://phimimg.com/"
	defaultPlaceholder    = "https://picsum.photos/300/450"
	defaultPageSize       = 24
)

var errClientStatus = errors.New("catalog rejected request")

// statusFlag accepts the API's boolean and string ("success") status values.
type statusFlag bool

func (s *statusFlag) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*s = statusFlag(t)
	case string:
		*s = statusFlag(t == "success" || t == "true")
	default:
		*s = false
	}
	return nil
}

// listResponse covers both list shapes: top-level items and data.items.
type listResponse struct {
	Status statusFlag           `json:"status"`
	Items  []models.CatalogItem `json:"items"`
	Data   *struct {
		Items []models.CatalogItem `json:"items"`
	} `json:"data"`
}

func (l listResponse) items() []models.CatalogItem {
	if len(l.Items) > 0 {
		return l.Items
	}
	if l.Data != nil {
		return l.Data.Items
	}
	return nil
}

type detailResponse struct {
	Status   statusFlag            `json:"status"`
	Movie    *models.CatalogDetail `json:"movie"`
	Episodes []models.ServerGroup  `json:"episodes"`
}

// CatalogOptions configures a [CatalogService]. Zero values fall back to the public API defaults.
type CatalogOptions struct {
	BaseURL           string
	ImageBaseURL      string
	Placeholder       string
	PageSize          int
	Client            *http.Client
	Logger            *log.Logger
	RequestsPerSecond float64
	FailureThreshold  uint32
	OpenTimeout       time.Duration
}

// CatalogOptionsFromConfig maps the [catalog] config section to [CatalogOptions].
func CatalogOptionsFromConfig(cfg shared.CatalogConfig, logger *log.Logger) CatalogOptions {
	return CatalogOptions{
		BaseURL:           cfg.BaseURL,
		ImageBaseURL:      cfg.ImageBaseURL,
		Placeholder:       cfg.PlaceholderImage,
		PageSize:          cfg.PageSize,
		Client:            &http.Client{Timeout: cfg.Timeout()},
		Logger:            logger,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
}

// CatalogService implements [Catalog] against the remote movie API.
type CatalogService struct {
	baseURL      string
	imageBaseURL string
	placeholder  string
	pageSize     int
	httpClient   *http.Client
	logger       *log.Logger
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[[]byte]
}

// NewCatalogService creates a catalog client.
func NewCatalogService(opts CatalogOptions) *CatalogService {
	c := &CatalogService{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		imageBaseURL: opts.ImageBaseURL,
		placeholder:  opts.Placeholder,
		pageSize:     opts.PageSize,
		httpClient:   opts.Client,
		logger:       opts.Logger,
	}

	if c.baseURL == "" {
		c.baseURL = defaultCatalogBaseURL
	}
	if c.imageBaseURL == "" {
		c.imageBaseURL = defaultImageBaseURL
	}
	if c.placeholder == "" {
		c.placeholder = defaultPlaceholder
	}
	if c.pageSize <= 0 {
		c.pageSize = defaultPageSize
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	c.logger = shared.WithLogger(c.logger, "component", "catalog")

	c.limiter = rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(1, int(opts.RequestsPerSecond)))
	}

	threshold := opts.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := opts.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "catalog",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errClientStatus) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		},
	})

	return c
}

// Name returns the service name.
func (c *CatalogService) Name() string { return "phimapi" }

// BreakerState reports the circuit breaker state ("closed", "open", "half-open").
func (c *CatalogService) BreakerState() string { return c.breaker.State().String() }

// fetch performs a throttled GET through the circuit breaker and returns the body.
func (c *CatalogService) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch {
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, fmt.Errorf("%w: status %d", errClientStatus, resp.StatusCode)
		}
		return body, nil
	})
}

func (c *CatalogService) fetchList(ctx context.Context, op, endpoint string) []models.CatalogItem {
	body, err := c.fetch(ctx, endpoint)
	if err != nil {
		c.logger.Error("catalog request failed", "op", op, "endpoint", endpoint, "error", err)
		return []models.CatalogItem{}
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to decode catalog list", "op", op, "error", err)
		return []models.CatalogItem{}
	}

	items := resp.items()
	if items == nil {
		items = []models.CatalogItem{}
	}
	return items
}

// NewReleases fetches a page of the newest releases.
//
// Calls GET /danh-sach/phim-moi-cap-nhat?page=N.
func (c *CatalogService) NewReleases(ctx context.Context, page int) []models.CatalogItem {
	return c.fetchList(ctx, "new_releases", "/danh-sach/phim-moi-cap-nhat?page="+strconv.Itoa(max(1, page)))
}

// ByCategory fetches a page of titles of the given type. Unknown categories return no items
// without a request.
//
// Calls GET /v1/api/danh-sach/{type}?page=N&limit=L.
func (c *CatalogService) ByCategory(ctx context.Context, category models.Category, page int) []models.CatalogItem {
	if !category.Valid() {
		c.logger.Warn("unknown category", "category", string(category))
		return []models.CatalogItem{}
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(max(1, page)))
	q.Set("limit", strconv.Itoa(c.pageSize))
	return c.fetchList(ctx, "by_category", "/v1/api/danh-sach/"+string(category)+"?"+q.Encode())
}

// Detail fetches a title with its episode lists. It reports false when the catalog has no such
// title or the request failed.
//
// Calls GET /phim/{slug}.
func (c *CatalogService) Detail(ctx context.Context, slug string) (*models.CatalogDetail, bool) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, false
	}

	body, err := c.fetch(ctx, "/phim/"+url.PathEscape(slug))
	if err != nil {
		c.logger.Error("catalog request failed", "op", "detail", "slug", slug, "error", err)
		return nil, false
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to decode catalog detail", "slug", slug, "error", err)
		return nil, false
	}
	if !resp.Status || resp.Movie == nil {
		c.logger.Debug("title not found", "slug", slug)
		return nil, false
	}

	detail := resp.Movie
	detail.Episodes = resp.Episodes
	if detail.Episodes == nil {
		detail.Episodes = []models.ServerGroup{}
	}
	return detail, true
}

// Search finds titles matching keyword, returning at most limit items. A blank keyword returns no
// items without a request.
//
// Calls GET /v1/api/tim-kiem?keyword=K&limit=N.
func (c *CatalogService) Search(ctx context.Context, keyword string, limit int) []models.CatalogItem {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []models.CatalogItem{}
	}
	if limit <= 0 {
		limit = 10
	}

	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("limit", strconv.Itoa(limit))

	items := c.fetchList(ctx, "search", "/v1/api/tim-kiem?"+q.Encode())
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// ImageURL resolves a poster or thumbnail path. Empty paths get the placeholder image and
// absolute URLs are returned unchanged.
func (c *CatalogService) ImageURL(path string) string {
	switch {
	case path == "":
		return c.placeholder
	case strings.HasPrefix(path, "http"):
		return path
	default:
		return c.imageBaseURL + strings.TrimLeft(path, "/")
	}
}
