package engine

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/temoto/robotstxt"

	"github.com/IshaanNene/shopcrawl/internal/urlnorm"
)

const maxRobotsSize = 512 * 1024

// Policy answers whether an agent may fetch a URL.
type Policy interface {
	Allowed(agent, rawURL string) bool
}

// PolicySource hands out the policy governing a URL's domain.
type PolicySource interface {
	Policy(ctx context.Context, rawURL string) Policy
}

type allowAll struct{}

func (allowAll) Allowed(string, string) bool { return true }

// AllowAll permits every URL.
var AllowAll Policy = allowAll{}

type allowAllSource struct{}

func (allowAllSource) Policy(context.Context, string) Policy { return AllowAll }

// IgnoreRobots is a PolicySource that never consults robots.txt.
var IgnoreRobots PolicySource = allowAllSource{}

type robotsPolicy struct {
	data *robotstxt.RobotsData
}

func (p robotsPolicy) Allowed(agent, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	return p.data.TestAgent(u.RequestURI(), agent)
}

// RobotsCache fetches robots.txt once per registrable domain and keeps the
// parsed rules for the life of the process. Any failure to obtain usable
// rules yields AllowAll. Concurrent callers for one domain share a fetch.
type RobotsCache struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger

	mu    sync.Mutex
	cache map[string]*robotsEntry
}

type robotsEntry struct {
	once   sync.Once
	policy Policy
}

// NewRobotsCache creates an empty cache that fetches with client.
func NewRobotsCache(client *http.Client, userAgent string, logger *slog.Logger) *RobotsCache {
	if client == nil {
		client = http.DefaultClient
	}
	return &RobotsCache{
		client:    client,
		userAgent: userAgent,
		logger:    logger.With("component", "robots"),
		cache:     make(map[string]*robotsEntry),
	}
}

// Policy returns the cached policy for rawURL's registrable domain, fetching
// robots.txt from rawURL's host on first use.
func (c *RobotsCache) Policy(ctx context.Context, rawURL string) Policy {
	domain := urlnorm.RegistrableDomain(rawURL)

	c.mu.Lock()
	entry, ok := c.cache[domain]
	if !ok {
		entry = &robotsEntry{}
		c.cache[domain] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.policy = c.fetch(ctx, rawURL)
	})
	return entry.policy
}

// Len returns the number of cached domains.
func (c *RobotsCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}

func (c *RobotsCache) fetch(ctx context.Context, rawURL string) Policy {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return AllowAll
	}
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return AllowAll
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("robots.txt unavailable, allowing all", "url", robotsURL, "error", err)
		return AllowAll
	}
	defer resp.Body.Close()

	// Server errors are treated like a missing file.
	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Debug("robots.txt server error, allowing all", "url", robotsURL, "status", resp.StatusCode)
		return AllowAll
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return AllowAll
	}
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		c.logger.Debug("robots.txt unparseable, allowing all", "url", robotsURL, "error", err)
		return AllowAll
	}
	return robotsPolicy{data: data}
}
