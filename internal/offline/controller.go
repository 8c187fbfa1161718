// Package offline is the offline-first cache controller: it decides between
// network and cache for every app request, keeps the shell precached and
// holds background sync tags until connectivity allows them to fire.
package offline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/logger"
	"golang.org/x/sync/singleflight"
)

// ErrBypass is returned by Handle for requests the controller does not
// serve, such as non-GET methods. Callers forward them untouched.
var ErrBypass = errors.New("request bypasses the offline controller")

// ErrStopped is returned when the controller loop is no longer running.
var ErrStopped = errors.New("offline controller stopped")

// Broadcaster delivers messages to connected app instances.
type Broadcaster interface {
	// Broadcast sends msg to every controlled instance and returns how many
	// received it.
	Broadcast(msg Message) int
	// Claim takes control of every connected instance.
	Claim() int
}

// Config holds the controller's static settings.
type Config struct {
	// Origin is the app shell's upstream, e.g. http://localhost:5173.
	Origin *url.URL
	// CachePrefix and Version compose the cache names.
	CachePrefix string
	Version     string
	// ShellAssets are the paths precached on install.
	ShellAssets []string
	// ExtraHosts are cross-origin hosts still routed through the caches.
	ExtraHosts []string
	// SkipWaiting activates right after install instead of waiting for a
	// SKIP_WAITING message.
	SkipWaiting bool
	// InstallRetry is the initial delay before a failed install is retried.
	InstallRetry    time.Duration
	InstallRetryMax time.Duration
}

// CacheNames are the caches the controller owns.
type CacheNames struct {
	Versioned string
	Static    string
	Dynamic   string
}

// Names derives the owned cache names from prefix and version.
func (c Config) Names() CacheNames {
	return CacheNames{
		Versioned: fmt.Sprintf("%s-%s", c.CachePrefix, c.Version),
		Static:    fmt.Sprintf("%s-static-%s", c.CachePrefix, c.Version),
		Dynamic:   fmt.Sprintf("%s-dynamic-%s", c.CachePrefix, c.Version),
	}
}

func (n CacheNames) owns(name string) bool {
	return name == n.Versioned || name == n.Static || name == n.Dynamic
}

// Controller is an actor: lifecycle and pending sync tags are owned by the
// goroutine running Run. Handle runs on the caller's goroutine and only
// touches the goroutine-safe cache storage and the published lifecycle state.
type Controller struct {
	cfg     Config
	names   CacheNames
	caches  CacheStorage
	fetcher Fetcher
	bus     Broadcaster
	log     logger.Logger
	now     func() time.Time

	state   atomic.Value // State
	inbox   chan command
	done    chan struct{}
	running atomic.Bool

	refresh singleflight.Group
	// refreshCtx bounds background refreshes to the controller lifetime.
	refreshCtx atomic.Pointer[context.Context]
}

// New builds a controller. Call Run to start it.
func New(cfg Config, caches CacheStorage, fetcher Fetcher, bus Broadcaster, log logger.Logger) *Controller {
	if cfg.InstallRetry <= 0 {
		cfg.InstallRetry = 2 * time.Second
	}
	if cfg.InstallRetryMax < cfg.InstallRetry {
		cfg.InstallRetryMax = time.Minute
	}

	c := &Controller{
		cfg:     cfg,
		names:   cfg.Names(),
		caches:  caches,
		fetcher: fetcher,
		bus:     bus,
		log:     log,
		now:     time.Now,
		inbox:   make(chan command, 64),
		done:    make(chan struct{}),
	}
	c.state.Store(StateParsed)
	bg := context.Background()
	c.refreshCtx.Store(&bg)
	return c
}

// Names returns the caches owned by this controller.
func (c *Controller) Names() CacheNames { return c.names }

// State returns the published lifecycle state.
func (c *Controller) State() State {
	return c.state.Load().(State)
}

func (c *Controller) setState(s State) {
	prev := c.State()
	c.state.Store(s)
	if prev != s {
		c.log.Info("offline controller state changed",
			logger.String("from", string(prev)),
			logger.String("to", string(s)))
	}
}

// Decide returns the strategy used for r.
func (c *Controller) Decide(r *http.Request) Strategy {
	if r.Method != http.MethodGet {
		return Bypass
	}
	if target := c.resolve(r); !c.sameOrigin(target) && !c.extraHost(target.Hostname()) {
		return Bypass
	}
	if c.State() != StateActivated {
		return Bypass
	}
	return StrategyFor(Classify(r))
}

// Handle answers r through the cache strategy chosen for it.
// Non-GET requests return ErrBypass. Other bypassed requests are fetched
// from the network without touching the caches.
func (c *Controller) Handle(ctx context.Context, r *http.Request) (*Response, error) {
	strategy := c.Decide(r)
	target := c.resolve(r).String()

	switch strategy {
	case CacheFirst:
		return c.cacheFirst(ctx, target, r.Header)
	case NetworkFirst:
		return c.networkFirst(ctx, target, r.Header, Classify(r) == DestDocument)
	default:
		if r.Method != http.MethodGet {
			return nil, ErrBypass
		}
		resp, err := c.fetcher.Fetch(ctx, target, r.Header)
		if err != nil {
			return nil, err
		}
		resp.Source = SourceBypass
		return resp, nil
	}
}

// resolve maps r onto the upstream URL. Absolute request targets are kept.
func (c *Controller) resolve(r *http.Request) *url.URL {
	if r.URL.IsAbs() && r.URL.Host != "" {
		return r.URL
	}
	return c.cfg.Origin.ResolveReference(&url.URL{Path: r.URL.Path, RawQuery: r.URL.RawQuery})
}

func (c *Controller) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.cfg.Origin.Scheme) && strings.EqualFold(u.Host, c.cfg.Origin.Host)
}

func (c *Controller) extraHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range c.cfg.ExtraHosts {
		h = strings.ToLower(h)
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

func (c *Controller) shellKey() string {
	return c.cfg.Origin.ResolveReference(&url.URL{Path: "/"}).String()
}

// match looks key up across every owned cache, static first.
func (c *Controller) match(ctx context.Context, key string) (*Response, bool) {
	for _, name := range []string{c.names.Static, c.names.Dynamic, c.names.Versioned} {
		cache, err := c.caches.Open(ctx, name)
		if err != nil {
			c.log.Warn("failed to open cache", logger.String("cache", name), logger.Error(err))
			continue
		}
		resp, ok, err := cache.Match(ctx, key)
		if err != nil {
			c.log.Warn("cache lookup failed", logger.String("cache", name), logger.Error(err))
			continue
		}
		if ok {
			return resp, true
		}
	}
	return nil, false
}

func (c *Controller) put(ctx context.Context, name, key string, resp *Response) {
	stored := resp.Clone()
	stored.StoredAt = c.now().UTC()

	cache, err := c.caches.Open(ctx, name)
	if err == nil {
		err = cache.Put(ctx, key, stored)
	}
	if err != nil {
		c.log.Warn("failed to store response",
			logger.String("cache", name),
			logger.String("key", key),
			logger.Error(err))
	}
}

func (c *Controller) networkFirst(ctx context.Context, key string, header http.Header, document bool) (*Response, error) {
	resp, err := c.fetcher.Fetch(ctx, key, header)
	if err == nil && resp.OK() {
		c.put(ctx, c.names.Dynamic, key, resp)
		resp.Source = SourceNetwork
		return resp, nil
	}

	if cached, ok := c.match(ctx, key); ok {
		cached.Source = SourceCache
		return cached, nil
	}

	if document {
		if shell, ok := c.match(ctx, c.shellKey()); ok {
			shell.Source = SourceShell
			return shell, nil
		}
	}

	if err != nil {
		return nil, err
	}
	// Live non-2xx response with nothing better to offer.
	resp.Source = SourceNetwork
	return resp, nil
}

func (c *Controller) cacheFirst(ctx context.Context, key string, header http.Header) (*Response, error) {
	if cached, ok := c.match(ctx, key); ok {
		c.refreshInBackground(key, header)
		cached.Source = SourceCache
		return cached, nil
	}

	resp, err := c.fetcher.Fetch(ctx, key, header)
	if err != nil {
		return nil, err
	}
	if resp.OK() {
		c.put(ctx, c.names.Static, key, resp)
	}
	resp.Source = SourceNetwork
	return resp, nil
}

// refreshInBackground re-fetches key into the static cache. Concurrent
// refreshes of the same key collapse into one and errors are dropped.
func (c *Controller) refreshInBackground(key string, header http.Header) {
	header = header.Clone()
	ch := c.refresh.DoChan(key, func() (any, error) {
		ctx := *c.refreshCtx.Load()
		resp, err := c.fetcher.Fetch(ctx, key, header)
		if err != nil {
			return nil, err
		}
		if resp.OK() {
			c.put(ctx, c.names.Static, key, resp)
		}
		return nil, nil
	})
	go func() {
		if res := <-ch; res.Err != nil {
			c.log.Debug("background refresh failed", logger.String("key", key), logger.Error(res.Err))
		}
	}()
}
