package offline

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/logger"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// State is the controller lifecycle state.
type State string

const (
	StateParsed     State = "parsed"
	StateInstalling State = "installing"
	StateInstalled  State = "installed"
	StateActivating State = "activating"
	StateActivated  State = "activated"
	StateRedundant  State = "redundant"
)

// precacheConcurrency bounds parallel shell fetches during install.
const precacheConcurrency = 4

// Install fetches every shell asset and stores them in the static cache.
// Either all assets are stored or none are.
func (c *Controller) Install(ctx context.Context) error {
	type fetched struct {
		key  string
		resp *Response
	}

	results := make([]fetched, len(c.cfg.ShellAssets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(precacheConcurrency)

	for i, asset := range c.cfg.ShellAssets {
		key := c.cfg.Origin.ResolveReference(&url.URL{Path: asset}).String()
		g.Go(func() error {
			resp, err := c.fetcher.Fetch(gctx, key, nil)
			if err != nil {
				return err
			}
			if !resp.OK() {
				return fmt.Errorf("precache %s: unexpected status %d", key, resp.Status)
			}
			results[i] = fetched{key: key, resp: resp}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to precache shell: %w", err)
	}

	cache, err := c.caches.Open(ctx, c.names.Static)
	if err != nil {
		return fmt.Errorf("failed to open static cache: %w", err)
	}
	for _, f := range results {
		f.resp.StoredAt = c.now().UTC()
		if err := cache.Put(ctx, f.key, f.resp); err != nil {
			return fmt.Errorf("failed to store %s: %w", f.key, err)
		}
	}

	c.log.Info("shell precached",
		logger.String("cache", c.names.Static),
		logger.Int("assets", len(results)))
	return nil
}

// Activate deletes every cache this version does not own and claims all
// connected app instances. Cleanup failures are logged, not fatal.
func (c *Controller) Activate(ctx context.Context) error {
	names, err := c.caches.Keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list caches: %w", err)
	}

	var errs error
	deleted := 0
	for _, name := range names {
		if c.names.owns(name) {
			continue
		}
		if _, err := c.caches.Delete(ctx, name); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete cache %s: %w", name, err))
			continue
		}
		deleted++
		c.log.Info("deleted stale cache", logger.String("cache", name))
	}

	claimed := 0
	if c.bus != nil {
		claimed = c.bus.Claim()
	}

	c.log.Info("offline controller activated",
		logger.Int("stale_caches_deleted", deleted),
		logger.Int("clients_claimed", claimed))

	return errs
}

// command is a message for the actor loop.
type command interface{}

type registerCmd struct{ tag string }
type onlineCmd struct{ online bool }
type skipWaitingCmd struct{}
type periodicCmd struct{ tag string }
type installedCmd struct{ err error }
type statusCmd struct{ reply chan Status }

// Status is a snapshot of the actor-owned state.
type Status struct {
	State           State    `json:"state"`
	Version         string   `json:"version"`
	Online          bool     `json:"online"`
	Pending         []string `json:"pending"`
	InstallAttempts int      `json:"installAttempts"`
}

// actor is the state owned by the Run goroutine.
type actor struct {
	online   bool
	pending  []string
	attempts int
	retry    *time.Timer
	backoff  time.Duration
}

func (a *actor) addPending(tag string) bool {
	for _, t := range a.pending {
		if t == tag {
			return false
		}
	}
	a.pending = append(a.pending, tag)
	return true
}

// Run drives the controller until ctx is cancelled: install, activation,
// and every sync trigger are processed here one at a time.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return fmt.Errorf("offline controller already running")
	}
	defer close(c.done)

	c.refreshCtx.Store(&ctx)

	a := &actor{online: true, backoff: c.cfg.InstallRetry}
	c.startInstall(ctx, a)

	for {
		var retryC <-chan time.Time
		if a.retry != nil {
			retryC = a.retry.C
		}

		select {
		case <-ctx.Done():
			if a.retry != nil {
				a.retry.Stop()
			}
			c.log.Info("offline controller stopped", logger.Int("pending", len(a.pending)))
			return nil

		case <-retryC:
			a.retry = nil
			c.startInstall(ctx, a)

		case cmd := <-c.inbox:
			c.handleCommand(ctx, a, cmd)
		}
	}
}

func (c *Controller) startInstall(ctx context.Context, a *actor) {
	a.attempts++
	c.setState(StateInstalling)
	go func() {
		err := c.Install(ctx)
		select {
		case c.inbox <- installedCmd{err: err}:
		case <-ctx.Done():
		}
	}()
}

func (c *Controller) handleCommand(ctx context.Context, a *actor, cmd command) {
	switch cmd := cmd.(type) {
	case installedCmd:
		if cmd.err != nil {
			c.setState(StateRedundant)
			c.log.Error("install failed, will retry",
				logger.Int("attempt", a.attempts),
				logger.Duration("retry_in", a.backoff),
				logger.Error(cmd.err))
			a.retry = time.NewTimer(a.backoff)
			a.backoff *= 2
			if a.backoff > c.cfg.InstallRetryMax {
				a.backoff = c.cfg.InstallRetryMax
			}
			return
		}
		a.backoff = c.cfg.InstallRetry
		c.setState(StateInstalled)
		if c.cfg.SkipWaiting {
			c.activate(ctx, a)
		}

	case skipWaitingCmd:
		if c.State() == StateInstalled {
			c.activate(ctx, a)
		}

	case registerCmd:
		if a.addPending(cmd.tag) {
			c.log.Debug("sync tag pending", logger.String("tag", cmd.tag))
		}
		c.flush(a)

	case onlineCmd:
		a.online = cmd.online
		c.flush(a)

	case periodicCmd:
		c.firePeriodic(a, cmd.tag)

	case statusCmd:
		cmd.reply <- Status{
			State:           c.State(),
			Version:         c.cfg.Version,
			Online:          a.online,
			Pending:         append([]string{}, a.pending...),
			InstallAttempts: a.attempts,
		}
	}
}

func (c *Controller) activate(ctx context.Context, a *actor) {
	c.setState(StateActivating)
	if err := c.Activate(ctx); err != nil {
		c.log.Warn("activation cleanup incomplete", logger.Error(err))
	}
	c.setState(StateActivated)
	c.flush(a)
}

// send queues cmd for the actor, failing once the loop has exited.
func (c *Controller) send(cmd command) error {
	select {
	case c.inbox <- cmd:
		return nil
	case <-c.done:
		return ErrStopped
	}
}

// SkipWaiting activates a controller that is installed and waiting.
func (c *Controller) SkipWaiting() error {
	return c.send(skipWaitingCmd{})
}

// Status asks the actor for a snapshot of its state.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if err := c.send(statusCmd{reply: reply}); err != nil {
		return Status{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-ctx.Done():
		return Status{}, ctx.Err()
	case <-c.done:
		return Status{}, ErrStopped
	}
}
