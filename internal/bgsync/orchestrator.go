// Package bgsync tracks connectivity and forwards sync requests to the
// background sync capability once one is attached.
package bgsync

import (
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/linktree/internal/domain"
	"github.com/MrSnakeDoc/linktree/internal/logger"
)

// Capability is the background sync facility. The offline controller is
// the production implementation.
type Capability interface {
	RegisterSync(tag string) error
	SetOnline(online bool)
}

// Orchestrator owns the process-wide online flag.
type Orchestrator struct {
	online atomic.Bool
	// transition serializes flag changes with their forwarding so the
	// capability sees them in the same order.
	transition sync.Mutex

	mu         sync.RWMutex
	capability Capability

	log logger.Logger
}

// New returns an Orchestrator with the given initial connectivity.
func New(online bool, log logger.Logger) *Orchestrator {
	o := &Orchestrator{log: log}
	o.online.Store(online)
	return o
}

// Attach sets the capability and hands it the current connectivity state.
func (o *Orchestrator) Attach(c Capability) {
	o.transition.Lock()
	defer o.transition.Unlock()

	o.mu.Lock()
	o.capability = c
	o.mu.Unlock()

	if c != nil {
		c.SetOnline(o.online.Load())
	}
}

func (o *Orchestrator) current() Capability {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.capability
}

// RequestSync registers the tag for topic. Without a capability this is a
// logged no-op; registration errors are logged and never surface to callers.
func (o *Orchestrator) RequestSync(topic string) {
	tag := domain.SyncTag(topic)

	c := o.current()
	if c == nil {
		o.log.Debug("background sync unavailable, request dropped", logger.String("tag", tag))
		return
	}

	if err := c.RegisterSync(tag); err != nil {
		o.log.Warn("background sync registration failed",
			logger.String("tag", tag),
			logger.Error(err))
		return
	}
	o.log.Debug("background sync registered", logger.String("tag", tag))
}

// Online reports the last known connectivity.
func (o *Orchestrator) Online() bool {
	return o.online.Load()
}

// SetOnline records a connectivity transition and reports whether the state
// changed. The capability is told about every change so that deferred tags
// can flush on restoration.
func (o *Orchestrator) SetOnline(online bool) bool {
	o.transition.Lock()
	defer o.transition.Unlock()

	prev := o.online.Swap(online)
	if prev == online {
		return false
	}

	o.log.Info("connectivity changed", logger.Bool("online", online))

	if c := o.current(); c != nil {
		c.SetOnline(online)
	}
	return true
}
