package offline

import (
	"github.com/MrSnakeDoc/linktree/internal/logger"
)

// RegisterSync queues a one-off sync tag. Registering a tag that is already
// pending has no further effect.
func (c *Controller) RegisterSync(tag string) error {
	return c.send(registerCmd{tag: tag})
}

// SetOnline tells the controller about a connectivity change. Pending tags
// fire as soon as the controller is both active and online.
func (c *Controller) SetOnline(online bool) {
	if err := c.send(onlineCmd{online: online}); err != nil {
		c.log.Debug("connectivity change dropped", logger.Error(err))
	}
}

// PeriodicSync fires a periodic tag such as daily-sync.
func (c *Controller) PeriodicSync(tag string) error {
	return c.send(periodicCmd{tag: tag})
}

// flush fires every pending tag when conditions allow. Tags are removed
// after firing whether or not anyone received the message.
func (c *Controller) flush(a *actor) {
	if !a.online || c.State() != StateActivated || len(a.pending) == 0 {
		return
	}

	tags := a.pending
	a.pending = nil
	for _, tag := range tags {
		c.fire(tag)
	}
}

func (c *Controller) firePeriodic(a *actor, tag string) {
	if !a.online || c.State() != StateActivated {
		c.log.Debug("periodic sync skipped",
			logger.String("tag", tag),
			logger.Bool("online", a.online),
			logger.String("state", string(c.State())))
		return
	}
	c.fire(tag)
}

func (c *Controller) fire(tag string) {
	typ, ok := messageTypeFor(tag)
	if !ok {
		c.log.Warn("unknown sync tag ignored", logger.String("tag", tag))
		return
	}

	delivered := 0
	if c.bus != nil {
		delivered = c.bus.Broadcast(NewMessage(typ, c.now()))
	}

	c.log.Info("sync fired",
		logger.String("tag", tag),
		logger.String("type", typ),
		logger.Int("recipients", delivered))
}
