package offline

import "time"

// Message types exchanged with app instances.
const (
	MsgSyncLinks   = "SYNC_LINKS"
	MsgSyncGroups  = "SYNC_GROUPS"
	MsgDailySync   = "DAILY_SYNC"
	MsgSkipWaiting = "SKIP_WAITING"
)

// Well-known sync tags.
const (
	TagSyncLinks  = "sync-links"
	TagSyncGroups = "sync-groups"
	TagDailySync  = "daily-sync"
)

// Message is the JSON envelope sent over the message bus.
// Timestamp is in milliseconds since the Unix epoch.
type Message struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// NewMessage stamps a message of type typ with t.
func NewMessage(typ string, t time.Time) Message {
	return Message{Type: typ, Timestamp: t.UnixMilli()}
}

// messageTypeFor maps a sync tag to the message it broadcasts.
func messageTypeFor(tag string) (string, bool) {
	switch tag {
	case TagSyncLinks:
		return MsgSyncLinks, true
	case TagSyncGroups:
		return MsgSyncGroups, true
	case TagDailySync:
		return MsgDailySync, true
	default:
		return "", false
	}
}
