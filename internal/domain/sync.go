package domain

// Sync topics requested by the mutation engine.
const (
	TopicLinks  = "links"
	TopicGroups = "groups"
)

// SyncTag returns the background sync tag registered for a topic.
func SyncTag(topic string) string {
	return "sync-" + topic
}
