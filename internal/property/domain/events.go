package domain

const (
	SubjectPropertyCreated     = "property.created"
	SubjectPropertyUpdated     = "property.updated"
	SubjectPropertyDeleted     = "property.deleted"
	SubjectMediaCleanupPending = "property.media_cleanup_pending"
)

type PropertyEvent struct {
	ID   string `json:"id"`
	Code int64  `json:"code"`
}

type MediaCleanupEvent struct {
	PropertyID string         `json:"propertyId"`
	Items      []MediaCleanup `json:"items"`
}
