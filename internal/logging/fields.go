package logging

// Standardized attribute keys shared across components.
const (
	FieldComponent = "component"
	FieldEventType = "event_type"
	FieldSocket    = "socket"
	FieldObjectID  = "object_id"
	FieldSessionID = "session_id"
)
