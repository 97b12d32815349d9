package service

// Event types pushed to subscribers of a session.
const (
	EventAnalysisUpdated = "analysis_updated"
	EventPendingChanged  = "pending_changed"
)

// Broadcaster sends real-time events to connected clients.
// Implemented by the WebSocket hub.
type Broadcaster interface {
	BroadcastSessionEvent(sessionID string, eventType string, data any)
}

// NoopBroadcaster is a no-op implementation for testing or when WS is disabled.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastSessionEvent(string, string, any) {}
