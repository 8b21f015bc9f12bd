package events

import "time"

const (
	EventTypeSessionCreated    = "session.created"
	EventTypeSessionTerminated = "session.terminated"
)

// Logout reasons recorded on login history rows.
const (
	ReasonLogout         = "logout"
	ReasonSelfTerminated = "self_terminated"
	ReasonForceLogout    = "force_logout"
)

type SessionCreatedEvent struct {
	Header
	SessionID int64     `json:"session_id"`
	UserID    int64     `json:"user_id"`
	IPAddress string    `json:"ip_address"`
	AppName   string    `json:"app_name"`
	LoginAt   time.Time `json:"login_at"`
}

func NewSessionCreatedEvent(sessionID, userID int64, ip, appName string, loginAt time.Time) *SessionCreatedEvent {
	return &SessionCreatedEvent{
		Header:    newHeader(EventTypeSessionCreated),
		SessionID: sessionID,
		UserID:    userID,
		IPAddress: ip,
		AppName:   appName,
		LoginAt:   loginAt,
	}
}

type SessionTerminatedEvent struct {
	Header
	SessionID int64  `json:"session_id"`
	UserID    int64  `json:"user_id"`
	ActorID   int64  `json:"actor_id"`
	Reason    string `json:"reason"`
}

func NewSessionTerminatedEvent(sessionID, userID, actorID int64, reason string) *SessionTerminatedEvent {
	return &SessionTerminatedEvent{
		Header:    newHeader(EventTypeSessionTerminated),
		SessionID: sessionID,
		UserID:    userID,
		ActorID:   actorID,
		Reason:    reason,
	}
}
