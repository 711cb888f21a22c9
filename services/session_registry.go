package services

import (
	"sync"

	"rentwheels-backend/models"
)

// SessionParticipant is a socket's identity within a live conversation.
type SessionParticipant struct {
	UserID   string
	UserType models.UserType
}

// ChatSession is the transient in-memory state of an active conversation:
// its live sockets and the accumulated message window. It is a working
// cache, not the source of truth; the durable log lives in the
// conversations collection.
type ChatSession struct {
	ConversationID string
	VehicleID      string
	Participants   map[string]SessionParticipant
	Messages       []models.ChatMessage
}

// SessionRegistry is the process-wide map of live chat sessions. Created on
// first join, removed when the last participant leaves. Guarded by a mutex
// because socket connections are served by independent goroutines.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*ChatSession
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*ChatSession),
	}
}

// Join idempotently ensures a session exists for the conversation and
// registers the socket under it.
func (r *SessionRegistry) Join(conversationID, socketID, userID string, userType models.UserType) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[conversationID]
	if !exists {
		session = &ChatSession{
			ConversationID: conversationID,
			Participants:   make(map[string]SessionParticipant),
		}
		r.sessions[conversationID] = session
	}

	session.Participants[socketID] = SessionParticipant{UserID: userID, UserType: userType}
}

// RecordMessage appends to the session's message list and returns the new
// message count. The vehicle id is filled in lazily from the first message
// that carries one; later writes are ignored. Returns false when no session
// exists for the conversation.
func (r *SessionRegistry) RecordMessage(conversationID string, message models.ChatMessage, vehicleID string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[conversationID]
	if !exists {
		return 0, false
	}

	if session.VehicleID == "" && vehicleID != "" {
		session.VehicleID = vehicleID
	}
	session.Messages = append(session.Messages, message)

	return len(session.Messages), true
}

// SeedMessages populates a session's window from the durable history. It is
// a no-op unless the session exists and has no messages yet, so a live
// window is never clobbered by a late history fetch.
func (r *SessionRegistry) SeedMessages(conversationID string, messages []models.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[conversationID]
	if !exists || len(session.Messages) > 0 {
		return
	}
	session.Messages = append(session.Messages, messages...)
}

// Messages returns a copy of the session's accumulated messages.
func (r *SessionRegistry) Messages(conversationID string) []models.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[conversationID]
	if !exists {
		return nil
	}

	out := make([]models.ChatMessage, len(session.Messages))
	copy(out, session.Messages)
	return out
}

// VehicleID returns the vehicle the conversation is about, if known yet.
func (r *SessionRegistry) VehicleID(conversationID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[conversationID]
	if !exists {
		return "", false
	}
	return session.VehicleID, session.VehicleID != ""
}

// Session returns a snapshot of the session, or false if none exists.
func (r *SessionRegistry) Session(conversationID string) (ChatSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, exists := r.sessions[conversationID]
	if !exists {
		return ChatSession{}, false
	}

	snapshot := ChatSession{
		ConversationID: session.ConversationID,
		VehicleID:      session.VehicleID,
		Participants:   make(map[string]SessionParticipant, len(session.Participants)),
		Messages:       make([]models.ChatMessage, len(session.Messages)),
	}
	for id, p := range session.Participants {
		snapshot.Participants[id] = p
	}
	copy(snapshot.Messages, session.Messages)

	return snapshot, true
}

// Leave removes the socket from every session it participates in. Sessions
// left with no participants are deleted; their in-memory history is gone,
// the durable log is not.
func (r *SessionRegistry) Leave(socketID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for conversationID, session := range r.sessions {
		if _, ok := session.Participants[socketID]; !ok {
			continue
		}
		delete(session.Participants, socketID)
		if len(session.Participants) == 0 {
			delete(r.sessions, conversationID)
		}
	}
}
