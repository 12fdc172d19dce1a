package games

import (
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"sennabot/service"
)

// Kind identifies which coordinator owns a session.
type Kind string

const (
	KindBlackjack Kind = "blackjack"
	KindChallenge Kind = "balance_challenge"
	KindBreakout  Kind = "breakout"
	KindBoxes     Kind = "four_boxes"
)

// Session marks a set of participants as busy inside one game.
type Session struct {
	ID           string
	Kind         Kind
	GuildID      string
	Participants []string
}

// Registry tracks active game sessions per guild member. A member may sit in
// at most one session at a time; sessions live only in memory, so a restart
// forfeits anything in flight.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session // guildID:userID -> session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func key(guildID, userID string) string {
	return guildID + ":" + userID
}

// Begin reserves a session for every participant, failing with
// service.ErrSessionActive when any of them is already busy.
func (r *Registry) Begin(kind Kind, guildID string, participants ...string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range participants {
		if _, busy := r.sessions[key(guildID, p)]; busy {
			return nil, service.ErrSessionActive
		}
	}

	s := &Session{
		ID:           uuid.NewString(),
		Kind:         kind,
		GuildID:      guildID,
		Participants: append([]string(nil), participants...),
	}
	for _, p := range participants {
		r.sessions[key(guildID, p)] = s
	}

	log.WithFields(log.Fields{
		"sessionID":    s.ID,
		"kind":         kind,
		"guildID":      guildID,
		"participants": participants,
	}).Debug("Game session started")
	return s, nil
}

// End releases every participant of the session.
func (r *Registry) End(s *Session) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range s.Participants {
		k := key(s.GuildID, p)
		if cur, ok := r.sessions[k]; ok && cur.ID == s.ID {
			delete(r.sessions, k)
		}
	}

	log.WithFields(log.Fields{
		"sessionID": s.ID,
		"kind":      s.Kind,
	}).Debug("Game session ended")
}

// Active returns the session a member currently sits in, if any.
func (r *Registry) Active(guildID, userID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key(guildID, userID)]
	return s, ok
}

// InChallenge reports whether the member is locked in a balance challenge.
func (r *Registry) InChallenge(guildID, userID string) bool {
	s, ok := r.Active(guildID, userID)
	return ok && s.Kind == KindChallenge
}
