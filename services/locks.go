package services

import "context"

// Locks serializes mutations per session id and session starts per user id.
// Services that touch the same sessions must share one Locks value.
type Locks struct {
	sessions *keyedMutex
	users    *keyedMutex
}

func NewLocks() *Locks {
	return &Locks{sessions: newKeyedMutex(), users: newKeyedMutex()}
}

func (l *Locks) Session(id string) func() { return l.sessions.Lock(id) }

func (l *Locks) User(id string) func() { return l.users.Lock(id) }

// abandonActive abandons the user's in-progress session while holding its
// session lock, so an answer already in flight lands before the abandon.
// Callers hold the user lock.
func abandonActive(ctx context.Context, sessions SessionStore, locks *Locks, userID string) (int64, error) {
	active, err := sessions.GetActiveSession(ctx, userID)
	if err != nil {
		return 0, err
	}
	if active != nil {
		unlock := locks.Session(active.ID)
		defer unlock()
	}
	return sessions.AbandonActiveSessions(ctx, userID)
}
