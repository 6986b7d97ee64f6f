package service

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// sessionStore holds the current application user of every signed-in
// account. Entries are bounded in number and expire with the access token.
type sessionStore struct {
	users *expirable.LRU[string, *model.AppUser]
}

func newSessionStore(size int, ttl time.Duration) *sessionStore {
	if size <= 0 {
		size = 4096
	}
	return &sessionStore{users: expirable.NewLRU[string, *model.AppUser](size, nil, ttl)}
}

func (s *sessionStore) get(userID string) (*model.AppUser, bool) {
	return s.users.Get(userID)
}

func (s *sessionStore) put(u *model.AppUser) {
	s.users.Add(u.ID, u)
}

func (s *sessionStore) remove(userID string) {
	s.users.Remove(userID)
}

func (s *sessionStore) len() int { return s.users.Len() }
