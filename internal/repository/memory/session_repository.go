package memory

import (
	"context"
	"strconv"
	"time"

	"tg-notes-bot/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

// NewSessionRepository creates the process-local session store. A zero idleTimeout
// keeps sessions until they are finalized or replaced; a positive one lets the
// go-cache janitor drop abandoned sessions.
func NewSessionRepository(idleTimeout time.Duration) *SessionRepository {
	return &SessionRepository{
		cache: newCache(idleTimeout),
	}
}

func newCache(idleTimeout time.Duration) *cache.Cache {
	if idleTimeout <= 0 {
		return cache.New(cache.NoExpiration, 0)
	}
	return cache.New(idleTimeout, idleTimeout/2)
}

func chatKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

func (r *SessionRepository) Save(_ context.Context, session *store.Session) error {
	r.cache.Set(chatKey(session.ChatID), session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Get(_ context.Context, chatID int64) (*store.Session, bool, error) {
	if x, found := r.cache.Get(chatKey(chatID)); found {
		return x.(*store.Session), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Delete(_ context.Context, chatID int64) error {
	r.cache.Delete(chatKey(chatID))
	return nil
}

func (r *SessionRepository) Count(_ context.Context) (int, error) {
	return r.cache.ItemCount(), nil
}
