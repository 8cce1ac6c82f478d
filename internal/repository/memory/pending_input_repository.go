package memory

import (
	"time"

	"tg-notes-bot/pkg/store"

	"github.com/patrickmn/go-cache"
)

// PendingInputRepository keeps "waiting for values" markers. They expire after a
// while so a forgotten prompt does not swallow a later note.
type PendingInputRepository struct {
	cache *cache.Cache
}

func NewPendingInputRepository(ttl time.Duration) *PendingInputRepository {
	return &PendingInputRepository{
		cache: newCache(ttl),
	}
}

func (r *PendingInputRepository) Save(pending *store.PendingInput) {
	r.cache.Set(chatKey(pending.ChatID), pending, cache.DefaultExpiration)
}

func (r *PendingInputRepository) Take(chatID int64) (*store.PendingInput, bool) {
	key := chatKey(chatID)
	x, found := r.cache.Get(key)
	if !found {
		return nil, false
	}
	r.cache.Delete(key)
	return x.(*store.PendingInput), true
}
