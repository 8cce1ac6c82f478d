package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"tg-notes-bot/pkg/store"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "tgnotes:session:"

// SessionRepository stores sessions as JSON so an open tagging flow survives a
// restart of the bot.
type SessionRepository struct {
	rdb         *goredis.Client
	idleTimeout time.Duration
}

func NewSessionRepository(rdb *goredis.Client, idleTimeout time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, idleTimeout: idleTimeout}
}

func sessionKey(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// 0 means no expiry for go-redis
	ttl := r.idleTimeout
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, sessionKey(session.ChatID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session %d: %w", session.ChatID, err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, chatID int64) (*store.Session, bool, error) {
	data, err := r.rdb.Get(ctx, sessionKey(chatID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load session %d: %w", chatID, err)
	}

	var session store.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, false, fmt.Errorf("failed to decode session %d: %w", chatID, err)
	}
	return &session, true, nil
}

func (r *SessionRepository) Delete(ctx context.Context, chatID int64) error {
	if err := r.rdb.Del(ctx, sessionKey(chatID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session %d: %w", chatID, err)
	}
	return nil
}

func (r *SessionRepository) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	for {
		keys, next, err := r.rdb.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to count sessions: %w", err)
		}
		total += len(keys)
		if next == 0 {
			return total, nil
		}
		cursor = next
	}
}

// NewClient parses a redis:// URL, falling back to treating it as a plain address.
func NewClient(url string) *goredis.Client {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		opt = &goredis.Options{Addr: url}
	}
	return goredis.NewClient(opt)
}
