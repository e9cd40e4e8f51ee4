package redisrepo

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/mustafa-mbari/TeleChat/pkg/store"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "telechat:session:"
	defaultTTL       = 1 * time.Hour
)

// SessionRepository is the Redis-backed session driver. It exists for
// multi-instance deployments where the in-process cache would split state
// per replica; the engine keeps the same contract either way.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get returns nil (not an error) when the chat has no session.
func (r *SessionRepository) Get(ctx context.Context, chatID int64) (*store.Session, error) {
	val, err := r.client.Get(ctx, r.key(chatID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session store.Session
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Save(ctx context.Context, session *store.Session) error {
	val, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(session.ChatID), val, r.ttl).Err()
}

func (r *SessionRepository) Delete(ctx context.Context, chatID int64) error {
	return r.client.Del(ctx, r.key(chatID)).Err()
}

func (r *SessionRepository) key(chatID int64) string {
	return sessionKeyPrefix + strconv.FormatInt(chatID, 10)
}
