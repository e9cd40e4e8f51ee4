package memory

import (
	"context"
	"strconv"
	"time"

	"github.com/mustafa-mbari/TeleChat/pkg/store"

	"github.com/patrickmn/go-cache"
)

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository() *SessionRepository {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Get(_ context.Context, chatID int64) (*store.Session, error) {
	if x, found := r.cache.Get(sessionKey(chatID)); found {
		return x.(*store.Session), nil
	}
	return nil, nil
}

func (r *SessionRepository) Save(_ context.Context, session *store.Session) error {
	r.cache.Set(sessionKey(session.ChatID), session, cache.DefaultExpiration)
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, chatID int64) error {
	r.cache.Delete(sessionKey(chatID))
	return nil
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
