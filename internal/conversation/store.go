package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store holds live sessions in memory, serializing turns per session key
// while letting unrelated sessions proceed in parallel. Each save is
// mirrored to Redis as a JSON snapshot so an operator can inspect state;
// the in-memory copy stays authoritative.
type Store struct {
	ttl    time.Duration
	redis  *redis.Client
	logger *zap.Logger

	mu      sync.Mutex
	entries map[string]*storeEntry
}

type storeEntry struct {
	mu        sync.Mutex
	session   *Session
	expiresAt time.Time
}

// NewStore builds the session store. redisClient may be nil, which disables
// the snapshot mirror.
func NewStore(ttl time.Duration, redisClient *redis.Client, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		ttl:     ttl,
		redis:   redisClient,
		logger:  logger,
		entries: map[string]*storeEntry{},
	}
}

func sessionKey(userID, sessionID string) string {
	return userID + "_" + sessionID
}

// Acquire returns the session for the key, creating it on first use, with
// the per-key lock held. The returned release func snapshots and unlocks;
// it must be called exactly once.
func (st *Store) Acquire(ctx context.Context, userID, sessionID string) (*Session, func()) {
	key := sessionKey(userID, sessionID)

	st.mu.Lock()
	entry, ok := st.entries[key]
	if !ok {
		entry = &storeEntry{session: NewSession(userID, sessionID)}
		st.entries[key] = entry
	}
	st.mu.Unlock()

	entry.mu.Lock()
	entry.expiresAt = time.Now().Add(st.ttl)
	session := entry.session

	release := func() {
		session.UpdatedAt = time.Now().UTC()
		st.snapshot(ctx, key, session)
		entry.mu.Unlock()
	}
	return session, release
}

// Reset drops the stored session entirely; the next turn starts fresh.
func (st *Store) Reset(ctx context.Context, userID, sessionID string) {
	key := sessionKey(userID, sessionID)

	st.mu.Lock()
	delete(st.entries, key)
	st.mu.Unlock()

	if st.redis != nil {
		if err := st.redis.Del(ctx, st.redisKey(key)).Err(); err != nil {
			st.logger.Warn("session snapshot delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// ReplaceLocked swaps the stored session for a fresh one while the caller
// still holds the per-key lock. Used by the panic recovery path so the key
// stays usable.
func (st *Store) ReplaceLocked(userID, sessionID string) *Session {
	key := sessionKey(userID, sessionID)
	fresh := NewSession(userID, sessionID)

	st.mu.Lock()
	if entry, ok := st.entries[key]; ok {
		entry.session = fresh
	}
	st.mu.Unlock()
	return fresh
}

// Run evicts expired sessions until the context is cancelled.
func (st *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.evict(now)
		}
	}
}

func (st *Store) evict(now time.Time) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for key, entry := range st.entries {
		if now.After(entry.expiresAt) {
			delete(st.entries, key)
		}
	}
}

func (st *Store) snapshot(ctx context.Context, key string, session *Session) {
	if st.redis == nil {
		return
	}
	raw, err := json.Marshal(session)
	if err != nil {
		st.logger.Warn("session snapshot marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := st.redis.Set(ctx, st.redisKey(key), raw, st.ttl).Err(); err != nil {
		st.logger.Warn("session snapshot write failed", zap.String("key", key), zap.Error(err))
	}
}

func (st *Store) redisKey(key string) string {
	return "chat:session:" + key
}
