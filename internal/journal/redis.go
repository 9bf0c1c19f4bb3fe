// Package journal records user deletions that have started but not yet
// finished in both stores, so a sweep can complete them later.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const pendingKey = "mindcare:deletions:pending"

type Entry struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	StartedAt time.Time `json:"startedAt"`
	Attempts  int       `json:"attempts"`
	LastError string    `json:"lastError,omitempty"`
}

type RedisJournal struct {
	client *redis.Client
}

// NewRedisJournal connects to Redis and verifies the connection.
func NewRedisJournal(ctx context.Context, addr, password string, db int) (*RedisJournal, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisJournal{client: client}, nil
}

func (j *RedisJournal) Close() error {
	return j.client.Close()
}

// Begin records that deletion of uid is in progress. A repeated Begin for
// the same uid keeps the original entry and bumps its attempt count.
func (j *RedisJournal) Begin(ctx context.Context, uid string) error {
	raw, err := j.client.HGet(ctx, pendingKey, uid).Result()
	var entry Entry
	switch {
	case errors.Is(err, redis.Nil):
		entry = newEntry(uid, time.Now().UTC())
	case err != nil:
		return fmt.Errorf("read journal entry %s: %w", uid, err)
	default:
		if entry, err = decodeEntry(raw); err != nil {
			entry = newEntry(uid, time.Now().UTC())
		}
	}
	entry.Attempts++

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	if err := j.client.HSet(ctx, pendingKey, uid, data).Err(); err != nil {
		return fmt.Errorf("write journal entry %s: %w", uid, err)
	}
	return nil
}

// Fail annotates a pending entry with the error that stopped it.
func (j *RedisJournal) Fail(ctx context.Context, uid string, cause error) error {
	raw, err := j.client.HGet(ctx, pendingKey, uid).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read journal entry %s: %w", uid, err)
	}
	entry, err := decodeEntry(raw)
	if err != nil {
		return err
	}
	entry.LastError = cause.Error()
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}
	return j.client.HSet(ctx, pendingKey, uid, data).Err()
}

func (j *RedisJournal) Complete(ctx context.Context, uid string) error {
	if err := j.client.HDel(ctx, pendingKey, uid).Err(); err != nil {
		return fmt.Errorf("clear journal entry %s: %w", uid, err)
	}
	return nil
}

// Pending lists unfinished deletions, oldest first.
func (j *RedisJournal) Pending(ctx context.Context) ([]Entry, error) {
	all, err := j.client.HGetAll(ctx, pendingKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	entries := make([]Entry, 0, len(all))
	for uid, raw := range all {
		entry, err := decodeEntry(raw)
		if err != nil {
			entry = Entry{UID: uid}
		}
		entries = append(entries, entry)
	}
	sortEntries(entries)
	return entries, nil
}

func newEntry(uid string, now time.Time) Entry {
	return Entry{ID: uuid.NewString(), UID: uid, StartedAt: now}
}

func decodeEntry(raw string) (Entry, error) {
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return Entry{}, fmt.Errorf("decode journal entry: %w", err)
	}
	return entry, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].StartedAt.Equal(entries[b].StartedAt) {
			return entries[a].UID < entries[b].UID
		}
		return entries[a].StartedAt.Before(entries[b].StartedAt)
	})
}
