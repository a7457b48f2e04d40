package store

import (
	"Spinduel/utils"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DocumentTTL bounds how long an abandoned record can linger. Every live
// record is rewritten well within this window.
const DocumentTTL = 24 * time.Hour

// Store is the shared record store client. Documents are JSON values under
// plain keys; every write also publishes the new document on the key's watch
// channel so other client processes see it without polling. The store offers
// no multi-key transaction: the only atomicity guarantees are single-key
// visibility, numeric INCRBY, and the WATCH-based compare-and-set in
// UpdateJSON.
type Store struct {
	client *redis.Client

	mu    sync.Mutex
	feeds map[string]*feed
	subId int
}

// InitStore connects the store client and verifies the connection
func InitStore(addr string, db int) (*Store, error) {
	var client *redis.Client
	if addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("error parsing Redis URL: %v", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
	}

	s := &Store{client: client, feeds: make(map[string]*feed)}

	if err := s.client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}
	log.Println("Successfully connected to Redis")

	return s, nil
}

// CloseStore gracefully closes the store connection
func CloseStore(s *Store) error {
	s.mu.Lock()
	for name, f := range s.feeds {
		f.pubsub.Close()
		delete(s.feeds, name)
	}
	s.mu.Unlock()

	if err := s.client.Close(); err != nil {
		return fmt.Errorf("error closing Redis connection: %v", err)
	}
	return nil
}

// GetJSON reads the document at key into dest. The second return is false
// when the key is absent.
func (s *Store) GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error getting document %s: %v", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("error unmarshaling document %s: %v", key, err)
	}
	return true, nil
}

// SetJSON writes the full document and notifies subscribers. This is an
// unconditional overwrite; use UpdateJSON for read-modify-write cycles.
func (s *Store) SetJSON(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("error marshaling document %s: %v", key, err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, DocumentTTL)
		pipe.Publish(ctx, WatchChannel(key), data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("error setting document %s: %v", key, err)
	}
	return nil
}

// UpdateJSON runs one compare-and-set cycle against key: read the document
// into doc, apply mutate, and write back only if no concurrent writer touched
// the key in between. A lost race returns ErrVersionConflict and nothing is
// written; there is no automatic retry, callers surface the failure.
// An absent key returns ErrNotFound.
func (s *Store) UpdateJSON(ctx context.Context, key string, doc interface{}, mutate func() error) error {
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return utils.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("error getting document %s: %v", key, err)
		}
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("error unmarshaling document %s: %v", key, err)
		}
		if err := mutate(); err != nil {
			return err
		}
		out, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("error marshaling document %s: %v", key, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, DocumentTTL)
			pipe.Publish(ctx, WatchChannel(key), out)
			return nil
		})
		return err
	}

	err := s.client.Watch(ctx, txf, key)
	if err == redis.TxFailedErr {
		return utils.ErrVersionConflict
	}
	return err
}

// Delete removes documents and notifies subscribers with a JSON null payload.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			pipe.Del(ctx, key)
			pipe.Publish(ctx, WatchChannel(key), []byte("null"))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error deleting documents: %v", err)
	}
	return nil
}

// Increment atomically adds delta to the numeric value at key.
func (s *Store) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	val, err := s.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		return 0, fmt.Errorf("error incrementing %s: %v", key, err)
	}
	return val, nil
}

// Now returns the store server's clock. Elapsed-time checks (turn timeout,
// invite expiry) compare against this so a skewed client wall clock cannot
// forge or dodge a deadline.
func (s *Store) Now(ctx context.Context) (time.Time, error) {
	t, err := s.client.Time(ctx).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("error reading server time: %v", err)
	}
	return t, nil
}

// ScanKeys collects every key matching pattern.
func (s *Store) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("error scanning keys %s: %v", pattern, err)
	}
	return keys, nil
}

// Expire refreshes the TTL of a key, used by presence heartbeats.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Expire(ctx, key, ttl).Err()
}

func isPattern(key string) bool {
	return strings.ContainsAny(key, "*?[")
}
