package store

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"
)

// Update is one change notification: the key that changed and the full new
// document (JSON null when the document was deleted).
type Update struct {
	Key     string
	Payload []byte
}

func (u Update) Deleted() bool {
	return string(u.Payload) == "null"
}

// feed is one underlying pub/sub subscription fanned out to N local
// subscribers. The store keeps a single feed per key (or pattern) no matter
// how many local observers attach to it.
type feed struct {
	pubsub interface{ Close() error }
	subs   map[int]func(Update)
}

// Subscribe attaches onChange to the change feed of keyOrPattern. A '*' in
// the key subscribes to every matching key (used for per-recipient invite
// indexes). The returned function detaches the subscriber; the underlying
// pub/sub connection is closed when the last local subscriber detaches.
//
// onChange runs on the feed's goroutine: keep it short, hand off heavy work.
func (s *Store) Subscribe(ctx context.Context, keyOrPattern string, onChange func(Update)) (func(), error) {
	channel := WatchChannel(keyOrPattern)

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.feeds[channel]
	if !ok {
		var pubsub *redis.PubSub
		if isPattern(keyOrPattern) {
			pubsub = s.client.PSubscribe(context.Background(), channel)
		} else {
			pubsub = s.client.Subscribe(context.Background(), channel)
		}
		f = &feed{pubsub: pubsub, subs: make(map[int]func(Update))}
		s.feeds[channel] = f

		ch := pubsub.Channel()
		go func() {
			for msg := range ch {
				key := msg.Channel[len("watch:"):]
				update := Update{Key: key, Payload: []byte(msg.Payload)}

				s.mu.Lock()
				fns := make([]func(Update), 0, len(f.subs))
				for _, fn := range f.subs {
					fns = append(fns, fn)
				}
				s.mu.Unlock()

				for _, fn := range fns {
					fn(update)
				}
			}
			log.Printf("[WATCH] Feed closed for %s", channel)
		}()
	}

	s.subId++
	id := s.subId
	f.subs[id] = onChange

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(f.subs, id)
		if len(f.subs) == 0 {
			f.pubsub.Close()
			delete(s.feeds, channel)
		}
	}
	return unsubscribe, nil
}
