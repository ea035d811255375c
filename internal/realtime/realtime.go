// Package realtime prévient les autres onglets d'un utilisateur que son panier
// a changé. Les abonnés relisent le panier, rien d'autre ne transite.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	EventUpdated = "updated"
	EventCleared = "cleared"
)

type Event struct {
	Type string `json:"type"`
	// Origin est la session qui a modifié le panier.
	Origin string `json:"origin,omitempty"`
}

type Subscription interface {
	Events() <-chan Event
	Close() error
}

type Bus interface {
	Publish(ctx context.Context, userID string, ev Event) error
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

func Channel(userID string) string {
	return "cart:" + userID
}

// =============================================
// REDIS
// =============================================

type RedisBus struct {
	client *redis.Client
	log    *logrus.Entry
}

func NewRedisBus(client *redis.Client, log *logrus.Logger) *RedisBus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RedisBus{client: client, log: log.WithField("component", "realtime")}
}

func (b *RedisBus) Publish(ctx context.Context, userID string, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, Channel(userID), data).Err()
}

func (b *RedisBus) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, Channel(userID))
	// attend la confirmation d'abonnement
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{pubsub: pubsub, events: make(chan Event, 8)}
	go func() {
		defer close(sub.events)
		for msg := range pubsub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil || ev.Type == "" {
				b.log.WithField("channel", msg.Channel).Debug("⚠️ message panier illisible ignoré")
				continue
			}
			select {
			case sub.events <- ev:
			default:
				b.log.WithField("user_id", userID).Debug("⚠️ événement panier ignoré, abonné lent")
			}
		}
	}()
	return sub, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	events chan Event
}

func (s *redisSubscription) Events() <-chan Event { return s.events }
func (s *redisSubscription) Close() error         { return s.pubsub.Close() }

// =============================================
// EN MÉMOIRE (une seule instance du serveur)
// =============================================

type LocalBus struct {
	mu   sync.Mutex
	subs map[string]map[*localSubscription]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[string]map[*localSubscription]struct{})}
}

func (b *LocalBus) Publish(ctx context.Context, userID string, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs[userID] {
		select {
		case sub.events <- ev:
		default:
		}
	}
	return nil
}

func (b *LocalBus) Subscribe(ctx context.Context, userID string) (Subscription, error) {
	sub := &localSubscription{bus: b, userID: userID, events: make(chan Event, 8)}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[userID] == nil {
		b.subs[userID] = make(map[*localSubscription]struct{})
	}
	b.subs[userID][sub] = struct{}{}
	return sub, nil
}

type localSubscription struct {
	bus    *LocalBus
	userID string
	events chan Event
	once   sync.Once
}

func (s *localSubscription) Events() <-chan Event { return s.events }

func (s *localSubscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.userID], s)
		if len(s.bus.subs[s.userID]) == 0 {
			delete(s.bus.subs, s.userID)
		}
		s.bus.mu.Unlock()
		close(s.events)
	})
	return nil
}
