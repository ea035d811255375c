package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis est le cache partagé entre les instances du serveur.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// GetJSON décode la valeur de key dans v. ok vaut false si la clé est absente.
func (r *Redis) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: lecture %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		// entrée corrompue : traitée comme absente
		r.client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

func (r *Redis) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("cache: écriture %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

// Hit incrémente le compteur de key et lui donne la durée de vie window
// au premier passage. Retourne le nombre d'appels dans la fenêtre.
func (r *Redis) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}
