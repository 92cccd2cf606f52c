package redis

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"

	"github.com/facturapro/sessiond/domain"
	"github.com/facturapro/sessiond/repository"
)

type sessionStore struct {
	client *redislib.Client
	key    string
}

// NewSessionStore creates a Redis-backed session slot for deployments
// that keep the slot off the local disk. No TTL is applied: the slot
// lives until Clear.
func NewSessionStore(client *redislib.Client, key string) repository.SessionStore {
	if key == "" {
		key = "sessiond:session:current"
	}
	return &sessionStore{
		client: client,
		key:    key,
	}
}

func (r *sessionStore) Save(ctx context.Context, identity *domain.Identity) error {
	if identity == nil || identity.ID == "" {
		return domain.ErrInvalidIdentity
	}

	payload, err := json.Marshal(identity)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, payload, 0).Err()
}

func (r *sessionStore) Load(ctx context.Context) (*domain.Identity, error) {
	result, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if err == redislib.Nil {
			return nil, nil
		}
		return nil, err
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(result), &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *sessionStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
