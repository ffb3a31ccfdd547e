package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"onboarding/internal/application/models"
	id "onboarding/pkg/domain"
	"onboarding/pkg/platform/sentinel"
)

const customerKeyPrefix = "customer:"

// RedisStore keeps customers as JSON documents under customer:<id>.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func customerKey(customerID id.CustomerID) string {
	return customerKeyPrefix + customerID.String()
}

// Create uses SETNX so two concurrent registrations of the same customer
// cannot overwrite each other.
func (s *RedisStore) Create(ctx context.Context, customer *models.Customer) error {
	payload, err := json.Marshal(customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	ok, err := s.client.SetNX(ctx, customerKey(customer.ID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store customer: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, customerID id.CustomerID) (*models.Customer, error) {
	payload, err := s.client.Get(ctx, customerKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load customer: %w", err)
	}
	var c models.Customer
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	return &c, nil
}

// SetActive rewrites the active flag while the key is watched, retrying
// once if another writer got there first.
func (s *RedisStore) SetActive(ctx context.Context, customerID id.CustomerID, active bool) error {
	key := customerKey(customerID)
	update := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return err
		}
		var c models.Customer
		if err := json.Unmarshal(payload, &c); err != nil {
			return fmt.Errorf("unmarshal customer: %w", err)
		}
		c.Active = active
		updated, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal customer: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}
	for attempt := 0; attempt < 2; attempt++ {
		err := s.client.Watch(ctx, update, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("set customer active: %w", redis.TxFailedErr)
}
