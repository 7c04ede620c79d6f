package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kycgate/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache key prefixes
const (
	credentialKeyPrefix   = "credential:"
	verificationKeyPrefix = "verification:"
)

// ErrCacheMiss is returned when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	return s.SetWithTTL(ctx, key, value, s.ttl)
}

func (s *CacheService) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	return json.Unmarshal([]byte(data), dest)
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

// Credential caching

func (s *CacheService) GetCredential(ctx context.Context, owner string) (*models.Credential, error) {
	var credential models.Credential
	if err := s.Get(ctx, credentialKey(owner), &credential); err != nil {
		return nil, err
	}
	return &credential, nil
}

func (s *CacheService) SetCredential(ctx context.Context, credential *models.Credential) error {
	return s.SetWithTTL(ctx, credentialKey(credential.OwnerAddress), credential, s.ttl)
}

func (s *CacheService) InvalidateCredential(ctx context.Context, owner string) error {
	return s.Delete(ctx, credentialKey(owner))
}

// Verification status caching

func (s *CacheService) GetVerificationStatus(ctx context.Context, user string) (*models.VerificationStatus, error) {
	var status models.VerificationStatus
	if err := s.Get(ctx, verificationKey(user), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (s *CacheService) SetVerificationStatus(ctx context.Context, user string, status *models.VerificationStatus) error {
	return s.SetWithTTL(ctx, verificationKey(user), status, s.ttl)
}

func (s *CacheService) InvalidateVerificationStatus(ctx context.Context, user string) error {
	return s.Delete(ctx, verificationKey(user))
}

func (s *CacheService) FlushAll(ctx context.Context) error {
	return s.client.FlushAll(ctx).Err()
}

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *CacheService) Close() error {
	return s.client.Close()
}

func credentialKey(owner string) string {
	return credentialKeyPrefix + owner
}

func verificationKey(user string) string {
	return verificationKeyPrefix + user
}
