package presence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Address       string `mapstructure:"address"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	PubSubChannel string `mapstructure:"pubsub_channel"`
}

// redisStore implements Store using Redis.
//
// Key layout:
//
//	presence:subject:{subject_id}  HASH {online, last_seen}
//
// Transitions are additionally published on the pub/sub channel so
// other instances (dashboards) can react without polling.
type redisStore struct {
	client  *redis.Client
	channel string
}

// NewRedisStore creates a Redis-backed presence store.
func NewRedisStore(cfg RedisConfig) (Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	channel := cfg.PubSubChannel
	if channel == "" {
		channel = "presence:updates"
	}

	return &redisStore{
		client:  client,
		channel: channel,
	}, nil
}

func subjectKey(subjectID string) string {
	return fmt.Sprintf("presence:subject:%s", subjectID)
}

func (s *redisStore) SetOnline(ctx context.Context, subjectID string) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, subjectKey(subjectID), map[string]interface{}{
		"online":    "true",
		"last_seen": time.Now().UTC().Format(time.RFC3339),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return s.publish(ctx, Change{SubjectID: subjectID, Online: true, At: time.Now().UTC()})
}

func (s *redisStore) SetOffline(ctx context.Context, subjectID string, lastSeen time.Time) error {
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, subjectKey(subjectID), map[string]interface{}{
		"online":    "false",
		"last_seen": lastSeen.UTC().Format(time.RFC3339),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return s.publish(ctx, Change{SubjectID: subjectID, Online: false, At: lastSeen.UTC()})
}

func (s *redisStore) IsOnline(ctx context.Context, subjectID string) (bool, error) {
	val, err := s.client.HGet(ctx, subjectKey(subjectID), "online").Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

func (s *redisStore) publish(ctx context.Context, ch Change) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, s.channel, string(data)).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
