package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"

	appLog "gridcal/internal/log"
	"gridcal/internal/model"
)

// Client is the narrow redis surface the adapter needs. The production
// implementation wraps go-redis; tests use FakeClient.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Subscribe returns a channel of messages published on the given
	// channel name and a stop function releasing the subscription.
	Subscribe(ctx context.Context, channel string) (<-chan string, func())
}

type redisClient struct {
	rdb *redis.Client
}

// NewRedisClient connects a go-redis client.
func NewRedisClient(address, password string, db int) Client {
	return &redisClient{
		rdb: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
	}
}

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *redisClient) Set(ctx context.Context, key, value string) error {
	return c.rdb.Set(ctx, key, value, 0).Err()
}

func (c *redisClient) Subscribe(ctx context.Context, channel string) (<-chan string, func()) {
	sub := c.rdb.Subscribe(ctx, channel)
	out := make(chan string)
	done := make(chan struct{})

	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return out, func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}
}

// Redis reads records from a JSON document and listens for change
// notifications on a pub/sub channel. Key layout under the prefix:
//
//	<prefix>:records          JSON array of records
//	<prefix>:changed          pub/sub channel, any payload means re-read
//	<prefix>:selected_entity  selection write-back, JSON record
//	<prefix>:selected_date    selection write-back, "2006-01-02"
type Redis struct {
	client Client
	prefix string
}

func NewRedis(client Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "gridcal"
	}
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) key(suffix string) string {
	return fmt.Sprintf("%s:%s", s.prefix, suffix)
}

func (s *Redis) Subscribe(onChange func()) func() {
	ctx, cancel := context.WithCancel(context.Background())
	msgs, stop := s.client.Subscribe(ctx, s.key("changed"))

	go func() {
		for range msgs {
			onChange()
		}
	}()

	return func() {
		stop()
		cancel()
	}
}

func (s *Redis) Records(ctx context.Context) ([]model.RawRecord, error) {
	raw, err := s.client.Get(ctx, s.key("records"))
	if err != nil {
		return nil, fmt.Errorf("redis source: read records: %w", err)
	}
	if raw == "" {
		return []model.RawRecord{}, nil
	}

	var records []model.RawRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("redis source: decode records: %w", err)
	}
	appLog.Debug("redis records loaded", "count", len(records))
	return records, nil
}

func (s *Redis) SetSelectedEntity(ctx context.Context, rec model.RawRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key("selected_entity"), string(data))
}

func (s *Redis) SetSelectedDate(ctx context.Context, d model.CalendarDate) error {
	return s.client.Set(ctx, s.key("selected_date"), d.String())
}
