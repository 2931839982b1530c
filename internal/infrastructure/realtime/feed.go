package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"dealsplit/internal/domain/entity"
	"dealsplit/pkg/logger"
)

const messageChannel = "chat-messages"

// MessageFeed is the fan-out path for newly stored messages. Every
// subscriber receives every insert, regardless of which instance
// handled the write.
type MessageFeed interface {
	Publish(ctx context.Context, message *entity.Message) error
	Subscribe(ctx context.Context, handler func(*entity.Message))
	Close() error
}

type redisMessageFeed struct {
	client *redis.Client
}

func NewRedisMessageFeed(client *redis.Client) MessageFeed {
	return &redisMessageFeed{client: client}
}

func (f *redisMessageFeed) Publish(ctx context.Context, message *entity.Message) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return err
	}

	return f.client.Publish(ctx, messageChannel, payload).Err()
}

// Subscribe consumes the feed until ctx is cancelled. A dropped
// subscription is re-established with exponential backoff capped at
// 30 seconds.
func (f *redisMessageFeed) Subscribe(ctx context.Context, handler func(*entity.Message)) {
	backoff := time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		pubsub := f.client.Subscribe(ctx, messageChannel)
		ch := pubsub.Channel()

		connected := false
		for msg := range ch {
			connected = true
			backoff = time.Second

			var message entity.Message
			if err := json.Unmarshal([]byte(msg.Payload), &message); err != nil {
				logger.Warn("Dropping malformed feed payload: %v", err)
				continue
			}
			handler(&message)
		}

		pubsub.Close()
		if ctx.Err() != nil {
			return
		}

		if !connected {
			backoff *= 2
			if backoff > 30*time.Second {
				backoff = 30 * time.Second
			}
		}
		logger.Warn("Message feed subscription dropped, reconnecting in %s", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (f *redisMessageFeed) Close() error {
	return f.client.Close()
}
