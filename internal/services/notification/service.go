// Package notification delivers short user-facing messages. Delivery is
// best effort: callers log failures and never let them affect the operation
// that triggered the message.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NotificationsChannel is the Redis pub/sub channel messages are published on.
const NotificationsChannel = "medipay.notifications"

// Notifier sends a message to a user (patient, or a hospital by its id).
type Notifier interface {
	Notify(ctx context.Context, userID, message string) error
}

// Message is the published payload.
type Message struct {
	UserID    string    `json:"user_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RedisPublisher publishes messages for the delivery workers to fan out.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, channel: NotificationsChannel}
}

func (p *RedisPublisher) Notify(ctx context.Context, userID, message string) error {
	payload, err := json.Marshal(Message{UserID: userID, Message: message, Timestamp: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	return nil
}

// LogNotifier only writes the message to the log; used when Redis is not configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, userID, message string) error {
	n.log.Info().Str("user_id", userID).Str("message", message).Msg("notification")
	return nil
}

// Async hands each message to a goroutine so a slow notifier cannot hold up
// the caller. Errors are logged.
type Async struct {
	next    Notifier
	log     zerolog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(next Notifier, log zerolog.Logger, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{next: next, log: log, timeout: timeout}
}

func (a *Async) Notify(_ context.Context, userID, message string) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		// Detached from the request context, which is usually done by now.
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.next.Notify(ctx, userID, message); err != nil {
			a.log.Warn().Err(err).Str("user_id", userID).Msg("notification delivery failed")
		}
	}()
	return nil
}

// Wait blocks until in-flight deliveries finish.
func (a *Async) Wait() {
	a.wg.Wait()
}
