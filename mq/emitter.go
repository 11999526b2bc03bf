// Package mq publishes domain events to Redis pub/sub for out-of-process
// consumers such as the quote mailer.
package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the default pub/sub channel.
const Channel = "tourdesk-events"

const (
	InquiryCreated = "inquiry.created"
	ContentCreated = "content.created"
	ContentUpdated = "content.updated"
	ContentDeleted = "content.deleted"
)

type Event struct {
	Type       string    `json:"type"`
	Collection string    `json:"collection,omitempty"`
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
	Payload    any       `json:"payload,omitempty"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Nop drops every event. Used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

type Redis struct {
	client  *redis.Client
	channel string
}

func NewRedis(client *redis.Client, channel string) *Redis {
	if channel == "" {
		channel = Channel
	}
	return &Redis{client: client, channel: channel}
}

func (r *Redis) Publish(ctx context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", ev.Type, err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Emit publishes ev and only logs a failure. Callers whose own write already
// succeeded use it so a broker outage never fails the request.
func Emit(ctx context.Context, p Publisher, log *zap.Logger, ev Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil && log != nil {
		log.Warn("emit failed", zap.String("type", ev.Type), zap.String("id", ev.ID), zap.Error(err))
	}
}

// Listen delivers events from channel to fn until ctx ends. Payloads that do
// not decode are logged and skipped.
func Listen(ctx context.Context, client *redis.Client, channel string, log *zap.Logger, fn func(Event)) error {
	if channel == "" {
		channel = Channel
	}
	if log == nil {
		log = zap.NewNop()
	}
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", channel, err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn("bad event payload", zap.Error(err))
				continue
			}
			fn(ev)
		}
	}
}
