package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evpower/recruit-backend/internal/config"
)

// Attachment references a file on local disk sent with a message.
type Attachment struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// Message is one queued outbound e-mail.
type Message struct {
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	Text        string       `json:"text,omitempty"`
	HTML        string       `json:"html,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	// NotBefore delays delivery until the given instant.
	NotBefore time.Time `json:"not_before,omitempty"`
	Attempts  int       `json:"attempts,omitempty"`
}

// Due reports whether the message may be sent at now.
func (m *Message) Due(now time.Time) bool {
	return m.NotBefore.IsZero() || !now.Before(m.NotBefore)
}

// Queue pushes messages onto the Redis mail queue drained by the mail worker.
type Queue struct {
	rdb *redis.Client
}

// NewQueue creates a new Queue.
func NewQueue(rdb *redis.Client) *Queue {
	return &Queue{rdb: rdb}
}

// Enqueue pushes all messages in one pipeline.
func (q *Queue) Enqueue(ctx context.Context, msgs ...*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	pipe := q.rdb.Pipeline()
	for _, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal mail: %w", err)
		}
		pipe.RPush(ctx, config.WorkerKey.MailQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enqueue mail: %w", err)
	}
	return nil
}
