package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SendUserRegistrationEmail is enqueued after a user registers. Args: email, username.
const SendUserRegistrationEmail = "send_user_registration_email"

// Envelope is the JSON document stored on the queue list.
type Envelope struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Args       json.RawMessage `json:"args"`
	Attempt    int             `json:"attempt"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// NewEnvelope encodes args as a JSON array and stamps a fresh task id.
func NewEnvelope(name string, now time.Time, args ...any) (Envelope, error) {
	if name == "" {
		return Envelope{}, errors.New("task name is required")
	}
	if args == nil {
		args = []any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode task args: %w", err)
	}
	return Envelope{
		ID:         uuid.New(),
		Name:       name,
		Args:       raw,
		Attempt:    1,
		EnqueuedAt: now.UTC(),
	}, nil
}

// DecodeEnvelope parses a queue entry.
func DecodeEnvelope(raw string) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Envelope{}, fmt.Errorf("decode task envelope: %w", err)
	}
	if env.ID == uuid.Nil || env.Name == "" {
		return Envelope{}, errors.New("task envelope missing id or name")
	}
	return env, nil
}

// StringArgs decodes the args array into strings, requiring exactly n entries.
func (e Envelope) StringArgs(n int) ([]string, error) {
	var out []string
	if err := json.Unmarshal(e.Args, &out); err != nil {
		return nil, fmt.Errorf("task %s args: %w", e.Name, err)
	}
	if len(out) != n {
		return nil, fmt.Errorf("task %s expects %d args, got %d", e.Name, n, len(out))
	}
	return out, nil
}

func (e Envelope) encode() (string, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode task envelope: %w", err)
	}
	return string(raw), nil
}
