package fabric

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// ErrUnavailable reports that the underlying pub/sub transport cannot be
// reached (e.g. the Redis backend is down). Callers check for it with
// errors.Is so they can tell operators "the message bus is down" instead of
// returning a generic failure.
var ErrUnavailable = errors.New("fabric: transport unavailable")

// Envelope is the unit of group delivery: a stable event name plus its
// JSON-encoded payload. Keeping the payload as raw JSON lets the Redis
// backend carry envelopes across instances without knowing event shapes.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// NewEnvelope marshals payload and wraps it under the given event name.
func NewEnvelope(event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("fabric: encode %s payload: %w", event, err)
	}
	return Envelope{Event: event, Data: data}, nil
}

// Subscriber receives envelopes broadcast to groups it has joined.
// Deliver must not block; implementations enqueue into a bounded buffer.
type Subscriber interface {
	ID() string
	Deliver(env Envelope)
}

// Fabric is a group-keyed broadcast primitive. Connections join and leave
// named groups; broadcasting to a group delivers to every subscriber joined
// at the moment of the call. There is no durable queue: joining after a
// broadcast never receives it retroactively. Broadcasting to an empty or
// unknown group is a no-op.
//
// Join is idempotent. Leave of a non-member is a no-op, never an error.
// Implementations must be safe under concurrent join/leave/broadcast.
type Fabric interface {
	Join(ctx context.Context, group string, sub Subscriber) error
	Leave(ctx context.Context, group string, sub Subscriber) error
	Broadcast(ctx context.Context, group string, env Envelope) error
	Close() error
}

var groupKeyRe = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateGroupKey restricts group keys to ASCII alphanumerics, '.', '-'
// and '_'. Group keys embed client-supplied segments (session ids, peer
// labels), so anything outside this set is rejected before it can collide
// with another tenant's key.
func ValidateGroupKey(key string) error {
	if key == "" || !groupKeyRe.MatchString(key) {
		return fmt.Errorf("fabric: invalid group key %q", key)
	}
	return nil
}
