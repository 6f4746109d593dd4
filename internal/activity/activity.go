// Package activity implements the tenant-scoped append-only activity
// log pattern: immutable event payloads serialized to JSON, tagged with
// an event-type discriminator and a payload revision, and decoded back
// into presentation items through a (type, revision) registry.
package activity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrDecode marks failures to render a stored log row, either because
// no decoder is registered for its (type, revision) pair or because the
// payload does not parse. Callers can match it with errors.Is.
var ErrDecode = errors.New("activity decode failed")

// Item is one decoded activity history row ready for presentation
type Item struct {
	Date     time.Time `json:"date"`
	FullName string    `json:"full_name"`
	Message  string    `json:"message"`
}

// Page is one page of decoded activity history, newest first
type Page struct {
	Count uint   `json:"count"`
	Items []Item `json:"items"`
}

// Decoder turns a serialized event payload back into an Item
type Decoder func(raw string) (Item, error)

type key struct {
	eventType int
	revision  int64
}

// Registry maps (event type, revision) pairs to decoders. Decoders are
// additive: once a pair has shipped its decoder must keep reading the
// rows already written with it.
type Registry struct {
	decoders map[key]Decoder
}

// NewRegistry creates an empty decoder registry
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[key]Decoder)}
}

// Register adds a decoder for an (event type, revision) pair
func (r *Registry) Register(eventType int, revision int64, d Decoder) *Registry {
	r.decoders[key{eventType, revision}] = d
	return r
}

// Decode selects the decoder by the pair stored alongside the row and
// runs it. Rows written by unknown pairs cannot be rendered.
func (r *Registry) Decode(eventType int, revision int64, raw string) (Item, error) {
	d, ok := r.decoders[key{eventType, revision}]
	if !ok {
		return Item{}, fmt.Errorf("%w: no decoder registered for event type %d revision %d", ErrDecode, eventType, revision)
	}
	item, err := d(raw)
	if err != nil {
		return Item{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return item, nil
}

// Encode serializes an event payload to its stored JSON form.
// A failure here must abort the enclosing business operation.
func Encode(payload interface{}) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to serialize activity event: %w", err)
	}
	return string(b), nil
}
