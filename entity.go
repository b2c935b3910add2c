package statelet

import (
	"context"
	"encoding/json"
	"fmt"
)

// Entity is the constraint every stored type must satisfy: a stable,
// unique, unsigned integer id. List reconciliation keys on it, so ids must
// be unique within any list written to a store.
type Entity interface {
	EntityID() uint64
}

// Factory builds a typed entity from a raw JSON payload.
//
// A Factory is supplied at store construction and used by every pipeline
// unless overridden per call with [WithFactory]. A Factory should be a pure
// function: same payload in, same model out.
type Factory[T Entity] func(raw json.RawMessage) (T, error)

// JSONFactory returns a [Factory] that unmarshals the payload directly
// into T. Suitable whenever the entity's struct tags match the wire shape.
func JSONFactory[T Entity]() Factory[T] {
	return func(raw json.RawMessage) (T, error) {
		var model T
		if err := json.Unmarshal(raw, &model); err != nil {
			return model, fmt.Errorf("decode %T: %w", model, err)
		}
		return model, nil
	}
}

// Producer asynchronously yields exactly one raw JSON payload, or fails.
//
// Producers are how stores reach the outside world: an HTTP call, a cache
// lookup, a test stub. The payload may be a single object, an array, or an
// enveloped response, depending on the pipeline consuming it. Transport,
// encoding, retries, and cancellation are entirely the producer's concern;
// the store only reacts to the returned value or error.
type Producer func(ctx context.Context) (json.RawMessage, error)

// Position selects which end of the cached list a created entity is
// inserted at.
type Position string

const (
	// PositionHead inserts the new entity at index 0.
	PositionHead Position = "head"

	// PositionLast appends the new entity. This is the default.
	PositionLast Position = "last"
)

// String returns the string representation of the position.
func (p Position) String() string {
	return string(p)
}

// valid reports whether p is one of the defined positions.
func (p Position) valid() bool {
	return p == PositionHead || p == PositionLast
}
