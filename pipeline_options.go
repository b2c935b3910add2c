package statelet

import (
	"encoding/json"
	"errors"
	"fmt"
)

// callConfig resolves where one pipeline invocation reads and writes.
// Defaults come from the store; options override individual targets.
type callConfig[T Entity] struct {
	factory  Factory[T]
	key      string
	position Position

	item     *Channel[T]
	list     *Channel[[]T]
	response *Channel[json.RawMessage]
	lastErr  *Channel[error]
}

// CallOption adjusts a single pipeline invocation.
//
// By default every pipeline uses the store's own factory, list key, and
// channels, and creation appends at [PositionLast]. Built-in options:
// [WithFactory], [WithKey], [WithPosition], [WithItemTarget],
// [WithListTarget], [WithStoreTargets].
type CallOption[T Entity] func(*callConfig[T]) error

// newCall builds the effective configuration for one pipeline invocation.
func (s *Store[T]) newCall(opts []CallOption[T]) (*callConfig[T], error) {
	cfg := &callConfig[T]{
		factory:  s.factory,
		key:      s.listKey,
		position: PositionLast,
		item:     s.item,
		list:     s.list,
		response: s.response,
		lastErr:  s.lastErr,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// WithFactory makes this invocation transform payloads with factory
// instead of the store's default.
//
// Returns an error if factory is nil.
func WithFactory[T Entity](factory Factory[T]) CallOption[T] {
	return func(cfg *callConfig[T]) error {
		if factory == nil {
			return errNilFactory
		}
		cfg.factory = factory
		return nil
	}
}

// WithKey makes a keyed-list fetch extract the entity list from key
// instead of the store's configured list key. Dot notation navigates
// nested objects. Ignored by other pipelines.
//
// Returns an error if key is empty.
func WithKey[T Entity](key string) CallOption[T] {
	return func(cfg *callConfig[T]) error {
		if key == "" {
			return errors.New("key cannot be empty")
		}
		cfg.key = key
		return nil
	}
}

// WithPosition sets the list end a created entity is inserted at. Only the
// create pipeline consults it; the default is [PositionLast].
//
// Returns an error if pos is not a defined [Position].
func WithPosition[T Entity](pos Position) CallOption[T] {
	return func(cfg *callConfig[T]) error {
		if !pos.valid() {
			return fmt.Errorf("invalid position %q (expected %q or %q)", pos, PositionHead, PositionLast)
		}
		cfg.position = pos
		return nil
	}
}

// WithItemTarget directs this invocation's item write at ch instead of the
// store's own item channel. Use for auxiliary cells such as a "selected
// entity" view.
//
// Returns an error if ch is nil.
func WithItemTarget[T Entity](ch *Channel[T]) CallOption[T] {
	return func(cfg *callConfig[T]) error {
		if ch == nil {
			return errors.New("item target cannot be nil")
		}
		cfg.item = ch
		return nil
	}
}

// WithListTarget directs this invocation's list reads and writes at ch
// instead of the store's own list channel.
//
// Returns an error if ch is nil.
func WithListTarget[T Entity](ch *Channel[[]T]) CallOption[T] {
	return func(cfg *callConfig[T]) error {
		if ch == nil {
			return errors.New("list target cannot be nil")
		}
		cfg.list = ch
		return nil
	}
}

// WithStoreTargets directs this invocation's item, list, response, and
// error writes at another store of the same entity type. This is the
// explicit directive for cross-store cascades, e.g. a create on a
// "drafts" store that also lands in the "all documents" store's list.
//
// The in-flight flags always remain the invoked store's own, so the
// caller's loading indicators stay accurate.
//
// Returns an error if other is nil.
func WithStoreTargets[T Entity](other *Store[T]) CallOption[T] {
	return func(cfg *callConfig[T]) error {
		if other == nil {
			return errors.New("target store cannot be nil")
		}
		cfg.item = other.item
		cfg.list = other.list
		cfg.response = other.response
		cfg.lastErr = other.lastErr
		return nil
	}
}
