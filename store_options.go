package statelet

import (
	"encoding/json"
	"errors"
	"log/slog"
)

var errNilFactory = errors.New("factory is required")

// storeConfig holds mutable state during Store construction.
type storeConfig[T Entity] struct {
	listKey  string
	logger   *slog.Logger
	response *Channel[json.RawMessage]
	lastErr  *Channel[error]
}

// StoreOption configures a [Store] during construction via [NewStore].
//
// Options return an error if validation fails. Built-in options:
// [WithListKey], [WithLogger], [WithResponseChannel], [WithErrorChannel].
type StoreOption[T Entity] func(*storeConfig[T]) error

// WithListKey sets the envelope field keyed-list fetches extract from,
// replacing [DefaultListKey]. Dot notation navigates nested objects
// ("data.results").
//
// Returns an error if key is empty.
func WithListKey[T Entity](key string) StoreOption[T] {
	return func(cfg *storeConfig[T]) error {
		if key == "" {
			return errors.New("list key cannot be empty")
		}
		cfg.listKey = key
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the store.
// If not specified, [slog.Default] is used.
//
// Returns an error if the logger is nil.
func WithLogger[T Entity](logger *slog.Logger) StoreOption[T] {
	return func(cfg *storeConfig[T]) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithResponseChannel makes the store record raw response snapshots into
// ch instead of a private channel. Passing the same channel to several
// stores yields one diagnostic feed across entity types.
//
// Returns an error if ch is nil.
func WithResponseChannel[T Entity](ch *Channel[json.RawMessage]) StoreOption[T] {
	return func(cfg *storeConfig[T]) error {
		if ch == nil {
			return errors.New("response channel cannot be nil")
		}
		cfg.response = ch
		return nil
	}
}

// WithErrorChannel makes the store record mutation errors into ch instead
// of a private channel. Passing the same channel to several stores yields
// one error feed across entity types.
//
// Returns an error if ch is nil.
func WithErrorChannel[T Entity](ch *Channel[error]) StoreOption[T] {
	return func(cfg *storeConfig[T]) error {
		if ch == nil {
			return errors.New("error channel cannot be nil")
		}
		cfg.lastErr = ch
		return nil
	}
}
