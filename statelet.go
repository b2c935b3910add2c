package statelet

import (
	"encoding/json"
	"log/slog"
)

// DefaultListKey is the envelope field keyed-list fetches extract entity
// lists from unless overridden with [WithListKey] or per call with
// [WithKey].
const DefaultListKey = "results"

// Store is a reactive state cache for one entity type.
//
// A Store multiplexes six observable channels: the current item, the
// current item list, a fetching flag for in-flight reads, a saving flag
// for in-flight mutations, the last raw server response, and the last
// mutation error. The two flags are independent so consumers can show
// "loading" and "saving" indicators concurrently.
//
// State only changes through the pipeline methods (FetchOne, FetchList,
// FetchKeyedList, Create, Update, UpdateMany, Delete) and the clear
// helpers. Each pipeline invocation consumes one [Producer] emission and
// performs its channel writes synchronously, in a fixed order.
//
// The response and error channels are per-store by default; pass the same
// channels to several stores via [WithResponseChannel] and
// [WithErrorChannel] to get a single diagnostic view across entity types.
type Store[T Entity] struct {
	factory Factory[T]
	listKey string
	logger  *slog.Logger

	item     *Channel[T]
	list     *Channel[[]T]
	fetching *Channel[bool]
	saving   *Channel[bool]
	response *Channel[json.RawMessage]
	lastErr  *Channel[error]
}

// NewStore creates a [Store] for entities built by factory.
//
// The factory is required; pipelines use it for every payload conversion
// unless a call supplies [WithFactory]. Options configure the keyed-list
// extraction key, the logger, and shared diagnostic channels.
//
// Example:
//
//	users, err := statelet.NewStore(statelet.JSONFactory[User](),
//	    statelet.WithListKey("data"),
//	    statelet.WithLogger(logger),
//	)
func NewStore[T Entity](factory Factory[T], opts ...StoreOption[T]) (*Store[T], error) {
	if factory == nil {
		return nil, errNilFactory
	}

	cfg := &storeConfig[T]{
		listKey: DefaultListKey,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	response := cfg.response
	if response == nil {
		response = NewChannel[json.RawMessage](nil)
	}
	lastErr := cfg.lastErr
	if lastErr == nil {
		lastErr = NewChannel[error](nil)
	}

	var zero T
	return &Store[T]{
		factory:  factory,
		listKey:  cfg.listKey,
		logger:   logger,
		item:     NewChannel(zero),
		list:     NewChannel([]T{}),
		fetching: NewChannel(false),
		saving:   NewChannel(false),
		response: response,
		lastErr:  lastErr,
	}, nil
}

// Item returns a read-only view of the current item channel.
//
// The channel holds the zero value of T until a fetch-single, create, or
// update pipeline writes to it, and again after [Store.ClearItem].
func (s *Store[T]) Item() *View[T] {
	return NewView(s.item)
}

// List returns a read-only view of the current item list channel.
func (s *Store[T]) List() *View[[]T] {
	return NewView(s.list)
}

// Fetching returns a read-only view of the read-in-flight flag.
// It is true from read-pipeline invocation until settlement.
func (s *Store[T]) Fetching() *View[bool] {
	return NewView(s.fetching)
}

// Saving returns a read-only view of the mutation-in-flight flag.
// It is true from mutation-pipeline invocation until settlement.
func (s *Store[T]) Saving() *View[bool] {
	return NewView(s.saving)
}

// Response returns a read-only view of the last raw payload observed by a
// keyed fetch or mutation pipeline on this store. Overwritten per
// invocation, for diagnostic consumption only.
func (s *Store[T]) Response() *View[json.RawMessage] {
	return NewView(s.response)
}

// LastError returns a read-only view of the last mutation error. Read
// pipelines never write here.
func (s *Store[T]) LastError() *View[error] {
	return NewView(s.lastErr)
}

// FindInList scans the current list for an entity with the given id.
// The second return value is false when the list is empty or the id is
// absent.
func (s *Store[T]) FindInList(id uint64) (T, bool) {
	for _, item := range s.list.Read() {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// ClearItem resets the item channel to the zero value of T.
func (s *Store[T]) ClearItem() {
	var zero T
	s.item.Set(zero)
}

// ClearList resets the list channel to an empty list.
func (s *Store[T]) ClearList() {
	s.list.Set([]T{})
}
