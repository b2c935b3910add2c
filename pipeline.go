package statelet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/statelet/statelet/internal/payload"
)

// Pipelines: one method per flow, each consuming a single [Producer]
// emission and settling in one of two ways. Read pipelines (FetchOne,
// FetchList, FetchKeyedList) clear the fetching flag on both outcomes,
// return failures to the caller, and never write the error channel, so a
// failed refresh leaves previously cached data visible. Mutation pipelines
// (Create, Update, UpdateMany, Delete) run through the mutation guard:
// every failure is recorded in the error channel exactly once, the saving
// flag is cleared, and the failure is returned so callers can react.
//
// Channel writes for one emission happen synchronously in the order
// documented on each method. Overlapping invocations on the same store are
// not serialized; the last writer to a channel wins.

// FetchOne runs the fetch-single pipeline: produce one payload, transform
// it, and publish it to the item channel.
//
// Write order on success: fetching=true, item, fetching=false.
// On failure only the fetching flag is touched; the error is returned.
func (s *Store[T]) FetchOne(ctx context.Context, produce Producer, opts ...CallOption[T]) (T, error) {
	var zero T

	cfg, err := s.newCall(opts)
	if err != nil {
		return zero, err
	}

	s.fetching.Set(true)
	raw, err := produce(ctx)
	if err != nil {
		return zero, s.failRead("fetch item", err)
	}

	model, err := ToModel(cfg.factory, raw)
	if err != nil {
		return zero, s.failRead("fetch item", err)
	}

	cfg.item.Set(model)
	s.fetching.Set(false)
	s.logger.Debug("fetch item completed", "id", model.EntityID())
	return model, nil
}

// FetchList runs the fetch-list pipeline: produce one array payload,
// transform each element, and publish the result to the list channel.
//
// Write order on success: fetching=true, list, fetching=false.
// On failure only the fetching flag is touched; the error is returned and
// the previously cached list stays in place.
func (s *Store[T]) FetchList(ctx context.Context, produce Producer, opts ...CallOption[T]) ([]T, error) {
	cfg, err := s.newCall(opts)
	if err != nil {
		return nil, err
	}

	s.fetching.Set(true)
	raw, err := produce(ctx)
	if err != nil {
		return nil, s.failRead("fetch list", err)
	}

	models, err := s.listModels(cfg, raw)
	if err != nil {
		return nil, s.failRead("fetch list", err)
	}

	cfg.list.Set(models)
	s.fetching.Set(false)
	s.logger.Debug("fetch list completed", "count", len(models))
	return models, nil
}

// FetchKeyedList runs the fetch-list-keyed pipeline: produce one enveloped
// response, record it in the response channel, extract the entity list
// stored under the configured key (store default, [DefaultListKey] unless
// changed, overridable per call with [WithKey]), then behave as FetchList.
//
// Write order on success: fetching=true, response, list, fetching=false.
// On failure the response snapshot may already be written (the envelope
// arrived but did not parse); only the fetching flag is touched otherwise.
func (s *Store[T]) FetchKeyedList(ctx context.Context, produce Producer, opts ...CallOption[T]) ([]T, error) {
	cfg, err := s.newCall(opts)
	if err != nil {
		return nil, err
	}

	s.fetching.Set(true)
	raw, err := produce(ctx)
	if err != nil {
		return nil, s.failRead("fetch keyed list", err)
	}

	cfg.response.Set(raw)

	keyed, err := payload.ExtractKeyed(raw, cfg.key)
	if err != nil {
		return nil, s.failRead("fetch keyed list", err)
	}

	models, err := s.listModels(cfg, keyed)
	if err != nil {
		return nil, s.failRead("fetch keyed list", err)
	}

	cfg.list.Set(models)
	s.fetching.Set(false)
	s.logger.Debug("fetch keyed list completed", "key", cfg.key, "count", len(models))
	return models, nil
}

// Create runs the create pipeline: produce the created entity's payload,
// record it, transform it, publish it to the item channel, and insert it
// into the list channel at the configured [Position] (default
// [PositionLast], overridable with [WithPosition]).
//
// Write order on success: saving=true, response, item, list, saving=false.
// Failures go through the mutation guard.
func (s *Store[T]) Create(ctx context.Context, produce Producer, opts ...CallOption[T]) (T, error) {
	var created T

	cfg, err := s.newCall(opts)
	if err != nil {
		return created, err
	}

	err = s.runGuarded(ctx, cfg, "create", produce, func(raw json.RawMessage) error {
		model, err := ToModel(cfg.factory, raw)
		if err != nil {
			return err
		}

		cfg.item.Set(model)

		list := cfg.list.Read()
		var inserted []T
		if cfg.position == PositionHead {
			inserted = append([]T{model}, list...)
		} else {
			inserted = append(append(make([]T, 0, len(list)+1), list...), model)
		}
		cfg.list.Set(inserted)

		created = model
		return nil
	})
	return created, err
}

// Update runs the update-single pipeline: produce the updated entity's
// payload, record it, transform it, publish it to the item channel, and
// upsert it into the list channel by id (position preserved when the id is
// already present).
//
// Write order on success: saving=true, response, item, list, saving=false.
// Failures go through the mutation guard.
func (s *Store[T]) Update(ctx context.Context, produce Producer, opts ...CallOption[T]) (T, error) {
	var updated T

	cfg, err := s.newCall(opts)
	if err != nil {
		return updated, err
	}

	err = s.runGuarded(ctx, cfg, "update", produce, func(raw json.RawMessage) error {
		model, err := ToModel(cfg.factory, raw)
		if err != nil {
			return err
		}

		cfg.item.Set(model)
		cfg.list.Set(UpsertByID(cfg.list.Read(), model))

		updated = model
		return nil
	})
	return updated, err
}

// UpdateMany runs the update-bulk pipeline: produce one array payload,
// record it, transform each element, and upsert the batch into the list
// channel in batch order. The item channel is not touched.
//
// Write order on success: saving=true, response, list, saving=false.
// Failures go through the mutation guard.
func (s *Store[T]) UpdateMany(ctx context.Context, produce Producer, opts ...CallOption[T]) ([]T, error) {
	var updated []T

	cfg, err := s.newCall(opts)
	if err != nil {
		return nil, err
	}

	err = s.runGuarded(ctx, cfg, "update bulk", produce, func(raw json.RawMessage) error {
		models, err := s.listModels(cfg, raw)
		if err != nil {
			return err
		}

		cfg.list.Set(UpsertManyByID(cfg.list.Read(), models))

		updated = models
		return nil
	})
	return updated, err
}

// Delete runs the delete pipeline: produce the server's deletion response,
// record it, and remove the entity with the given id from the list
// channel. Removing an id that is not in the list is a no-op on the list
// contents. The item channel is not touched.
//
// Write order on success: saving=true, response, list, saving=false.
// Failures go through the mutation guard.
func (s *Store[T]) Delete(ctx context.Context, produce Producer, id uint64, opts ...CallOption[T]) error {
	cfg, err := s.newCall(opts)
	if err != nil {
		return err
	}

	return s.runGuarded(ctx, cfg, "delete", produce, func(json.RawMessage) error {
		cfg.list.Set(RemoveByID(cfg.list.Read(), id))
		return nil
	})
}

// runGuarded is the mutation guard shared by all mutation pipelines.
//
// It sets the saving flag, runs the producer, records the raw response,
// and hands the payload to apply. Any failure, from the producer or from
// apply, is written to the error channel exactly once, clears the saving
// flag, and is returned; apply never runs after a producer failure.
func (s *Store[T]) runGuarded(ctx context.Context, cfg *callConfig[T], op string, produce Producer, apply func(json.RawMessage) error) error {
	s.saving.Set(true)

	raw, err := produce(ctx)
	if err != nil {
		return s.failMutation(cfg, op, fmt.Errorf("%s: %w", op, err))
	}

	cfg.response.Set(raw)

	if err := apply(raw); err != nil {
		return s.failMutation(cfg, op, fmt.Errorf("%s: %w", op, err))
	}

	s.saving.Set(false)
	s.logger.Debug("mutation completed", "op", op)
	return nil
}

// failMutation records err in the call's error channel, clears the saving
// flag, and returns err.
func (s *Store[T]) failMutation(cfg *callConfig[T], op string, err error) error {
	cfg.lastErr.Set(err)
	s.saving.Set(false)
	s.logger.Warn("mutation failed", "op", op, "error", err)
	return err
}

// failRead clears the fetching flag and returns err. Read failures are
// reported to the caller but never recorded in the error channel, and
// previously cached data is left intact.
func (s *Store[T]) failRead(op string, err error) error {
	s.fetching.Set(false)
	s.logger.Debug("read failed", "op", op, "error", err)
	return fmt.Errorf("%s: %w", op, err)
}

// listModels splits an array payload and transforms each element with the
// call's factory.
func (s *Store[T]) listModels(cfg *callConfig[T], raw json.RawMessage) ([]T, error) {
	raws, err := payload.SplitList(raw)
	if err != nil {
		return nil, err
	}
	return ToModels(cfg.factory, raws)
}
