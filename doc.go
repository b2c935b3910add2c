// Package statelet provides a reactive, in-memory entity state cache for
// REST-backed Go applications.
//
// Statelet is designed as an SDK-first library. Each [Store] caches the
// state of one entity type (the current item, the current item list,
// in-flight read and write flags, the last raw server response, and the
// last mutation error) as observable state cells ([Channel]) that
// consumers subscribe to. Named pipelines (fetch, create, update, delete)
// take a [Producer], any function that asynchronously yields one raw JSON
// payload, transform the payload into typed models, reconcile them into
// the cached list by id, and publish the result through the channels.
//
// # Quick Start
//
// Define an entity, build a store, and run pipelines against producers:
//
//	type Task struct {
//	    ID    uint64 `json:"id"`
//	    Title string `json:"title"`
//	}
//
//	func (t Task) EntityID() uint64 { return t.ID }
//
//	tasks, err := statelet.NewStore(statelet.JSONFactory[Task]())
//	if err != nil {
//	    slog.Error("failed to create store", "error", err)
//	    os.Exit(1)
//	}
//
//	sub := tasks.List().Subscribe(func(list []Task) {
//	    render(list)
//	})
//	defer sub.Cancel()
//
//	_, err = tasks.FetchKeyedList(ctx, client.Get("/tasks", nil))
//
// # Producers
//
// A [Producer] is the only contract between a store and the outside world:
// a function that emits exactly one raw JSON payload (an object, an array,
// or an enveloped response) or fails with an error. The remote subpackage
// builds producers for conventional REST APIs, but any function with the
// right shape works: the store places no constraint on transport,
// encoding, or retry policy.
//
// # Pipelines
//
// Read pipelines ([Store.FetchOne], [Store.FetchList], [Store.FetchKeyedList])
// are best-effort refreshes: a failure clears the fetching flag, leaves the
// previously cached data intact, and is returned to the caller without
// touching the shared error channel. Mutation pipelines ([Store.Create],
// [Store.Update], [Store.UpdateMany], [Store.Delete]) record every failure
// in the store's error channel, clear the saving flag, and return the error
// so calling code can react.
//
// Per-call options redirect pipeline output at auxiliary or related-entity
// channels ([WithItemTarget], [WithListTarget], [WithStoreTargets]), swap
// the payload factory ([WithFactory]), or adjust the keyed-list extraction
// key and list insertion position ([WithKey], [WithPosition]).
//
// # Concurrency
//
// Channels are safe for concurrent use, and all pipeline writes for a
// single producer emission happen synchronously in a documented order.
// Overlapping pipelines on the same store are not serialized: the last
// writer to a channel wins. Callers that need mutual exclusion should gate
// mutations on the saving flag. Cancellation belongs to the producer via
// its context; the store itself never cancels.
//
// # Architecture
//
// The repository consists of the root package plus:
//
//   - remote: HTTP producer builders (base-URL client, REST resources)
//   - config: YAML configuration, resource builders, hot-reload watcher
//   - internal/payload: raw JSON envelope and list handling
//
// The config-driven CLI in cmd/statelet is an alternative to the
// programmatic SDK approach.
package statelet
