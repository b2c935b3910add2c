// Demo: a full CRUD round trip through a statelet store backed by the
// in-process mock API (see mock_server.go).
//
// Run with:
//
//	go run ./example
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/statelet/statelet"
	"github.com/statelet/statelet/remote"
)

// Task mirrors the mock API's entity.
type Task struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// EntityID implements statelet.Entity.
func (t Task) EntityID() uint64 { return t.ID }

func main() {
	// start mock server (see mock_server.go)
	go StartMockAPI(":9876")
	time.Sleep(100 * time.Millisecond)

	client, err := remote.NewClient("http://localhost:9876",
		remote.WithTimeout(5*time.Second),
	)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	tasks, err := remote.NewResource(client, "/tasks")
	if err != nil {
		slog.Error("failed to create resource", "error", err)
		os.Exit(1)
	}

	store, err := statelet.NewStore(statelet.JSONFactory[Task]())
	if err != nil {
		slog.Error("failed to create store", "error", err)
		os.Exit(1)
	}

	// observe every list change the pipelines publish
	sub := store.List().Subscribe(func(list []Task) {
		fmt.Printf("list is now: %v\n", list)
	})
	defer sub.Cancel()

	ctx := context.Background()

	// read: populate the cached list from the enveloped collection response
	if _, err := store.FetchKeyedList(ctx, tasks.List(nil)); err != nil {
		slog.Error("fetch failed", "error", err)
		os.Exit(1)
	}

	// create: new task lands at the head of the cached list
	created, err := store.Create(ctx, tasks.Create(Task{Title: "ship it"}),
		statelet.WithPosition[Task](statelet.PositionHead),
	)
	if err != nil {
		slog.Error("create failed", "error", err)
		os.Exit(1)
	}

	// update: flip done, the cached entry is replaced in place
	created.Done = true
	if _, err := store.Update(ctx, tasks.Update(created.ID, created)); err != nil {
		slog.Error("update failed", "error", err)
		os.Exit(1)
	}

	// delete: remove it again
	if err := store.Delete(ctx, tasks.Delete(created.ID), created.ID); err != nil {
		slog.Error("delete failed", "error", err)
		os.Exit(1)
	}

	// a failing mutation is recorded on the error channel
	if err := store.Delete(ctx, tasks.Delete(9999), 9999); err != nil {
		fmt.Printf("expected failure: %v\n", err)
		fmt.Printf("last error channel: %v\n", store.LastError().Read())
	}

	if task, ok := store.FindInList(1); ok {
		fmt.Printf("task 1 is cached as: %+v\n", task)
	}
}
