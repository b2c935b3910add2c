// Standalone mock API for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockapi
//
// Then in another terminal:
//
//	go run ./cmd/statelet watch -c example/config.yaml -r tasks
package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

func main() {
	fmt.Println("Mock task API starting on :9876")
	fmt.Println("Tasks are added and completed randomly every few seconds")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu     sync.Mutex
		nextID = uint64(4)
		tasks  = map[uint64]map[string]any{
			1: {"id": uint64(1), "title": "seed task one", "done": false},
			2: {"id": uint64(2), "title": "seed task two", "done": false},
			3: {"id": uint64(3), "title": "seed task three", "done": true},
		}
	)

	// background churn so the watch command has something to print
	go func() {
		for {
			time.Sleep(time.Duration(3+rand.Intn(5)) * time.Second)

			mu.Lock()
			switch rand.Intn(3) {
			case 0:
				id := nextID
				nextID++
				tasks[id] = map[string]any{
					"id":    id,
					"title": "task " + strconv.FormatUint(id, 10),
					"done":  false,
				}
				slog.Info("task added", "id", id)
			case 1:
				for id, t := range tasks {
					t["done"] = true
					slog.Info("task completed", "id", id)
					break
				}
			case 2:
				for id := range tasks {
					delete(tasks, id)
					slog.Info("task removed", "id", id)
					break
				}
			}
			mu.Unlock()
		}
	}()

	http.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		results := make([]map[string]any, 0, len(tasks))
		for _, t := range tasks {
			results = append(results, t)
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]any{"results": results}); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(":9876", nil); err != nil {
		slog.Error("mock server error", "error", err)
		os.Exit(1)
	}
}
