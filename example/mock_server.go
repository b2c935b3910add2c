package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// task is the entity served by the mock API.
type task struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// taskAPI is a minimal in-memory REST backend for the demo: list responses
// are enveloped under "results", and items support the usual CRUD verbs.
type taskAPI struct {
	mu     sync.Mutex
	nextID uint64
	tasks  []task
}

func newTaskAPI() *taskAPI {
	return &taskAPI{
		nextID: 3,
		tasks: []task{
			{ID: 1, Title: "write the demo", Done: true},
			{ID: 2, Title: "run the demo"},
		},
	}
}

// StartMockAPI serves the mock task API on addr.
// Call this in a goroutine before creating statelet producers against it.
func StartMockAPI(addr string) {
	api := newTaskAPI()

	mux := http.NewServeMux()
	mux.HandleFunc("/tasks", api.handleCollection)
	mux.HandleFunc("/tasks/", api.handleItem)

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("mock server error", "error", err)
	}
}

func (a *taskAPI) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		done := r.URL.Query().Get("done")

		a.mu.Lock()
		results := make([]task, 0, len(a.tasks))
		for _, t := range a.tasks {
			if done != "" && strconv.FormatBool(t.Done) != done {
				continue
			}
			results = append(results, t)
		}
		a.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]any{"results": results})

	case http.MethodPost:
		var t task
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a.mu.Lock()
		t.ID = a.nextID
		a.nextID++
		a.tasks = append(a.tasks, t)
		a.mu.Unlock()

		writeJSON(w, http.StatusCreated, t)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (a *taskAPI) handleItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(strings.TrimPrefix(r.URL.Path, "/tasks/"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i, t := range a.tasks {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.tasks[idx])

	case http.MethodPut:
		var t task
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		t.ID = id
		a.tasks[idx] = t
		writeJSON(w, http.StatusOK, t)

	case http.MethodDelete:
		a.tasks = append(a.tasks[:idx], a.tasks[idx+1:]...)
		writeJSON(w, http.StatusOK, map[string]uint64{"id": id})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
