package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/statelet/statelet"
)

func parseForBuild(t *testing.T, yaml string) *Config {
	t.Helper()
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return cfg
}

func TestBuildClient(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	cfg := parseForBuild(t, `
base_url: `+server.URL+`
headers:
  Authorization: Bearer token
resources:
  - name: users
    path: /users
`)

	client, err := BuildClient(cfg, nil)
	if err != nil {
		t.Fatalf("BuildClient() error = %v", err)
	}

	if _, err := client.Get("/users", nil)(context.Background()); err != nil {
		t.Fatalf("producer error = %v", err)
	}
	if gotAuth != "Bearer token" {
		t.Errorf("Authorization = %q, want configured header", gotAuth)
	}
}

func TestBuildClient_InvalidBaseURL(t *testing.T) {
	cfg := &Config{BaseURL: ""}
	if _, err := BuildClient(cfg, nil); err == nil {
		t.Error("expected error for empty base URL, got nil")
	}
}

func TestBuildResources(t *testing.T) {
	cfg := parseForBuild(t, `
base_url: http://localhost:9999
list_key: data

resources:
  - name: users
    path: /users
  - name: tasks
    path: /tasks
    list_key: data.items
    insert: head
`)

	client, err := BuildClient(cfg, nil)
	if err != nil {
		t.Fatalf("BuildClient() error = %v", err)
	}

	resources, err := BuildResources(cfg, client)
	if err != nil {
		t.Fatalf("BuildResources() error = %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("len(resources) = %d, want 2", len(resources))
	}

	users := resources["users"]
	if users.ListKey() != "data" {
		t.Errorf("users list key = %q, want global fallback %q", users.ListKey(), "data")
	}
	if users.InsertPosition() != statelet.PositionLast {
		t.Errorf("users insert = %v, want default last", users.InsertPosition())
	}

	tasks := resources["tasks"]
	if tasks.ListKey() != "data.items" {
		t.Errorf("tasks list key = %q, want own override", tasks.ListKey())
	}
	if tasks.InsertPosition() != statelet.PositionHead {
		t.Errorf("tasks insert = %v, want head", tasks.InsertPosition())
	}
}

func TestBuildResources_InvalidPath(t *testing.T) {
	cfg := parseForBuild(t, `
base_url: http://localhost:9999
resources:
  - name: users
    path: /users
`)
	cfg.Resources[0].Path = ""

	client, err := BuildClient(cfg, nil)
	if err != nil {
		t.Fatalf("BuildClient() error = %v", err)
	}

	_, err = BuildResources(cfg, client)
	if err == nil {
		t.Fatal("expected error for empty path, got nil")
	}
	if !strings.Contains(err.Error(), `resource "users"`) {
		t.Errorf("error = %q, want it to name the resource", err)
	}
}
