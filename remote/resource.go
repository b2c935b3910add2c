package remote

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/statelet/statelet"
)

// Resource applies REST collection conventions to one API path.
//
// A Resource with path "/tasks" produces requests shaped as:
//
//	List    GET    /tasks?{query}
//	Get     GET    /tasks/{id}
//	Create  POST   /tasks
//	Update  PUT    /tasks/{id}
//	Delete  DELETE /tasks/{id}
//
// It also carries the envelope key its list responses wrap entities in and
// the list position created entities are inserted at, so config-driven
// callers can thread both into store pipelines.
type Resource struct {
	client  *Client
	path    string
	listKey string
	insert  statelet.Position
}

// ResourceOption configures a [Resource] during construction.
type ResourceOption func(*Resource) error

// WithListKey sets the envelope key of the resource's list responses.
// Defaults to [statelet.DefaultListKey].
//
// Returns an error if key is empty.
func WithListKey(key string) ResourceOption {
	return func(r *Resource) error {
		if key == "" {
			return errors.New("list key cannot be empty")
		}
		r.listKey = key
		return nil
	}
}

// WithInsertPosition sets where created entities are inserted in cached
// lists. Defaults to [statelet.PositionLast].
//
// Returns an error if pos is not a defined position.
func WithInsertPosition(pos statelet.Position) ResourceOption {
	return func(r *Resource) error {
		if pos != statelet.PositionHead && pos != statelet.PositionLast {
			return fmt.Errorf("invalid insert position %q", pos)
		}
		r.insert = pos
		return nil
	}
}

// NewResource creates a [Resource] for path served by client.
func NewResource(client *Client, path string, opts ...ResourceOption) (*Resource, error) {
	if client == nil {
		return nil, errors.New("client is required")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("resource path is required")
	}

	r := &Resource{
		client:  client,
		path:    path,
		listKey: statelet.DefaultListKey,
		insert:  statelet.PositionLast,
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Path returns the resource's collection path.
func (r *Resource) Path() string {
	return r.path
}

// ListKey returns the envelope key of the resource's list responses.
func (r *Resource) ListKey() string {
	return r.listKey
}

// InsertPosition returns where created entities are inserted.
func (r *Resource) InsertPosition() statelet.Position {
	return r.insert
}

// List returns a producer fetching the collection, filtered by query.
// Empty query values are skipped.
func (r *Resource) List(query Query) statelet.Producer {
	return r.client.Get(r.path, query)
}

// Get returns a producer fetching one entity by id.
func (r *Resource) Get(id uint64) statelet.Producer {
	return r.client.Get(r.itemPath(id), nil)
}

// Create returns a producer creating an entity from body.
func (r *Resource) Create(body any) statelet.Producer {
	return r.client.Post(r.path, body)
}

// Update returns a producer replacing the entity with the given id.
func (r *Resource) Update(id uint64, body any) statelet.Producer {
	return r.client.Put(r.itemPath(id), body)
}

// Patch returns a producer partially updating the entity with the given id.
func (r *Resource) Patch(id uint64, body any) statelet.Producer {
	return r.client.Patch(r.itemPath(id), body)
}

// Delete returns a producer deleting the entity with the given id.
func (r *Resource) Delete(id uint64) statelet.Producer {
	return r.client.Delete(r.itemPath(id))
}

func (r *Resource) itemPath(id uint64) string {
	return strings.TrimSuffix(r.path, "/") + "/" + strconv.FormatUint(id, 10)
}
