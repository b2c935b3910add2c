package config

import (
	"fmt"
	"log/slog"

	"github.com/statelet/statelet"
	"github.com/statelet/statelet/remote"
)

// BuildClient converts a parsed configuration into a [remote.Client]
// sharing the configured base URL, timeout, and headers.
func BuildClient(cfg *Config, logger *slog.Logger) (*remote.Client, error) {
	opts := []remote.ClientOption{
		remote.WithTimeout(cfg.Timeout.Duration()),
	}
	if logger != nil {
		opts = append(opts, remote.WithLogger(logger))
	}
	for name, value := range cfg.Headers {
		opts = append(opts, remote.WithHeader(name, value))
	}

	client, err := remote.NewClient(cfg.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("build client: %w", err)
	}
	return client, nil
}

// BuildResources converts every declared resource into a [remote.Resource]
// served by client, keyed by resource name.
func BuildResources(cfg *Config, client *remote.Client) (map[string]*remote.Resource, error) {
	resources := make(map[string]*remote.Resource, len(cfg.Resources))
	for _, rc := range cfg.Resources {
		resource, err := buildResource(cfg, client, rc)
		if err != nil {
			return nil, err
		}
		resources[rc.Name] = resource
	}
	return resources, nil
}

// buildResource converts a single ResourceConfig to a remote.Resource.
func buildResource(cfg *Config, client *remote.Client, rc ResourceConfig) (*remote.Resource, error) {
	listKey := rc.ListKey
	if listKey == "" {
		listKey = cfg.ListKey
	}

	opts := []remote.ResourceOption{
		remote.WithListKey(listKey),
	}
	if rc.Insert != "" {
		opts = append(opts, remote.WithInsertPosition(statelet.Position(rc.Insert)))
	}

	resource, err := remote.NewResource(client, rc.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("resource %q: %w", rc.Name, err)
	}
	return resource, nil
}
