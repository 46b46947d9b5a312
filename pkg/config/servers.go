package config

import (
	"fmt"
	"os"
	"strings"
)

// DefaultServersPath is where the server registry is read from.
const DefaultServersPath = "servers.yaml"

// Server is one n8n instance of the registry.
type Server struct {
	Key              string `yaml:"-"`
	Name             string `yaml:"name" validate:"required"`
	URL              string `yaml:"url" validate:"required,url"`
	APIKey           string `yaml:"api_key" validate:"required"`
	SupportsProjects bool   `yaml:"supports_projects"`
}

// BaseURL is the instance URL without a trailing slash; it also keys the ledger.
func (s *Server) BaseURL() string {
	return strings.TrimRight(s.URL, "/")
}

// Label renders the server for menus.
func (s *Server) Label() string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Key)
}

// Servers is the server registry document.
type Servers struct {
	Entries Ordered[*Server] `yaml:"servers"`
}

// LoadServers reads and validates the registry. API keys may reference
// environment variables as $VAR or ${VAR}.
func LoadServers(path string) (*Servers, error) {
	var servers Servers
	if err := load(path, &servers); err != nil {
		return nil, err
	}

	if servers.Entries.Len() == 0 {
		return nil, &Error{Op: "validate", Path: path, Err: fmt.Errorf("%w: no servers configured", ErrInvalidConfig)}
	}

	for _, key := range servers.Entries.Keys() {
		server, _ := servers.Entries.Get(key)
		if server == nil {
			return nil, &Error{Op: "validate", Path: path, Err: fmt.Errorf("%w: servers.%s is empty", ErrInvalidConfig, key)}
		}

		server.Key = key
		server.APIKey = os.ExpandEnv(server.APIKey)

		if err := validateEntry(path, "servers", key, server); err != nil {
			return nil, err
		}
	}

	return &servers, nil
}

// List returns the servers in document order.
func (s *Servers) List() []*Server {
	out := make([]*Server, 0, s.Entries.Len())

	for _, key := range s.Entries.Keys() {
		server, _ := s.Entries.Get(key)
		out = append(out, server)
	}

	return out
}

// Get looks a server up by its registry key.
func (s *Servers) Get(key string) (*Server, error) {
	server, ok := s.Entries.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrServerNotFound, key)
	}

	return server, nil
}
