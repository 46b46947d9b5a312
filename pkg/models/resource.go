package models

import (
	"fmt"
	"sort"
)

// ResourceKind names a sub-map of the resource ledger.
type ResourceKind string

const (
	ResourceWorkflows   ResourceKind = "workflows"
	ResourceCredentials ResourceKind = "credentials"
	ResourceProjects    ResourceKind = "projects"
)

// ResourceKinds lists every ledger sub-map in cleanup order.
var ResourceKinds = []ResourceKind{ResourceWorkflows, ResourceCredentials, ResourceProjects}

// Valid reports whether k is one of the ledger sub-maps.
func (k ResourceKind) Valid() bool {
	switch k {
	case ResourceWorkflows, ResourceCredentials, ResourceProjects:
		return true
	default:
		return false
	}
}

// ParseResourceKind accepts both plural and singular spellings.
func ParseResourceKind(value string) (ResourceKind, error) {
	switch value {
	case "workflows", "workflow":
		return ResourceWorkflows, nil
	case "credentials", "credential":
		return ResourceCredentials, nil
	case "projects", "project":
		return ResourceProjects, nil
	default:
		return "", fmt.Errorf("unknown resource kind %q", value)
	}
}

// ResourceSet is the ledger entry of one instance: remote id to display name per kind.
type ResourceSet struct {
	Workflows   map[string]string `json:"workflows"`
	Credentials map[string]string `json:"credentials"`
	Projects    map[string]string `json:"projects"`
}

// NewResourceSet returns a set with every sub-map allocated.
func NewResourceSet() *ResourceSet {
	return &ResourceSet{
		Workflows:   map[string]string{},
		Credentials: map[string]string{},
		Projects:    map[string]string{},
	}
}

// Of returns the sub-map for kind, allocating it when missing.
func (s *ResourceSet) Of(kind ResourceKind) map[string]string {
	switch kind {
	case ResourceWorkflows:
		if s.Workflows == nil {
			s.Workflows = map[string]string{}
		}

		return s.Workflows
	case ResourceCredentials:
		if s.Credentials == nil {
			s.Credentials = map[string]string{}
		}

		return s.Credentials
	case ResourceProjects:
		if s.Projects == nil {
			s.Projects = map[string]string{}
		}

		return s.Projects
	default:
		return nil
	}
}

// Empty reports whether nothing is tracked.
func (s *ResourceSet) Empty() bool {
	return len(s.Workflows) == 0 && len(s.Credentials) == 0 && len(s.Projects) == 0
}

// TrackedResource is one ledger row.
type TrackedResource struct {
	Kind ResourceKind
	ID   string
	Name string
}

// Sorted returns the resources of kind ordered by name, then id.
func (s *ResourceSet) Sorted(kind ResourceKind) []TrackedResource {
	entries := s.Of(kind)

	out := make([]TrackedResource, 0, len(entries))
	for id, name := range entries {
		out = append(out, TrackedResource{Kind: kind, ID: id, Name: name})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}

		return out[i].ID < out[j].ID
	})

	return out
}
