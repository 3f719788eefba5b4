package core

import (
	"sort"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	ActiveRuns      []string `json:"active_runs,omitempty"`
	NotesType       string   `json:"notes_type"`
	RecordsType     string   `json:"records_type"`
	AlwaysRedistill bool     `json:"always_redistill"`
	Concurrency     int      `json:"concurrency"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]string, 0, len(s.active))
	for p := range s.active {
		active = append(active, p)
	}
	sort.Strings(active)

	return ServiceState{
		ActiveRuns:      active,
		NotesType:       componentType(s.notes),
		RecordsType:     componentType(s.records),
		AlwaysRedistill: s.alwaysRedistill,
		Concurrency:     s.concurrency,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

func componentType(v any) string {
	if v == nil {
		return "none"
	}
	// Try to get component type if the collaborator implements introspection.Component
	if comp, ok := v.(introspection.Component); ok {
		return comp.ComponentType()
	}
	return "unknown"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
