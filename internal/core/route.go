package core

import (
	"errors"
	"fmt"
	"strings"
)

// Method is an HTTP method a panel can issue.
type Method string

const (
	MethodGET  Method = "GET"
	MethodPOST Method = "POST"
	MethodPUT  Method = "PUT"
)

// Methods lists every supported method in tab order.
var Methods = []Method{MethodGET, MethodPOST, MethodPUT}

// ErrInvalidRoute is returned when a route configuration cannot drive a panel.
var ErrInvalidRoute = errors.New("invalid route")

// ParseMethod parses a method name case-insensitively.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported method %q", s)
}

// HasBody reports whether requests with this method carry the payload.
func (m Method) HasBody() bool {
	return m != MethodGET
}

func (m Method) String() string {
	return string(m)
}

// RouteConfig is the declarative description of one endpoint panel.
// It is supplied by the host and never mutated by the panel.
type RouteConfig struct {
	DisplayName        string   `yaml:"display_name" json:"display_name"`
	RouteName          string   `yaml:"route" json:"route"`
	AllowedMethods     []Method `yaml:"methods" json:"methods"`
	DefaultPayloads    []any    `yaml:"payloads,omitempty" json:"payloads,omitempty"`
	PresetLabels       []string `yaml:"preset_labels,omitempty" json:"preset_labels,omitempty"`
	RequiresResourceID bool     `yaml:"requires_resource_id,omitempty" json:"requires_resource_id,omitempty"`
}

// Validate checks the route can back a panel.
func (r RouteConfig) Validate() error {
	if r.RouteName == "" {
		return fmt.Errorf("%w: route name cannot be empty", ErrInvalidRoute)
	}
	if len(r.AllowedMethods) == 0 {
		return fmt.Errorf("%w: %s: at least one method is required", ErrInvalidRoute, r.RouteName)
	}
	seen := make(map[Method]bool, len(r.AllowedMethods))
	for _, m := range r.AllowedMethods {
		parsed, err := ParseMethod(string(m))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidRoute, r.RouteName, err)
		}
		if seen[parsed] {
			return fmt.Errorf("%w: %s: duplicate method %s", ErrInvalidRoute, r.RouteName, parsed)
		}
		seen[parsed] = true
		// Methods are compared and sent verbatim, so only canonical names are accepted.
		if parsed != m {
			return fmt.Errorf("%w: %s: method %q must be written as %s", ErrInvalidRoute, r.RouteName, string(m), parsed)
		}
	}
	return nil
}

// Allows reports whether m is one of the route's methods.
func (r RouteConfig) Allows(m Method) bool {
	for _, allowed := range r.AllowedMethods {
		if allowed == m {
			return true
		}
	}
	return false
}

// Title returns the display name, falling back to the route name.
func (r RouteConfig) Title() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.RouteName
}

// HasPresets reports whether the route offers preset buttons.
// A single payload is only the initial value, not a choice.
func (r RouteConfig) HasPresets() bool {
	return len(r.DefaultPayloads) > 1
}

// PresetLabel returns the button label for preset i.
func (r RouteConfig) PresetLabel(i int) string {
	if i >= 0 && i < len(r.PresetLabels) && r.PresetLabels[i] != "" {
		return r.PresetLabels[i]
	}
	return fmt.Sprintf("Preset %d", i+1)
}
