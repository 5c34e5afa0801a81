package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/artpar/querybench/internal/core"
	"gopkg.in/yaml.v3"
)

// ErrNoRoutes is returned when a routes file declares no routes.
var ErrNoRoutes = errors.New("no routes defined")

// RoutesFile is the on-disk route table.
type RoutesFile struct {
	Routes []core.RouteConfig `yaml:"routes"`
}

// LoadRoutes reads the routes file at path. An empty path yields the
// default shop routes.
func LoadRoutes(path string) ([]core.RouteConfig, error) {
	if path == "" {
		return DefaultRoutes(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read routes: %w", err)
	}
	routes, err := ParseRoutes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return routes, nil
}

// ParseRoutes decodes and validates a YAML route table.
func ParseRoutes(data []byte) ([]core.RouteConfig, error) {
	var file RoutesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse routes: %w", err)
	}
	if len(file.Routes) == 0 {
		return nil, ErrNoRoutes
	}

	for i := range file.Routes {
		r := &file.Routes[i]
		for j, m := range r.AllowedMethods {
			parsed, err := core.ParseMethod(string(m))
			if err != nil {
				return nil, fmt.Errorf("route %d: %w: %v", i, core.ErrInvalidRoute, err)
			}
			r.AllowedMethods[j] = parsed
		}
		for j, p := range r.DefaultPayloads {
			r.DefaultPayloads[j] = normalize(p)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
	}
	return file.Routes, nil
}

// MarshalRoutes encodes routes as a routes file.
func MarshalRoutes(routes []core.RouteConfig) ([]byte, error) {
	return yaml.Marshal(RoutesFile{Routes: routes})
}

// normalize converts YAML-decoded values into the shapes encoding/json
// produces, so payloads serialize as JSON objects.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[k] = normalize(child)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			out[fmt.Sprint(k)] = normalize(child)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = normalize(child)
		}
		return out
	case int:
		return normalizeInt(int64(t))
	case int64:
		return normalizeInt(t)
	case uint64:
		if t > maxExactInt {
			return t
		}
		return float64(t)
	default:
		return v
	}
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// normalizeInt matches encoding/json's float64 numbers where that is
// lossless. Larger integers stay int64 so they encode without rounding.
func normalizeInt(n int64) any {
	if n > maxExactInt || n < -maxExactInt {
		return n
	}
	return float64(n)
}
