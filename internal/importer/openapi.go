package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/artpar/querybench/internal/core"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// maxSampleDepth bounds payload generation for recursive schemas.
const maxSampleDepth = 6

// OpenAPIImporter converts OpenAPI 3.x documents into route tables.
type OpenAPIImporter struct{}

// NewOpenAPIImporter creates a new OpenAPI importer.
func NewOpenAPIImporter() *OpenAPIImporter {
	return &OpenAPIImporter{}
}

func (o *OpenAPIImporter) Name() string {
	return "OpenAPI 3.x"
}

func (o *OpenAPIImporter) FileExtensions() []string {
	return []string{".yaml", ".yml", ".json"}
}

// DetectFormat reports whether content declares an OpenAPI 3 version.
func (o *OpenAPIImporter) DetectFormat(content []byte) bool {
	var check struct {
		OpenAPI string `json:"openapi" yaml:"openapi"`
	}
	if err := json.Unmarshal(content, &check); err == nil {
		return strings.HasPrefix(check.OpenAPI, "3.")
	}
	if err := yaml.Unmarshal(content, &check); err == nil {
		return strings.HasPrefix(check.OpenAPI, "3.")
	}
	return false
}

// Import loads the document and groups its GET, POST and PUT operations
// into routes. A path ending in a parameter, such as /order/{id}, becomes
// route /order/ with a resource id. Paths with parameters elsewhere are
// skipped.
func (o *OpenAPIImporter) Import(ctx context.Context, content []byte) (*Result, error) {
	if !o.DetectFormat(content) {
		return nil, fmt.Errorf("%w: expected an OpenAPI 3.x document", ErrUnsupportedVersion)
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseError, err)
	}

	result := &Result{}
	if doc.Info != nil {
		result.Title = doc.Info.Title
	}
	if doc.Paths == nil {
		return nil, ErrNoRoutes
	}

	byRoute := make(map[string]*core.RouteConfig)
	var order []string

	for _, path := range doc.Paths.InMatchingOrder() {
		item := doc.Paths.Value(path)
		if item == nil {
			continue
		}
		ops := operations(item)
		if len(ops) == 0 {
			continue
		}

		routeName, requiresID, ok := routeFor(path)
		if !ok {
			for _, op := range ops {
				result.Skipped = append(result.Skipped, op.method.String()+" "+path)
			}
			continue
		}

		route, exists := byRoute[routeName]
		if !exists {
			route = &core.RouteConfig{
				DisplayName:        path,
				RouteName:          routeName,
				RequiresResourceID: requiresID,
			}
			byRoute[routeName] = route
			order = append(order, routeName)
		}

		for _, op := range ops {
			if route.Allows(op.method) {
				result.Skipped = append(result.Skipped, op.method.String()+" "+path)
				continue
			}
			route.AllowedMethods = append(route.AllowedMethods, op.method)
			if op.method.HasBody() {
				addPresets(route, op.operation)
			}
		}
	}

	sort.Strings(order)
	for _, name := range order {
		route := byRoute[name]
		sort.SliceStable(route.AllowedMethods, func(i, j int) bool {
			return methodRank(route.AllowedMethods[i]) < methodRank(route.AllowedMethods[j])
		})
		result.Routes = append(result.Routes, *route)
	}

	if len(result.Routes) == 0 {
		return nil, ErrNoRoutes
	}
	return result, nil
}

// FromOpenAPI converts an OpenAPI 3.x document into routes.
func FromOpenAPI(ctx context.Context, content []byte) ([]core.RouteConfig, error) {
	result, err := NewOpenAPIImporter().Import(ctx, content)
	if err != nil {
		return nil, err
	}
	return result.Routes, nil
}

type methodOperation struct {
	method    core.Method
	operation *openapi3.Operation
}

func operations(item *openapi3.PathItem) []methodOperation {
	var ops []methodOperation
	for _, candidate := range []methodOperation{
		{core.MethodGET, item.Get},
		{core.MethodPOST, item.Post},
		{core.MethodPUT, item.Put},
	} {
		if candidate.operation != nil {
			ops = append(ops, candidate)
		}
	}
	return ops
}

func methodRank(m core.Method) int {
	for i, known := range core.Methods {
		if known == m {
			return i
		}
	}
	return len(core.Methods)
}

// routeFor maps an OpenAPI path to a route name. Only a single trailing
// parameter can be filled from the resource id field.
func routeFor(path string) (name string, requiresID bool, ok bool) {
	idx := strings.LastIndex(path, "/")
	last := path[idx+1:]
	prefix := path[:idx+1]

	if strings.HasPrefix(last, "{") && strings.HasSuffix(last, "}") {
		if strings.Contains(prefix, "{") {
			return "", false, false
		}
		return prefix, true, true
	}
	if strings.Contains(path, "{") {
		return "", false, false
	}
	return path, false, true
}

// addPresets appends the operation's JSON request examples as presets.
// Without examples a skeleton is built from the schema.
func addPresets(route *core.RouteConfig, op *openapi3.Operation) {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return
	}
	mt := op.RequestBody.Value.Content.Get("application/json")
	if mt == nil {
		return
	}

	add := func(label string, v any) {
		normalized, err := normalize(v)
		if err != nil {
			return
		}
		route.DefaultPayloads = append(route.DefaultPayloads, normalized)
		route.PresetLabels = append(route.PresetLabels, label)
	}

	switch {
	case len(mt.Examples) > 0:
		names := make([]string, 0, len(mt.Examples))
		for name := range mt.Examples {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			ex := mt.Examples[name]
			if ex == nil || ex.Value == nil {
				continue
			}
			label := ex.Value.Summary
			if label == "" {
				label = name
			}
			add(label, ex.Value.Value)
		}
	case mt.Example != nil:
		add(summaryOr(op, "Example"), mt.Example)
	case mt.Schema != nil:
		add(summaryOr(op, "Sample"), sample(mt.Schema, 0))
	}
}

func summaryOr(op *openapi3.Operation, fallback string) string {
	if s := strings.TrimSpace(op.Summary); s != "" {
		return s
	}
	return fallback
}

// normalize round-trips v through encoding/json so numbers and objects
// take the shapes the panel works with.
func normalize(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// sample builds a placeholder value from a schema, preferring declared
// examples, defaults and enums.
func sample(ref *openapi3.SchemaRef, depth int) any {
	if ref == nil || ref.Value == nil || depth > maxSampleDepth {
		return nil
	}
	s := ref.Value

	switch {
	case s.Example != nil:
		return s.Example
	case s.Default != nil:
		return s.Default
	case len(s.Enum) > 0:
		return s.Enum[0]
	}

	if len(s.AllOf) > 0 {
		merged := map[string]any{}
		for _, part := range s.AllOf {
			if m, ok := sample(part, depth+1).(map[string]any); ok {
				for k, v := range m {
					merged[k] = v
				}
			}
		}
		return merged
	}
	if len(s.OneOf) > 0 {
		return sample(s.OneOf[0], depth+1)
	}
	if len(s.AnyOf) > 0 {
		return sample(s.AnyOf[0], depth+1)
	}

	switch {
	case s.Type == nil:
		if len(s.Properties) > 0 {
			return sampleObject(s, depth)
		}
		return nil
	case s.Type.Is("object"):
		return sampleObject(s, depth)
	case s.Type.Is("array"):
		if item := sample(s.Items, depth+1); item != nil {
			return []any{item}
		}
		return []any{}
	case s.Type.Is("string"):
		return ""
	case s.Type.Is("integer"), s.Type.Is("number"):
		return 0
	case s.Type.Is("boolean"):
		return false
	default:
		return nil
	}
}

func sampleObject(s *openapi3.Schema, depth int) map[string]any {
	out := make(map[string]any, len(s.Properties))
	for name, prop := range s.Properties {
		out[name] = sample(prop, depth+1)
	}
	return out
}
