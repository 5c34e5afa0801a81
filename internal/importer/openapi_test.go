package importer

import (
	"context"
	"testing"

	"github.com/artpar/querybench/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopSpec = `
openapi: "3.0.3"
info:
  title: Shop API
  version: "1.0"
paths:
  /:
    get:
      summary: List products
      responses:
        "200":
          description: ok
  /order:
    post:
      summary: Create order
      requestBody:
        content:
          application/json:
            example:
              products:
                - id: 1
                  quantity: 2
      responses:
        "302":
          description: created
  /order/{id}:
    get:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "200":
          description: ok
    put:
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      requestBody:
        content:
          application/json:
            examples:
              a_shipping:
                summary: Shipping Info
                value:
                  order:
                    email: jgnault@uqac.ca
              b_card:
                summary: Valid Billing Info
                value:
                  credit_card:
                    number: "4242 4242 4242 4242"
      responses:
        "200":
          description: ok
    delete:
      responses:
        "204":
          description: gone
  /users/{id}/orders:
    get:
      responses:
        "200":
          description: ok
`

func TestOpenAPIImporter_DetectFormat(t *testing.T) {
	imp := NewOpenAPIImporter()

	assert.True(t, imp.DetectFormat([]byte(`{"openapi": "3.0.0", "info": {"title": "T", "version": "1"}}`)))
	assert.True(t, imp.DetectFormat([]byte("openapi: \"3.1.0\"\ninfo:\n  title: T\n")))
	assert.False(t, imp.DetectFormat([]byte(`{"swagger": "2.0"}`)))
	assert.False(t, imp.DetectFormat([]byte(`not valid json or yaml: [`)))
	assert.Equal(t, "OpenAPI 3.x", imp.Name())
	assert.Contains(t, imp.FileExtensions(), ".yaml")
}

func TestOpenAPIImporter_Import(t *testing.T) {
	result, err := NewOpenAPIImporter().Import(context.Background(), []byte(shopSpec))
	require.NoError(t, err)

	assert.Equal(t, "Shop API", result.Title)
	require.Len(t, result.Routes, 3)

	root, order, orderID := result.Routes[0], result.Routes[1], result.Routes[2]

	assert.Equal(t, "/", root.RouteName)
	assert.Equal(t, []core.Method{core.MethodGET}, root.AllowedMethods)
	assert.Empty(t, root.DefaultPayloads)

	assert.Equal(t, "/order", order.RouteName)
	assert.Equal(t, []core.Method{core.MethodPOST}, order.AllowedMethods)
	require.Len(t, order.DefaultPayloads, 1)
	assert.Equal(t, map[string]any{
		"products": []any{map[string]any{"id": float64(1), "quantity": float64(2)}},
	}, order.DefaultPayloads[0])
	assert.Equal(t, []string{"Create order"}, order.PresetLabels)

	assert.Equal(t, "/order/{id}", orderID.DisplayName)
	assert.Equal(t, "/order/", orderID.RouteName)
	assert.True(t, orderID.RequiresResourceID)
	assert.Equal(t, []core.Method{core.MethodGET, core.MethodPUT}, orderID.AllowedMethods)
	require.Len(t, orderID.DefaultPayloads, 2)
	assert.Equal(t, []string{"Shipping Info", "Valid Billing Info"}, orderID.PresetLabels)
	assert.True(t, orderID.HasPresets())

	for _, r := range result.Routes {
		assert.NoError(t, r.Validate())
	}

	assert.Contains(t, result.Skipped, "GET /users/{id}/orders")
}

func TestOpenAPIImporter_SchemaSample(t *testing.T) {
	spec := `{
		"openapi": "3.0.0",
		"info": {"title": "Sample", "version": "1"},
		"paths": {
			"/order": {
				"post": {
					"requestBody": {"content": {"application/json": {"schema": {
						"type": "object",
						"properties": {
							"product": {
								"type": "object",
								"properties": {
									"id": {"type": "integer", "example": 1},
									"quantity": {"type": "integer"}
								}
							},
							"note": {"type": "string", "default": "fragile"},
							"tags": {"type": "array", "items": {"type": "string", "enum": ["gift", "rush"]}},
							"paid": {"type": "boolean"}
						}
					}}}},
					"responses": {"200": {"description": "ok"}}
				}
			}
		}
	}`

	routes, err := FromOpenAPI(context.Background(), []byte(spec))
	require.NoError(t, err)
	require.Len(t, routes, 1)
	require.Len(t, routes[0].DefaultPayloads, 1)

	assert.Equal(t, map[string]any{
		"product": map[string]any{"id": float64(1), "quantity": float64(0)},
		"note":    "fragile",
		"tags":    []any{"gift"},
		"paid":    false,
	}, routes[0].DefaultPayloads[0])
	assert.Equal(t, []string{"Sample"}, routes[0].PresetLabels)
}

func TestOpenAPIImporter_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("swagger 2", func(t *testing.T) {
		_, err := FromOpenAPI(ctx, []byte(`{"swagger": "2.0"}`))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("no supported operations", func(t *testing.T) {
		_, err := FromOpenAPI(ctx, []byte(`{
			"openapi": "3.0.0",
			"info": {"title": "T", "version": "1"},
			"paths": {"/x": {"delete": {"responses": {"204": {"description": "gone"}}}}}
		}`))
		assert.ErrorIs(t, err, ErrNoRoutes)
	})

	t.Run("empty paths", func(t *testing.T) {
		_, err := FromOpenAPI(ctx, []byte(`{"openapi": "3.0.0", "info": {"title": "T", "version": "1"}, "paths": {}}`))
		assert.ErrorIs(t, err, ErrNoRoutes)
	})
}

func TestRouteFor(t *testing.T) {
	tests := []struct {
		path       string
		name       string
		requiresID bool
		ok         bool
	}{
		{"/", "/", false, true},
		{"/order", "/order", false, true},
		{"/order/{id}", "/order/", true, true},
		{"/api/v1/items/{itemId}", "/api/v1/items/", true, true},
		{"/users/{id}/orders", "", false, false},
		{"/users/{uid}/orders/{id}", "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			name, requiresID, ok := routeFor(tt.path)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.requiresID, requiresID)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
