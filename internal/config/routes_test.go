package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/artpar/querybench/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopRoutesYAML = `
routes:
  - display_name: /Order/
    route: /order/
    methods: [get, PUT]
    requires_resource_id: true
    preset_labels: [Shipping Info, Valid Billing Info]
    payloads:
      - order:
          email: jgnault@uqac.ca
          shipping_information:
            country: Canada
      - credit_card:
          number: "4242 4242 4242 4242"
          expiration_year: 2024
`

func TestParseRoutes(t *testing.T) {
	routes, err := ParseRoutes([]byte(shopRoutesYAML))
	require.NoError(t, err)
	require.Len(t, routes, 1)

	r := routes[0]
	assert.Equal(t, "/Order/", r.DisplayName)
	assert.Equal(t, "/order/", r.RouteName)
	assert.Equal(t, []core.Method{core.MethodGET, core.MethodPUT}, r.AllowedMethods)
	assert.True(t, r.RequiresResourceID)
	assert.Equal(t, "Valid Billing Info", r.PresetLabel(1))
	require.Len(t, r.DefaultPayloads, 2)

	encoded, err := json.Marshal(r.DefaultPayloads[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"credit_card":{"number":"4242 4242 4242 4242","expiration_year":2024}}`, string(encoded))

	order := r.DefaultPayloads[0].(map[string]any)["order"].(map[string]any)
	assert.IsType(t, map[string]any{}, order["shipping_information"])
}

func TestParseRoutes_Numbers(t *testing.T) {
	routes, err := ParseRoutes([]byte(`routes:
  - route: /order
    methods: [post]
    payloads:
      - {quantity: 2, ratio: 0.5, id: 9007199254740993, neg: -9007199254740993, big: 18446744073709551615}
`))
	require.NoError(t, err)
	assert.Equal(t, []core.Method{core.MethodPOST}, routes[0].AllowedMethods)

	payload := routes[0].DefaultPayloads[0].(map[string]any)
	assert.Equal(t, float64(2), payload["quantity"])
	assert.Equal(t, 0.5, payload["ratio"])

	encoded, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity":2,"ratio":0.5,"id":9007199254740993,"neg":-9007199254740993,"big":18446744073709551615}`, string(encoded))
	assert.Contains(t, string(encoded), `"id":9007199254740993`)
	assert.Contains(t, string(encoded), `"big":18446744073709551615`)
}

func TestParseRoutes_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"empty table", "routes: []\n", ErrNoRoutes},
		{"unknown method", "routes:\n  - route: /x\n    methods: [DELETE]\n", core.ErrInvalidRoute},
		{"no methods", "routes:\n  - route: /x\n", core.ErrInvalidRoute},
		{"no route name", "routes:\n  - methods: [GET]\n", core.ErrInvalidRoute},
		{"duplicate method", "routes:\n  - route: /x\n    methods: [GET, get]\n", core.ErrInvalidRoute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRoutes([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := ParseRoutes([]byte("routes: [\n"))
		assert.Error(t, err)
	})
}

func TestLoadRoutes(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		routes, err := LoadRoutes("")
		require.NoError(t, err)
		assert.Equal(t, DefaultRoutes(), routes)
	})

	t.Run("reads file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routes.yaml")
		require.NoError(t, os.WriteFile(path, []byte(shopRoutesYAML), 0o644))

		routes, err := LoadRoutes(path)
		require.NoError(t, err)
		assert.Len(t, routes, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRoutes(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestMarshalRoutes_RoundTrip(t *testing.T) {
	data, err := MarshalRoutes(DefaultRoutes())
	require.NoError(t, err)

	routes, err := ParseRoutes(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultRoutes(), routes)
}

func TestDefaultRoutes(t *testing.T) {
	routes := DefaultRoutes()
	require.Len(t, routes, 3)

	for _, r := range routes {
		assert.NoError(t, r.Validate(), r.RouteName)
	}

	assert.Equal(t, "/", routes[0].RouteName)
	assert.Equal(t, []core.Method{core.MethodGET}, routes[0].AllowedMethods)
	assert.False(t, routes[0].HasPresets())

	assert.Equal(t, "/order", routes[1].RouteName)
	assert.Equal(t, []core.Method{core.MethodPOST}, routes[1].AllowedMethods)

	order := routes[2]
	assert.Equal(t, "/order/", order.RouteName)
	assert.True(t, order.RequiresResourceID)
	assert.Len(t, order.DefaultPayloads, 4)
	assert.Equal(t, "Declined Billing Info", order.PresetLabel(2))

	encoded, err := json.Marshal(order.DefaultPayloads[2])
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"number":"4000 0000 0000 0002"`)
}
