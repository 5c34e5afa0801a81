package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productsBody() any {
	return map[string]any{
		"products": []any{
			map[string]any{"id": float64(1), "name": "Brown eggs", "in_stock": true},
			map[string]any{"id": float64(2), "name": "Sweet fresh strawberry", "in_stock": true},
			map[string]any{"id": float64(3), "name": "Asparagus", "in_stock": false},
		},
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want any
	}{
		{"identity", ".", productsBody()},
		{"single value", ".products[0].name", "Brown eggs"},
		{"length", ".products | length", 3},
		{"many results become array", ".products[].id", []any{float64(1), float64(2), float64(3)}},
		{"select", `[.products[] | select(.in_stock | not) | .name]`, []any{"Asparagus"}},
		{"no results", ".products[] | select(.id > 10)", nil},
		{"missing key", ".order", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(productsBody(), tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApply_Errors(t *testing.T) {
	t.Run("empty expression", func(t *testing.T) {
		_, err := Apply(productsBody(), "  ")
		assert.ErrorIs(t, err, ErrEmptyExpression)
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := Apply(productsBody(), ".products[")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jq parse error")
	})

	t.Run("runtime error", func(t *testing.T) {
		_, err := Apply(productsBody(), ".products.name")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jq filter error")
	})

	t.Run("unknown function", func(t *testing.T) {
		_, err := Apply(productsBody(), "nosuchfn")
		assert.Error(t, err)
	})
}

func TestQuery_Run(t *testing.T) {
	q, err := Compile(".order.id")
	require.NoError(t, err)
	assert.Equal(t, ".order.id", q.String())

	for _, id := range []float64{1, 2} {
		got, err := q.Run(context.Background(), map[string]any{"order": map[string]any{"id": id}})
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}

	got, err := q.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
