package jsontree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	t.Run("walks in display order", func(t *testing.T) {
		nodes := Flatten(orderPayload(), nil)

		var ids []string
		for _, n := range nodes {
			ids = append(ids, n.ID())
		}
		assert.Equal(t, []string{
			"$",
			"$.products",
			"$.products[0]",
			"$.products[0].id",
			"$.products[0].quantity",
			"$.products[1]",
			"$.products[1].id",
			"$.products[1].quantity",
		}, ids)
		assert.Equal(t, 2, nodes[1].Children)
		assert.Equal(t, "[0]", nodes[2].Label)
		assert.Equal(t, 3, nodes[3].Depth)
	})

	t.Run("skips collapsed children", func(t *testing.T) {
		nodes := Flatten(orderPayload(), map[string]bool{"$.products": true})
		assert.Len(t, nodes, 2)
		assert.True(t, nodes[1].Collapsed)
	})

	t.Run("scalar root is a single node", func(t *testing.T) {
		nodes := Flatten("Created", nil)
		assert.Len(t, nodes, 1)
		assert.Equal(t, KindString, nodes[0].Kind)
	})
}
