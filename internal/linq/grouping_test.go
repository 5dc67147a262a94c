package linq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idxc/internal/expr"
)

func TestNewGrouping(t *testing.T) {
	t.Run("default alias", func(t *testing.T) {
		g := NewGrouping("string")

		assert.Equal(t, "group", g.Root.Name)
		assert.True(t, g.Root.IsRoot())
		assert.Equal(t, "group.key", g.Key.String())
		assert.Equal(t, "string", g.Key.Type)
		assert.Equal(t, "string", g.KeyType)
	})

	t.Run("custom alias", func(t *testing.T) {
		g := NewGrouping("PersonKey", "g")
		assert.Equal(t, "g.key", g.Key.String())
		assert.Same(t, g.Root, g.Key.Parent)
	})

	t.Run("empty alias falls back", func(t *testing.T) {
		g := NewGrouping("string", "")
		assert.Equal(t, "group", g.Root.Name)
	})
}

func TestGrouping_Sum(t *testing.T) {
	ser := newTestSerializer(t)
	pr := expr.NewRoot("personResult")

	op, err := NewGrouping("string").Sum(pr.Get("count"))
	require.NoError(t, err)
	assert.Equal(t, expr.OpSum, op.Op)

	text, err := ser.Render(op)
	require.NoError(t, err)
	assert.Equal(t, "group.Sum(personResult => personResult.Count)", text)

	text, err = ser.Render(NewGrouping("string", "g").MustSum(expr.Template("pr => pr.Count")))
	require.NoError(t, err)
	assert.Equal(t, "g.Sum(pr => pr.Count)", text)
}

func TestGrouping_SumDivideSum(t *testing.T) {
	ser := newTestSerializer(t)
	g := NewGrouping("string")
	count := expr.NewRoot("pr").Get("count")

	text, err := ser.Render(g.MustSum(count).Divide(g.MustSum(count)))
	require.NoError(t, err)
	assert.Equal(t, "group.Sum(pr => pr.Count) / group.Sum(pr => pr.Count)", text)
}

func TestGrouping_SumAmbiguous(t *testing.T) {
	g := NewGrouping("string")
	mixed := expr.Add(expr.NewRoot("a").Get("x"), expr.NewRoot("b").Get("y"))

	_, err := g.Sum(mixed)
	assert.True(t, IsAmbiguousRoot(err))
	assert.Panics(t, func() { g.MustSum(mixed) })
}
