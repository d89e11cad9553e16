package compact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderRejectsOutOfRangeRelationship(t *testing.T) {
	b := NewBuilder(3)

	err := b.AddRelationship(-1, 0)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "source id")

	err = b.AddRelationship(0, 3)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "target id")
}

func TestBuilderRejectsDuplicateMapping(t *testing.T) {
	b := NewBuilder(3)
	require.Nil(t, b.SetOriginalID(0, 100))

	err := b.SetOriginalID(0, 200)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "already mapped")

	err = b.SetOriginalID(1, 100)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "already mapped")
}

func TestBuilderRejectsIncompleteMapping(t *testing.T) {
	b := NewBuilder(3)
	require.Nil(t, b.SetOriginalID(0, 100))

	_, err := b.Build()
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "incomplete id mapping")
}

func TestBuilderSingleUse(t *testing.T) {
	b := NewBuilder(2)
	require.Nil(t, b.AddRelationship(0, 1))

	_, err := b.Build()
	require.Nil(t, err)

	_, err = b.Build()
	require.NotNil(t, err)

	err = b.AddRelationship(0, 1)
	require.NotNil(t, err)
}

func TestBuilderEmptyGraph(t *testing.T) {
	b := NewBuilder(0)
	g, err := b.Build()
	require.Nil(t, err)
	assert.Equal(t, int64(0), g.NodeCount())
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"out", "outgoing", ">", "OUT"} {
		d, err := ParseDirection(s)
		require.Nil(t, err)
		assert.Equal(t, Outgoing, d)
	}
	for _, s := range []string{"in", "incoming", "<"} {
		d, err := ParseDirection(s)
		require.Nil(t, err)
		assert.Equal(t, Incoming, d)
	}
	for _, s := range []string{"both", "<>"} {
		d, err := ParseDirection(s)
		require.Nil(t, err)
		assert.Equal(t, Both, d)
	}

	_, err := ParseDirection("sideways")
	assert.NotNil(t, err)
}
