package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkVisitsInOrderWithPaths(t *testing.T) {
	n, err := Decode([]byte(nestedQuery), DefaultLimits())
	require.NoError(t, err)

	var paths []string
	require.NoError(t, Walk(n, func(_ Node, path string) error {
		paths = append(paths, path)
		return nil
	}))

	assert.Equal(t, []string{
		"",
		"children[0]",
		"children[0].children[0]",
		"children[0].children[1]",
		"children[1]",
		"children[1].children[0]",
		"children[1].children[1]",
	}, paths)
}

func TestWalkStopsOnError(t *testing.T) {
	n, err := Decode([]byte(nestedQuery), DefaultLimits())
	require.NoError(t, err)

	stop := errors.New("stop")
	visited := 0
	err = Walk(n, func(Node, string) error {
		visited++
		if visited == 3 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 3, visited)
}

func TestLeaves(t *testing.T) {
	n, err := Decode([]byte(nestedQuery), DefaultLimits())
	require.NoError(t, err)

	var columns []string
	for _, leaf := range Leaves(n) {
		columns = append(columns, leaf.Column)
	}
	assert.Equal(t, []string{"salary", "bonus", "is_active", "created_date"}, columns)
}

func TestStatsOfLeaf(t *testing.T) {
	nodes, depth := Stats(&Leaf{Column: "a"})
	assert.Equal(t, 1, nodes)
	assert.Equal(t, 1, depth)

	nodes, depth = Stats(nil)
	assert.Zero(t, nodes)
	assert.Zero(t, depth)
}
