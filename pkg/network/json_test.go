package network

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkJSON(t *testing.T) {
	t1 := tree(inner(leaf(0), inner(leaf(1), leaf(2))))
	t2 := tree(inner(inner(leaf(0), leaf(1)), leaf(2)))
	a1, err := t1.AttachmentOf(0)
	require.NoError(t, err)
	a2, err := t2.AttachmentOf(0)
	require.NoError(t, err)
	n := AttachHybrid(FromTree(tree(inner(leaf(1), leaf(2))), Merged), 0, a1, a2)

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var back Network
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, n.Canonical(), back.Canonical())
	assert.Equal(t, n.Reticulations(), back.Reticulations())
}

func TestNetworkJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", `{"root":0,"nodes":[]}`},
		{"root out of range", `{"root":3,"nodes":[{"taxon":0}]}`},
		{"bad edge", `{"root":0,"nodes":[{"children":[{"to":7,"source":"merged"}]}]}`},
		{"bad source", `{"root":0,"nodes":[{"children":[{"to":1,"source":"tree3"}]},{"taxon":0}]}`},
		{"unlabeled leaf", `{"root":0,"nodes":[{"children":[{"to":1,"source":"merged"}]},{}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n Network
			assert.Error(t, json.Unmarshal([]byte(tt.in), &n))
		})
	}
}
