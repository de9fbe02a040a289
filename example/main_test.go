package main

import (
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/limpo1989/vector"
)

func ids(vec *vector.Vector[record]) []int {
	var out []int
	for r := range vec.Values() {
		out = append(out, r.id)
	}
	return out
}

func TestEditMiddle(t *testing.T) {
	for _, tc := range []struct {
		name string
		n    int
		want []int
	}{
		{name: "empty", n: 0, want: nil},
		{name: "single", n: 1, want: []int{0, -1}},
		{name: "two", n: 2, want: []int{0, -1}},
		{name: "many", n: 4, want: []int{0, -1, 2, 3}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			vec := vector.New[record]()
			defer vec.Release()
			for i := 0; i < tc.n; i++ {
				require.NoError(t, vec.PushBack(record{id: i}))
			}

			assert.NotPanics(t, func() { editMiddle(vec, log.NewNopLogger()) })
			assert.Equal(t, tc.want, ids(vec))
		})
	}
}
