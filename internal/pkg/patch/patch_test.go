//go:build unit

package patch_test

import (
	"testing"

	"techpoints/internal/pkg/patch"

	"github.com/stretchr/testify/assert"
)

func TestCoalesce(t *testing.T) {
	name := "Headphones"

	assert.Equal(t, "Headphones", patch.Coalesce(&name, "Speaker"))
	assert.Equal(t, "Speaker", patch.Coalesce[string](nil, "Speaker"))
}

func TestChanged(t *testing.T) {
	same := int64(500)
	other := int64(700)

	tests := []struct {
		name string
		ptr  *int64
		want bool
	}{
		{name: "absent", ptr: nil, want: false},
		{name: "equal", ptr: &same, want: false},
		{name: "different", ptr: &other, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, patch.Changed(tt.ptr, int64(500)))
		})
	}
}
