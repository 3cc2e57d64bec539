//go:build !manifold

package manifold

import (
	"errors"
	"testing"
)

func TestNewWithoutTag(t *testing.T) {
	k, err := New()
	if !errors.Is(err, ErrNotBuilt) {
		t.Fatalf("New() error = %v, want ErrNotBuilt", err)
	}
	if k != nil {
		t.Errorf("New() = %v, want a nil kernel", k)
	}
}
