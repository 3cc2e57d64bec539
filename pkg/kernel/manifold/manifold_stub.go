//go:build !manifold

// Package manifold is the Manifold (manifoldc) backend. This file is
// compiled without the manifold build tag, where the C library is not
// linked and New always fails.
package manifold

import (
	"errors"

	"github.com/sixbitdeep/3D-Models/pkg/kernel"
)

// ErrNotBuilt is returned by New when the binary was built without
// -tags=manifold.
var ErrNotBuilt = errors.New("manifold: backend not compiled in (rebuild with -tags=manifold)")

// New reports ErrNotBuilt.
func New() (kernel.Kernel, error) {
	return nil, ErrNotBuilt
}
