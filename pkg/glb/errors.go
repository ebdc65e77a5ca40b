package glb

import (
	"errors"

	"github.com/Faultbox/glbforge/pkg/manifest"
)

// Errors reported by the builder. The first four are shared with the
// manifest validation pass so errors.Is matches either source.
var (
	ErrIndexOutOfRange   = manifest.ErrIndexOutOfRange
	ErrAttributeMismatch = manifest.ErrAttributeMismatch
	ErrInvariant         = manifest.ErrInvariant
	ErrInvalidData       = manifest.ErrInvalidData
	ErrIO                = errors.New("i/o failure")
)

// EntityError identifies the failing entity by kind and index.
type EntityError = manifest.EntityError

func entityErr(kind string, index int, field, format string, args ...any) error {
	return manifest.Errorf(kind, index, field, format, args...)
}
