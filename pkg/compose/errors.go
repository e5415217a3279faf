package compose

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange is returned by the bass engine in BassStrict mode when
// a scale degree does not address an alphabet letter directly.
var ErrIndexOutOfRange = errors.New("compose: degree out of alphabet range")

// Pipeline stages reported in GenerationError.
const (
	StageProgression = "progression"
	StageMelody      = "melody"
	StageHarmony     = "harmony"
	StageBass        = "bass"
	StageValidate    = "validate"
)

// GenerationError reports a failed run. No partial composition accompanies
// it.
type GenerationError struct {
	Stage string
	Scale string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("compose: %s stage failed for scale %q: %v", e.Stage, e.Scale, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsGenerationError reports whether err is (or wraps) a GenerationError.
func IsGenerationError(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}
