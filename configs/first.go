package configs

import (
	"errors"
)

// First returns path from the first file that sets it, or the zero value.
// Any other error panics; check Loader.Err first.
func First[T any](loader Loader, path string) T {
	var value T
	if err := loader.AssignFirst(path, &value); err != nil {
		if errors.Is(err, ErrValueNotFound) {
			return value
		}
		panic(err)
	}
	return value
}
