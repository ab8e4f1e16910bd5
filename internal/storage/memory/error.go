package memory

import "errors"

var ErrNilDestination = errors.New("cache destination must be a non-nil pointer")
