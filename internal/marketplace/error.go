package marketplace

import "errors"

var ErrRetriesExhausted = errors.New("request failed after retries")
