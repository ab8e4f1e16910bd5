package redis

import "errors"

var ErrEmptyAddress = errors.New("redis address cannot be empty")
