package boost

import "errors"

var ErrOfferNotFound = errors.New("offer not found or expired")
