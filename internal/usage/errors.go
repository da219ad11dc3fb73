package usage

import "errors"

// ErrLimitReached indicates the user exhausted their monthly audit quota.
var ErrLimitReached = errors.New("limit reached")
