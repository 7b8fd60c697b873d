package configuration

import "errors"

// ErrInvalidSetting is an error that occurs when a configuration key holds a
// value that cannot be interpreted for that key.
var ErrInvalidSetting = errors.New("invalid setting")
