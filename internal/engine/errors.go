package engine

import pkgerrors "github.com/infidex/infidex/pkg/errors"

// ErrInvalidArgument is returned by Validate (and therefore by New/Load)
// when a Config value is out of range.
var ErrInvalidArgument = pkgerrors.ErrInvalidArgument
