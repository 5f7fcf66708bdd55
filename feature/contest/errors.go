package contest

import "errors"

// ErrContestNotFound is returned by read queries for an unknown contest id.
var ErrContestNotFound = errors.New("contest not found")

// ErrDuplicateName is returned when creating a contest whose name is taken.
var ErrDuplicateName = errors.New("contest name already exists")

// ErrInvalidInput is returned when contest creation input fails validation.
var ErrInvalidInput = errors.New("invalid contest input")
