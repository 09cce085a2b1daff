package series

import (
	"errors"
	"fmt"
)

// ErrPolicy matches any failure raised by a caller-supplied exclusion policy.
var ErrPolicy = errors.New("series: exclusion policy failed")

// PolicyError carries the original policy fault and the file it hit.
type PolicyError struct {
	Path string
	Err  error
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("exclusion policy failed on %s: %v", e.Path, e.Err)
}

func (e *PolicyError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrPolicy) match without hiding the original fault.
func (e *PolicyError) Is(target error) bool { return target == ErrPolicy }
