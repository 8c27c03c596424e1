package app

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/rebuy-de/adrkit/pkg/digutil"
	"github.com/rebuy-de/adrkit/pkg/httperr"
)

// ErrExceptionHandlerContract indicates that the exception handler strategy
// did not return a response. It is never caught.
var ErrExceptionHandlerContract = errors.New("exception handler did not return a response")

// ContractError is returned when the exception handler strategy breaks its
// contract. It matches ErrExceptionHandlerContract with errors.Is.
type ContractError struct {
	Key    digutil.Key
	Result any
	Cause  error
}

func (e *ContractError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: strategy %q failed: %v", ErrExceptionHandlerContract, string(e.Key), e.Cause)
	}
	return fmt.Sprintf("%v: strategy %q returned %T", ErrExceptionHandlerContract, string(e.Key), e.Result)
}

func (e *ContractError) Unwrap() error {
	return e.Cause
}

func (e *ContractError) Is(target error) bool {
	return target == ErrExceptionHandlerContract
}

func (e *ContractError) Kind() httperr.Kind {
	return httperr.KindContract
}
