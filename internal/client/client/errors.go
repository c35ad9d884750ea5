package client

import (
	"errors"

	"google.golang.org/grpc/codes"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTimeout      = errors.New("request timed out")
	ErrNoSession    = errors.New("no active session")
)

// RemoteError carries a rejection from the identity service with the
// message the service provided, e.g. "account already exists".
type RemoteError struct {
	Code    codes.Code
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is makes authentication rejections match ErrUnauthorized while keeping the
// service message.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthorized && (e.Code == codes.Unauthenticated || e.Code == codes.PermissionDenied)
}
