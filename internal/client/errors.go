package client

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEndpoint = errors.New("invalid endpoint (must end with " + EndpointSuffix + ")")
	ErrMissingToken    = errors.New("missing token")
)

// RemoteError is a well-formed response whose success flag is false.
type RemoteError struct {
	Action  Action
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// ResponseError is a response body that could not be decoded as JSON.
type ResponseError struct {
	Status  int
	Snippet string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("response is not JSON (HTTP %d): %s", e.Status, e.Snippet)
}
