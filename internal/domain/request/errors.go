package request

import "errors"

var (
	ErrRequestNotFound         = errors.New("request not found")
	ErrInvalidStatusTransition = errors.New("invalid request status transition")
	ErrInvalidRequestType      = errors.New("invalid request type")
	ErrInvalidVerdict          = errors.New("invalid deliberation verdict")
	ErrInconsistentPayload     = errors.New("request payload inconsistent with its type")
	ErrMeetingNotFound         = errors.New("committee meeting not found")
)
