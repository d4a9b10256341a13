package ablychat

import "github.com/ably/ably-chat-go/internal/lifecycle"

// ErrorCode is the project-wide ARI-style error code space.
type ErrorCode = lifecycle.ErrorCode

const (
	ErrorCodeRoomInInvalidState = lifecycle.ErrorCodeRoomInInvalidState
	ErrorCodeRoomDiscontinuity  = lifecycle.ErrorCodeRoomDiscontinuity
)

// ErrorInfo is the standard boundary error shape used across the
// module: {code, statusCode, message, cause}.
type ErrorInfo = lifecycle.ErrorInfo
