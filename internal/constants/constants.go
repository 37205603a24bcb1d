package constants

// Session and context keys
const (
	ContextKeyUserID          = "user_id"
	ContextKeyUser            = "user"
	ContextKeyProject         = "project"
	ContextKeyTask            = "task"
	ContextKeyRequestID       = "request_id"
	SessionKeyPasswordVersion = "password_version"
	SessionCookieName         = "sessionid"
)

// Password rules
const (
	MinPasswordLength = 8
	MaxUsernameLength = 150
	MaxNameLength     = 200
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// HTTP headers
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderTotalCount = "X-Total-Count"
)

// DateLayout is the wire format of start/end dates.
const DateLayout = "2006-01-02"
