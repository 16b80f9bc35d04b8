package constants

// Session and context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "current_user"
	FlashKeyError    = "error"
	FlashKeySuccess  = "success"
)

// Password rules
const (
	MinPasswordLength = 8
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
