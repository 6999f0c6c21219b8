package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerScheme is the only authorization scheme the API understands.
const BearerScheme = "Bearer"

// RequestIDHeaderName is echoed back on every response.
const RequestIDHeaderName = "X-Request-Id"

// MaxUsernameLength and MaxRabbitNameLength bound the stored names.
const (
	MaxUsernameLength   = 16
	MaxRabbitNameLength = 16
)

// MaxImageBytes caps a decoded photo or image upload.
const MaxImageBytes = 10 << 20
