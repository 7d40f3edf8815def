package common

// AuthorizationHeaderName is the HTTP header that carries the admin bearer
// token on gated requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token value in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// Keys of the persisted client-local state.
const (
	PrefUserID      = "user_id"
	PrefDisplayName = "username"
	PrefRealName    = "real_name"
	PrefAdminToken  = "admin_token"
)
