package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyUserContext   = "USER_CONTEXT"
	KeyUserID        = "user_id"
	KeyAuthSub       = "auth_sub"
	KeyIsAdmin       = "isAdmin"
	KeyFromProtected = "from_protected"
)
