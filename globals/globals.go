package globals

import (
	"context"
)

var (
	// JwtSecret is set from config at startup, before any route is served.
	JwtSecret = []byte("change-me-in-production")
)

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"

var Ctx = context.Background()
