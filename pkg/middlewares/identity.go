package middlewares

import (
	t_token "marketplace_chat_service/pkg/token"

	"github.com/gofiber/fiber/v2"
)

const (
	// QueryToken token in query name
	QueryToken = "auth"

	// CookieToken token in cookie name
	CookieToken = "auth_token"

	// QueryUserID plain user id in query name, honored only in unverified mode
	QueryUserID = "user_id"

	// LocalUserID resolved user id, set on c.Locals
	LocalUserID = "UserID"
	// LocalRole resolved role, set on c.Locals
	LocalRole = "role"

	// GuestUserID is assigned when no usable credential is present
	GuestUserID = "guest"
)

// IdentityResolver resolves a user id from the handshake credentials and
// stores it in the request locals before the websocket upgrade runs.
//
// Resolution order: a verified JWT (query "auth" or cookie "auth_token")
// wins; with allowUnverified set, a bare "user_id" query value is trusted
// as-is, matching the reference system's insecure demo behavior. Anything
// else degrades to the guest identity. The connection is never rejected.
func IdentityResolver(allowUnverified bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := c.Query(QueryToken)
		if tokenStr == "" {
			tokenStr = c.Cookies(CookieToken)
		}

		if tokenStr != "" {
			if claims, err := t_token.ParseJWT(tokenStr); err == nil && claims.UserID != "" {
				c.Locals(LocalUserID, claims.UserID)
				c.Locals(LocalRole, claims.Role)
				return c.Next()
			}
		}

		if allowUnverified {
			if userID := c.Query(QueryUserID); userID != "" {
				c.Locals(LocalUserID, userID)
				c.Locals(LocalRole, string(t_token.RoleUser))
				return c.Next()
			}
		}

		c.Locals(LocalUserID, GuestUserID)
		c.Locals(LocalRole, string(t_token.RoleGuest))
		return c.Next()
	}
}
