package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deseos/pkg/utils"
)

const (
	CtxSessionID      = "session_id"
	SessionCookieName = "sid"
	sessionMaxAge     = 60 * 60 * 24 * 30
)

// SessionMiddleware makes sure every client carries an opaque "sid" cookie. It identifies anonymous
// carts, CSRF tokens and flash messages; it never holds state itself.
func SessionMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookieName)
		if err != nil || len(sid) != 32 {
			sid, err = utils.GenerateSecureToken(16)
			if err != nil {
				utils.RespondError(c, http.StatusInternalServerError, "Could not start session")
				c.Abort()
				return
			}
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookieName, sid, sessionMaxAge, "/", "", secure, true)
		c.Set(CtxSessionID, sid)
		c.Next()
	}
}
