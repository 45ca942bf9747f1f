package middlewares

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionCookie = "sid"

// SessionMiddleware issues the browser session cookie that scopes tracking
// dedupe and the password gate. The id is stored in the context as "sid".
func SessionMiddleware(ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sid, err := ctx.Cookie(SessionCookie)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			ctx.SetSameSite(http.SameSiteLaxMode)
			ctx.SetCookie(SessionCookie, sid, int(ttl.Seconds()), "/", "", secure, true)
		}
		ctx.Set("sid", sid)
		ctx.Next()
	}
}
