package middlewares

import (
	"clinic/src/booking"
	"net/http"

	"github.com/gin-gonic/gin"
)

// LocaleMiddleware resolves the :locale path segment. Unsupported locales
// are not routes.
func LocaleMiddleware(ctx *gin.Context) {
	locale, ok := booking.ParseLocale(ctx.Param("locale"))
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	ctx.Set("locale", locale)
	ctx.Next()
}

// GetLocale returns the locale set by LocaleMiddleware, or the default.
func GetLocale(ctx *gin.Context) booking.Locale {
	if v, ok := ctx.Get("locale"); ok {
		if l, ok := v.(booking.Locale); ok {
			return l
		}
	}
	return booking.DefaultLocale
}
