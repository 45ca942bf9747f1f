package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func GateKey(sid string) string {
	return fmt.Sprintf("gate:%s", sid)
}

// Gate is the site-wide password gate. It is disabled when no password hash
// is configured.
type Gate struct {
	rdb  redis.Cmdable
	hash []byte
	ttl  time.Duration
}

func NewGate(rdb redis.Cmdable, passwordHash string, ttl time.Duration) *Gate {
	return &Gate{rdb: rdb, hash: []byte(passwordHash), ttl: ttl}
}

func (g *Gate) Enabled() bool {
	return len(g.hash) > 0
}

// Unlock checks password and remembers the session as admitted.
func (g *Gate) Unlock(ctx context.Context, sid, password string) (bool, error) {
	if !g.Enabled() {
		return true, nil
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		return false, nil
	}
	if err := g.rdb.Set(ctx, GateKey(sid), 1, g.ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (g *Gate) Middleware(ctx *gin.Context) {
	if !g.Enabled() {
		ctx.Next()
		return
	}
	sid := ctx.GetString("sid")
	n, err := g.rdb.Exists(ctx.Request.Context(), GateKey(sid)).Result()
	if err != nil {
		zap.L().Error("gate lookup failed", zap.String("sid", sid), zap.Error(err))
		ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}
	if n == 0 {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "password required"})
		return
	}
	ctx.Next()
}
