package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	apperrors "passit-client/internal/common/errors"
)

// Context keys to store Telegram init-data derived fields.
const (
	UserIDCtxParam   = "user_id"
	UsernameCtxParam = "username"
)

// InitData validates Telegram Mini Apps init-data and stores the user in the context.
// It expects init-data in the "X-Telegram-Init-Data" header or the "init_data" query
// parameter (websocket clients cannot set headers). An empty bot token disables the check.
func InitData(token string, expIn time.Duration, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		raw := c.GetHeader("X-Telegram-Init-Data")
		if raw == "" {
			raw = c.Query("init_data")
		}
		if raw == "" {
			Abort(c, apperrors.NewUnauthorizedError("missing init_data"), log)
			return
		}

		if err := initdata.Validate(raw, token, expIn); err != nil {
			Abort(c, apperrors.NewUnauthorizedError("invalid init_data"), log)
			return
		}
		parsed, err := initdata.Parse(raw)
		if err != nil {
			Abort(c, apperrors.NewValidationError("init_data", "malformed"), log)
			return
		}
		if parsed.User.ID != 0 {
			c.Set(UserIDCtxParam, parsed.User.ID)
			c.Set(UsernameCtxParam, parsed.User.Username)
		}
		c.Next()
	}
}

// UserID returns the authenticated Telegram user id, or 0.
func UserID(c *gin.Context) int64 {
	if v, ok := c.Get(UserIDCtxParam); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
