package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	apperrors "passit-client/internal/common/errors"
)

// RateLimit limits requests per caller. rate uses the limiter format, e.g. "5-M".
// Authenticated callers are keyed by Telegram user id, others by client IP.
func RateLimit(rate string, scope string, log zerolog.Logger) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	store := memory.NewStore()
	return mgin.NewMiddleware(limiter.New(store, r),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			Abort(c, apperrors.NewRateLimitError(scope), log)
		}),
		mgin.WithKeyGetter(func(c *gin.Context) string {
			if id := UserID(c); id != 0 {
				return scope + ":user:" + strconv.FormatInt(id, 10)
			}
			return scope + ":ip:" + c.ClientIP()
		}),
	), nil
}
