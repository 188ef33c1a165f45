package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "passit-client/docs"
	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/config"
	mw "passit-client/internal/http/middleware"
	"passit-client/internal/metrics"
	"passit-client/internal/service/artifact"
	"passit-client/internal/service/claim"
	"passit-client/internal/service/profile"
)

// Deps are the services behind the display API.
type Deps struct {
	Flows     *claim.Registry
	Artifacts *artifact.Generator
	Profiles  *profile.Service
	Log       zerolog.Logger
}

// NewRouter builds the gin engine with middlewares and routes wired.
func NewRouter(deps Deps, cfg *config.Config) (*gin.Engine, error) {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	log := deps.Log.With().Str("component", "http").Logger()

	router := gin.New()
	router.Use(mw.RequestID())
	router.Use(mw.Logger(log))
	router.Use(mw.Recovery(log))

	corsConfig := cors.DefaultConfig()
	if origins := splitOrigins(cfg.Server.CORSAllowedOrigins); len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID", "X-Telegram-Init-Data"}
	router.Use(cors.New(corsConfig))

	router.SetHTMLTemplate(pages)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "passit-client",
			"flows":     deps.Flows.Len(),
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	submitLimit, err := mw.RateLimit(cfg.Server.SubmitRate, "claim", log)
	if err != nil {
		return nil, err
	}

	v1 := router.Group("/api/v1", mw.InitData(cfg.Telegram.BotToken, cfg.Telegram.InitDataTTL, log))
	NewFlowHandlers(deps.Flows, deps.Artifacts, deps.Profiles, log).
		RegisterRoutes(v1, submitLimit, cfg.Flows.AllowSkipWaiting)
	NewProfileHandlers(deps.Profiles, log).RegisterRoutes(v1)

	router.NoRoute(func(c *gin.Context) {
		mw.Abort(c, apperrors.NewNotFoundError("route", c.Request.URL.Path), log)
	})
	return router, nil
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
