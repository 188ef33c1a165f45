package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	dp "passit-client/internal/domain/profile"
	mw "passit-client/internal/http/middleware"
	"passit-client/internal/service/profile"
)

// ProfileHandlers serves the read-only dashboard.
type ProfileHandlers struct {
	service *profile.Service
	log     zerolog.Logger
}

func NewProfileHandlers(svc *profile.Service, log zerolog.Logger) *ProfileHandlers {
	return &ProfileHandlers{service: svc, log: log}
}

func (h *ProfileHandlers) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile/:address", h.getProfile)
	r.GET("/leaderboard", h.getLeaderboard)
}

type leaderboardResponse struct {
	Leaderboard []dp.Entry `json:"leaderboard"`
}

// @Summary Get a wallet profile
// @Description Rank, points, active codes and the global leaderboard of an address.
// @Tags profile
// @Produce json
// @Security TelegramInitData
// @Param address path string true "Wallet address"
// @Success 200 {object} profile.Profile
// @Failure 404 {object} middleware.ErrorResponse "Unknown address"
// @Failure 502 {object} middleware.ErrorResponse "Ledger unreachable"
// @Router /profile/{address} [get]
func (h *ProfileHandlers) getProfile(c *gin.Context) {
	p, err := h.service.Profile(c.Request.Context(), c.Param("address"))
	if err != nil {
		mw.Abort(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Get the global leaderboard
// @Tags profile
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} leaderboardResponse
// @Failure 502 {object} middleware.ErrorResponse "Ledger unreachable"
// @Router /leaderboard [get]
func (h *ProfileHandlers) getLeaderboard(c *gin.Context) {
	entries, err := h.service.Leaderboard(c.Request.Context())
	if err != nil {
		mw.Abort(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, leaderboardResponse{Leaderboard: entries})
}
