package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	apperrors "passit-client/internal/common/errors"
	dc "passit-client/internal/domain/claim"
	dw "passit-client/internal/domain/wallet"
	mw "passit-client/internal/http/middleware"
	"passit-client/internal/service/artifact"
	"passit-client/internal/service/claim"
	"passit-client/internal/service/profile"
)

// FlowHandlers exposes claim flows and their cards to the display layer.
type FlowHandlers struct {
	flows     *claim.Registry
	artifacts *artifact.Generator
	profiles  *profile.Service
	log       zerolog.Logger
	upgrader  websocket.Upgrader
}

func NewFlowHandlers(flows *claim.Registry, artifacts *artifact.Generator, profiles *profile.Service, log zerolog.Logger) *FlowHandlers {
	return &FlowHandlers{
		flows:     flows,
		artifacts: artifacts,
		profiles:  profiles,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// origins are not checked; init-data authenticates the socket
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes registers flow routes. submitLimit guards the claim endpoint.
func (h *FlowHandlers) RegisterRoutes(r *gin.RouterGroup, submitLimit gin.HandlerFunc, allowSkip bool) {
	flows := r.Group("/flows")
	{
		flows.POST("", h.create)
		flows.GET("/:id", h.get)
		flows.DELETE("/:id", h.remove)
		flows.PUT("/:id/identity", h.setIdentity)
		flows.PUT("/:id/proof", h.setProof)
		flows.PUT("/:id/chain", h.selectChain)
		flows.POST("/:id/claim", submitLimit, h.submit)
		flows.GET("/:id/ws", h.watch)
		flows.GET("/:id/cards", h.cards)
		flows.GET("/:id/cards/:index/link", h.cardLink)
		flows.GET("/:id/cards/:index/download", h.cardDownload)
		flows.GET("/:id/cards/:index/print", h.cardPrint)
	}
	if allowSkip {
		flows.POST("/:id/skip", h.skip)
	}
}

type createFlowRequest struct {
	Token string `json:"token" binding:"required"`
}

type identityRequest struct {
	// null means the user logged out
	Identity *dw.Identity `json:"identity"`
}

type proofRequest struct {
	Proof string `json:"proof"`
}

type chainRequest struct {
	Chain string `json:"chain" binding:"required"`
}

type cardsResponse struct {
	ClaimID string          `json:"claim_id"`
	Cards   []artifact.Card `json:"cards"`
}

type linkResponse struct {
	Link string `json:"link"`
}

// @Summary Open a claim flow
// @Description Creates a flow for a scanned token and runs the token preflight. A rejected token still
// @Description yields a flow, in the error phase, carrying the ledger's reason.
// @Tags flows
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body createFlowRequest true "Token to redeem"
// @Success 201 {object} claim.Snapshot
// @Failure 400 {object} middleware.ErrorResponse "Missing token"
// @Failure 429 {object} middleware.ErrorResponse "Too many open flows"
// @Router /flows [post]
func (h *FlowHandlers) create(c *gin.Context) {
	var req createFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mw.Abort(c, apperrors.NewValidationError("token", "is required"), h.log)
		return
	}
	f, err := h.flows.Create(req.Token, mw.UserID(c))
	if err != nil {
		mw.Abort(c, err, h.log)
		return
	}
	err = f.Start(c.Request.Context())
	h.respond(c, f, err, http.StatusCreated)
}

// @Summary Get flow state
// @Tags flows
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Success 200 {object} claim.Snapshot
// @Failure 404 {object} middleware.ErrorResponse "Flow not found"
// @Router /flows/{id} [get]
func (h *FlowHandlers) get(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, f.Snapshot())
}

// @Summary Close a flow
// @Description Stops polling and detaches watchers.
// @Tags flows
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse "Flow not found"
// @Router /flows/{id} [delete]
func (h *FlowHandlers) remove(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	if err := h.flows.Remove(f.ID()); err != nil {
		mw.Abort(c, err, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Set the authenticated identity
// @Description Replaces the accounts reported by the wallet provider and re-resolves the destination.
// @Tags flows
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Param request body identityRequest true "Identity, null on logout"
// @Success 200 {object} claim.Snapshot
// @Failure 409 {object} middleware.ErrorResponse "Already submitted"
// @Router /flows/{id}/identity [put]
func (h *FlowHandlers) setIdentity(c *gin.Context) {
	var req identityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mw.Abort(c, apperrors.NewValidationError("identity", "invalid json"), h.log)
		return
	}
	h.mutate(c, func(f *claim.Flow) error { return f.SetIdentity(req.Identity) })
}

// @Summary Set the human-verification proof
// @Tags flows
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Param request body proofRequest true "Proof"
// @Success 200 {object} claim.Snapshot
// @Failure 409 {object} middleware.ErrorResponse "Already submitted"
// @Router /flows/{id}/proof [put]
func (h *FlowHandlers) setProof(c *gin.Context) {
	var req proofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mw.Abort(c, apperrors.NewValidationError("proof", "invalid json"), h.log)
		return
	}
	h.mutate(c, func(f *claim.Flow) error { return f.SetProof(req.Proof) })
}

// @Summary Select the destination network
// @Tags flows
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Param request body chainRequest true "Chain offered for the wallet family"
// @Success 200 {object} claim.Snapshot
// @Failure 400 {object} middleware.ErrorResponse "Chain not offered"
// @Router /flows/{id}/chain [put]
func (h *FlowHandlers) selectChain(c *gin.Context) {
	var req chainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mw.Abort(c, apperrors.NewValidationError("chain", "is required"), h.log)
		return
	}
	h.mutate(c, func(f *claim.Flow) error { return f.SelectChain(dw.Chain(req.Chain)) })
}

// @Summary Submit the claim
// @Description Sends the claim once. Missing proof or wallet is reported without leaving the idle phase;
// @Description ledger failures move the flow to the error phase.
// @Tags flows
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Success 200 {object} claim.Snapshot
// @Failure 409 {object} middleware.ErrorResponse "Already submitted"
// @Failure 422 {object} middleware.ErrorResponse "Missing proof or wallet"
// @Failure 429 {object} middleware.ErrorResponse "Rate limited"
// @Router /flows/{id}/claim [post]
func (h *FlowHandlers) submit(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	// the claim must not be abandoned half way when the caller disconnects
	ctx := context.WithoutCancel(c.Request.Context())
	err := f.SubmitClaim(ctx)
	snap := f.Snapshot()
	if err == nil {
		h.profiles.Forget(ctx, snap.Address)
	}
	h.respond(c, f, err, http.StatusOK)
}

// @Summary Skip waiting for confirmation
// @Description Debug builds only.
// @Tags flows
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Success 200 {object} claim.Snapshot
// @Failure 409 {object} middleware.ErrorResponse "Not pending"
// @Router /flows/{id}/skip [post]
func (h *FlowHandlers) skip(c *gin.Context) {
	h.mutate(c, func(f *claim.Flow) error { return f.SkipWaiting() })
}

// @Summary List cards
// @Description One card per child token of an accepted claim.
// @Tags cards
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Success 200 {object} cardsResponse
// @Failure 409 {object} middleware.ErrorResponse "Claim not accepted yet"
// @Router /flows/{id}/cards [get]
func (h *FlowHandlers) cards(c *gin.Context) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	rec, ok := f.Record()
	if !ok {
		mw.Abort(c, apperrors.NewConflictError("flow", "claim not accepted yet"), h.log)
		return
	}
	c.JSON(http.StatusOK, cardsResponse{ClaimID: rec.ClaimID, Cards: h.artifacts.Cards(rec.ChildTokens)})
}

// @Summary Get a card link
// @Tags cards
// @Produce json
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Param index path int true "Card index, 0-based"
// @Success 200 {object} linkResponse
// @Failure 404 {object} middleware.ErrorResponse "Card not found"
// @Router /flows/{id}/cards/{index}/link [get]
func (h *FlowHandlers) cardLink(c *gin.Context) {
	card, ok := h.card(c)
	if !ok {
		return
	}
	link, err := h.artifacts.CopyLink(c.Request.Context(), card, newWebPlatform(c))
	if err != nil {
		mw.Abort(c, err, h.log)
		return
	}
	c.JSON(http.StatusOK, linkResponse{Link: link})
}

// @Summary Download a card
// @Description PNG of the front face as an attachment, or an inline page in in-app browsers.
// @Tags cards
// @Produce png
// @Produce html
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Param index path int true "Card index, 0-based"
// @Success 200
// @Failure 500 {object} middleware.ErrorResponse "Card could not be generated"
// @Router /flows/{id}/cards/{index}/download [get]
func (h *FlowHandlers) cardDownload(c *gin.Context) {
	card, ok := h.card(c)
	if !ok {
		return
	}
	if _, err := h.artifacts.Download(c.Request.Context(), card, newWebPlatform(c)); err != nil && !c.Writer.Written() {
		mw.Abort(c, err, h.log)
	}
}

// @Summary Print a card
// @Description Desktop browsers get a print page with both faces; touch devices get an A4 PDF.
// @Tags cards
// @Produce html
// @Produce application/pdf
// @Security TelegramInitData
// @Param id path string true "Flow ID"
// @Param index path int true "Card index, 0-based"
// @Success 200
// @Failure 500 {object} middleware.ErrorResponse "Card could not be generated"
// @Router /flows/{id}/cards/{index}/print [get]
func (h *FlowHandlers) cardPrint(c *gin.Context) {
	card, ok := h.card(c)
	if !ok {
		return
	}
	if _, err := h.artifacts.Print(c.Request.Context(), card, newWebPlatform(c)); err != nil && !c.Writer.Written() {
		mw.Abort(c, err, h.log)
	}
}

func (h *FlowHandlers) flow(c *gin.Context) (*claim.Flow, bool) {
	f, err := h.flows.GetOwned(c.Param("id"), mw.UserID(c))
	if err != nil {
		mw.Abort(c, err, h.log)
		return nil, false
	}
	return f, true
}

func (h *FlowHandlers) card(c *gin.Context) (artifact.Card, bool) {
	f, ok := h.flow(c)
	if !ok {
		return artifact.Card{}, false
	}
	rec, ok := f.Record()
	if !ok {
		mw.Abort(c, apperrors.NewConflictError("flow", "claim not accepted yet"), h.log)
		return artifact.Card{}, false
	}
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil || idx < 0 || idx >= len(rec.ChildTokens) {
		mw.Abort(c, apperrors.NewNotFoundError("card", c.Param("index")), h.log)
		return artifact.Card{}, false
	}
	return h.artifacts.Cards(rec.ChildTokens)[idx], true
}

func (h *FlowHandlers) mutate(c *gin.Context, fn func(f *claim.Flow) error) {
	f, ok := h.flow(c)
	if !ok {
		return
	}
	h.respond(c, f, fn(f), http.StatusOK)
}

// respond writes the snapshot when the flow absorbed err into its error phase and an
// error response when the action was refused.
func (h *FlowHandlers) respond(c *gin.Context, f *claim.Flow, err error, status int) {
	snap := f.Snapshot()
	if err != nil && (refused(err) || snap.Phase != dc.PhaseError) {
		mw.Abort(c, flowError(err), h.log)
		return
	}
	c.JSON(status, snap)
}

func refused(err error) bool {
	return errors.Is(err, claim.ErrAlreadySubmitted) ||
		errors.Is(err, claim.ErrNotReady) ||
		errors.Is(err, claim.ErrClosed) ||
		errors.Is(err, claim.ErrSkipDisabled)
}

func flowError(err error) error {
	switch {
	case errors.Is(err, claim.ErrAlreadySubmitted), errors.Is(err, claim.ErrNotReady):
		return apperrors.NewConflictError("flow", err.Error())
	case errors.Is(err, claim.ErrClosed):
		return apperrors.NewNotFoundError("flow", "closed")
	case errors.Is(err, claim.ErrSkipDisabled):
		return apperrors.NewNotFoundError("route", "skip")
	}
	return err
}
