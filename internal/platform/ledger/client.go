package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/timeout"

	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/domain/claim"
	"passit-client/internal/domain/profile"
)

// Client talks JSON over HTTP to the ledger service.
type Client struct {
	cli *gentleman.Client
	log zerolog.Logger
}

// New creates a ledger client for baseURL, e.g. https://ledger.example/api.
func New(baseURL string, requestTimeout time.Duration, log zerolog.Logger) *Client {
	cli := gentleman.New().URL(strings.TrimRight(baseURL, "/"))
	cli.SetHeader("Accept", "application/json")
	if requestTimeout > 0 {
		cli.Use(timeout.Request(requestTimeout))
	}
	return &Client{
		cli: cli,
		log: log.With().Str("component", "ledger").Logger(),
	}
}

var _ claim.Ledger = (*Client)(nil)

// ValidateToken checks that token is known and unconsumed.
func (c *Client) ValidateToken(ctx context.Context, token claim.Token) error {
	req := c.cli.Get()
	req.AddPath("/validate/" + token)
	resp, err := c.send(ctx, req)
	if err != nil {
		return apperrors.NewTransportError("validate", err)
	}
	defer resp.Close()
	if resp.Ok {
		return nil
	}
	body := resp.Bytes()
	if resp.StatusCode >= http.StatusInternalServerError {
		return apperrors.NewTransportError("validate", statusError(resp.StatusCode, body))
	}
	c.log.Debug().Int("status", resp.StatusCode).Msg("Token rejected")
	return apperrors.NewInvalidTokenError(apperrors.ExtractMessage(body)).
		WithDetail("status", resp.StatusCode)
}

type claimResponse struct {
	Success   *bool             `json:"success"`
	ClaimID   string            `json:"claimId"`
	NewTokens []json.RawMessage `json:"newTokens"`
}

// SubmitClaim posts one claim. It is never retried.
func (c *Client) SubmitClaim(ctx context.Context, r claim.Request) (claim.Record, error) {
	req := c.cli.Post()
	req.AddPath("/claim")
	req.JSON(r)
	resp, err := c.send(ctx, req)
	if err != nil {
		return claim.Record{}, apperrors.NewTransportError("claim", err)
	}
	defer resp.Close()

	body := resp.Bytes()
	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return claim.Record{}, apperrors.NewInvalidTokenError(apperrors.ExtractMessage(body)).
			WithDetail("status", resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return claim.Record{}, apperrors.NewTransportError("claim", statusError(resp.StatusCode, body))
	case !resp.Ok:
		return claim.Record{}, apperrors.NewClaimRejectedError(apperrors.ExtractMessage(body)).
			WithDetail("status", resp.StatusCode)
	}

	var out claimResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return claim.Record{}, apperrors.NewTransportError("claim", fmt.Errorf("decode claim response: %w", err))
	}
	if out.Success != nil && !*out.Success {
		return claim.Record{}, apperrors.NewClaimRejectedError(apperrors.ExtractMessage(body))
	}
	if out.ClaimID == "" {
		return claim.Record{}, apperrors.NewTransportError("claim", fmt.Errorf("claim response without claimId"))
	}

	rec := claim.Record{ClaimID: out.ClaimID, ChildTokens: make([]string, 0, len(out.NewTokens))}
	for _, raw := range out.NewTokens {
		if t := NormalizeToken(raw); t != "" {
			rec.ChildTokens = append(rec.ChildTokens, t)
		}
	}
	c.log.Info().Str("claim_id", rec.ClaimID).Int("child_tokens", len(rec.ChildTokens)).Msg("Claim accepted")
	return rec, nil
}

// ClaimStatus fetches the transaction status of claimID.
func (c *Client) ClaimStatus(ctx context.Context, claimID string) (claim.TxStatus, error) {
	req := c.cli.Get()
	req.AddPath("/claim/" + claimID + "/status")
	resp, err := c.send(ctx, req)
	if err != nil {
		return claim.TxStatus{}, apperrors.NewTransportError("status", err)
	}
	defer resp.Close()
	body := resp.Bytes()
	if !resp.Ok {
		return claim.TxStatus{}, apperrors.NewTransportError("status", statusError(resp.StatusCode, body))
	}

	var st claim.TxStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return claim.TxStatus{}, apperrors.NewTransportError("status", fmt.Errorf("decode status: %w", err))
	}
	switch st.Status {
	case claim.TxPending, claim.TxSuccess, claim.TxFailed:
	default:
		return claim.TxStatus{}, apperrors.NewTransportError("status", fmt.Errorf("unknown status %q", st.Status))
	}
	if st.ClaimID == "" {
		st.ClaimID = claimID
	}
	return st, nil
}

// Profile fetches rank, points, active codes and the global leaderboard for address.
func (c *Client) Profile(ctx context.Context, address string) (profile.Profile, error) {
	req := c.cli.Get()
	req.AddPath("/profile/" + address)
	resp, err := c.send(ctx, req)
	if err != nil {
		return profile.Profile{}, apperrors.NewTransportError("profile", err)
	}
	defer resp.Close()
	body := resp.Bytes()
	if resp.StatusCode == http.StatusNotFound {
		return profile.Profile{}, apperrors.NewNotFoundError("profile", address)
	}
	if !resp.Ok {
		return profile.Profile{}, apperrors.NewTransportError("profile", statusError(resp.StatusCode, body))
	}

	var p profile.Profile
	if err := json.Unmarshal(body, &p); err != nil {
		return profile.Profile{}, apperrors.NewTransportError("profile", fmt.Errorf("decode profile: %w", err))
	}
	p.Address = address
	return p, nil
}

// Leaderboard fetches the global ranking.
func (c *Client) Leaderboard(ctx context.Context) ([]profile.Entry, error) {
	req := c.cli.Get()
	req.AddPath("/leaderboard")
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, apperrors.NewTransportError("leaderboard", err)
	}
	defer resp.Close()
	body := resp.Bytes()
	if !resp.Ok {
		return nil, apperrors.NewTransportError("leaderboard", statusError(resp.StatusCode, body))
	}

	var out struct {
		Leaderboard []profile.Entry `json:"leaderboard"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, apperrors.NewTransportError("leaderboard", fmt.Errorf("decode leaderboard: %w", err))
	}
	return out.Leaderboard, nil
}

// send binds ctx to the request. Paths are added unescaped: gentleman stores them in
// URL.Path and net/http escapes them on the wire.
func (c *Client) send(ctx context.Context, req *gentleman.Request) (*gentleman.Response, error) {
	req.Context.SetCancelContext(ctx)
	return req.Send()
}

// NormalizeToken turns one element of newTokens into a plain token string.
// Strings are taken verbatim, objects yield their "token" field (or their compact JSON),
// numbers and booleans their literal text.
func NormalizeToken(raw json.RawMessage) string {
	v := gjson.ParseBytes(raw)
	switch v.Type {
	case gjson.String:
		return v.String()
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw
	case gjson.JSON:
		if v.IsObject() {
			if t := v.Get("token"); t.Exists() && t.Type == gjson.String {
				return t.String()
			}
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return strings.TrimSpace(string(raw))
		}
		return buf.String()
	default:
		return ""
	}
}

func statusError(code int, body []byte) error {
	if msg := apperrors.ExtractMessage(body); msg != "" {
		return fmt.Errorf("ledger responded %d: %s", code, msg)
	}
	return fmt.Errorf("ledger responded %d", code)
}
