// Package ledgertest provides an in-memory ledger API for tests.
package ledgertest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"passit-client/internal/domain/claim"
	"passit-client/internal/domain/profile"
)

// Route names accepted by Stub and Delay.
const (
	RouteValidate    = "validate"
	RouteClaim       = "claim"
	RouteStatus      = "status"
	RouteProfile     = "profile"
	RouteLeaderboard = "leaderboard"
)

type forced struct {
	status int
	body   interface{}
}

// Server is a fake ledger. Tokens are single use, claims get sequential ids
// and status responses are replayed from per-claim scripts.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	tokens      map[string]bool // token -> consumed
	newTokens   []interface{}
	statuses    map[string][]claim.TxStatus
	profiles    map[string]profile.Profile
	leaderboard []profile.Entry
	forced      map[string]forced
	delays      map[string]time.Duration
	calls       map[string]int
	claims      []claim.Request
	nextClaim   int
}

// New starts a fake ledger that is closed when the test ends.
func New(t testing.TB) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		tokens:    make(map[string]bool),
		newTokens: []interface{}{"child-token-1", "child-token-2", "child-token-3"},
		statuses:  make(map[string][]claim.TxStatus),
		profiles:  make(map[string]profile.Profile),
		forced:    make(map[string]forced),
		delays:    make(map[string]time.Duration),
		calls:     make(map[string]int),
	}

	r := gin.New()
	r.GET("/validate/:token", s.wrap(RouteValidate, s.validate))
	r.POST("/claim", s.wrap(RouteClaim, s.claim))
	r.GET("/claim/:id/status", s.wrap(RouteStatus, s.status))
	r.GET("/profile/:address", s.wrap(RouteProfile, s.profile))
	r.GET("/leaderboard", s.wrap(RouteLeaderboard, s.board))

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// AddTokens registers unconsumed tokens.
func (s *Server) AddTokens(tokens ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tokens {
		s.tokens[t] = false
	}
}

// SetNewTokens sets the raw newTokens array returned by successful claims.
func (s *Server) SetNewTokens(tokens ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newTokens = tokens
}

// ScriptStatus queues status responses for claimID. The last one repeats forever.
func (s *Server) ScriptStatus(claimID string, seq ...claim.TxStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[claimID] = append([]claim.TxStatus(nil), seq...)
}

// SetProfile stores the profile returned for address.
func (s *Server) SetProfile(address string, p profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[address] = p
}

// SetLeaderboard stores the global ranking.
func (s *Server) SetLeaderboard(entries ...profile.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leaderboard = entries
}

// Stub forces route to answer with status and body until cleared with status 0.
func (s *Server) Stub(route string, status int, body interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.forced, route)
		return
	}
	s.forced[route] = forced{status: status, body: body}
}

// Delay holds every response on route for d.
func (s *Server) Delay(route string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[route] = d
}

// Calls returns how many requests route has received.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// Claims returns the claim requests received so far.
func (s *Server) Claims() []claim.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]claim.Request(nil), s.claims...)
}

func (s *Server) wrap(route string, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.calls[route]++
		f, isForced := s.forced[route]
		delay := s.delays[route]
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-c.Request.Context().Done():
				return
			}
		}
		if isForced {
			if route == RouteClaim {
				// stubbed claims are still recorded
				var req claim.Request
				if err := c.ShouldBindJSON(&req); err == nil {
					s.mu.Lock()
					s.claims = append(s.claims, req)
					s.mu.Unlock()
				}
			}
			c.JSON(f.status, f.body)
			return
		}
		h(c)
	}
}

func (s *Server) validate(c *gin.Context) {
	s.mu.Lock()
	consumed, known := s.tokens[c.Param("token")]
	s.mu.Unlock()

	switch {
	case !known:
		c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
	case consumed:
		c.JSON(http.StatusGone, gin.H{"error": "Token already used"})
	default:
		c.JSON(http.StatusOK, gin.H{"valid": true})
	}
}

func (s *Server) claim(c *gin.Context) {
	var req claim.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.claims = append(s.claims, req)

	consumed, known := s.tokens[req.Token]
	switch {
	case !known:
		c.JSON(http.StatusNotFound, gin.H{"error": "Token not found"})
		return
	case consumed:
		c.JSON(http.StatusGone, gin.H{"error": "Token already used"})
		return
	case req.Proof == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": "Captcha required"})
		return
	}
	s.tokens[req.Token] = true
	s.nextClaim++
	id := fmt.Sprintf("claim-%d", s.nextClaim)
	c.JSON(http.StatusOK, gin.H{"success": true, "claimId": id, "newTokens": s.newTokens})
}

func (s *Server) status(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	seq := s.statuses[id]
	var st claim.TxStatus
	switch len(seq) {
	case 0:
		st = claim.TxStatus{ClaimID: id, Status: claim.TxSuccess, TxHash: "0x" + id}
	case 1:
		st = seq[0]
	default:
		st = seq[0]
		s.statuses[id] = seq[1:]
	}
	s.mu.Unlock()

	if st.ClaimID == "" {
		st.ClaimID = id
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) profile(c *gin.Context) {
	s.mu.Lock()
	p, ok := s.profiles[c.Param("address")]
	board := s.leaderboard
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}
	if p.Leaderboard == nil {
		p.Leaderboard = board
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) board(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.leaderboard
	if entries == nil {
		entries = []profile.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
