package artifact

import (
	"fmt"
	"net/url"
	"strings"

	"passit-client/internal/domain/claim"
)

// Card is one distributable invitation built from a child token. Cards are derived on
// demand and never stored.
type Card struct {
	Index   int    `json:"index"`
	Token   string `json:"token"`
	Link    string `json:"link"`
	ShortID string `json:"short_id"`
}

// Number is the 1-based position shown on the card and in file names.
func (c Card) Number() int {
	return c.Index + 1
}

func (c Card) FileName(ext string) string {
	return fmt.Sprintf("PASS-IT-CARD-%d.%s", c.Number(), ext)
}

// NewCards builds one card per token, in order.
func NewCards(shareBase string, tokens []claim.Token) []Card {
	cards := make([]Card, 0, len(tokens))
	for i, t := range tokens {
		cards = append(cards, Card{
			Index:   i,
			Token:   t,
			Link:    LinkFor(shareBase, t),
			ShortID: ShortID(t),
		})
	}
	return cards
}

// LinkFor returns the claim link encoded in a card's QR.
func LinkFor(shareBase string, token claim.Token) string {
	return strings.TrimRight(shareBase, "/") + "/claim/" + url.PathEscape(token)
}

// ShortID abbreviates a token as its first 8 and last 4 characters.
func ShortID(token claim.Token) string {
	runes := []rune(token)
	if len(runes) <= 12 {
		return token
	}
	return string(runes[:8]) + "..." + string(runes[len(runes)-4:])
}

var linkMarkers = []string{"/claim/", "/c/"}

// TokenFromScan extracts a token from scanned text: a claim link, a short /c/ link
// or a bare token.
func TokenFromScan(raw string) (claim.Token, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	path := s
	if u, err := url.Parse(s); err == nil {
		path = u.EscapedPath()
	}
	for _, marker := range linkMarkers {
		i := strings.LastIndex(path, marker)
		if i < 0 {
			continue
		}
		rest := strings.Trim(path[i+len(marker):], "/")
		if j := strings.IndexByte(rest, '/'); j >= 0 {
			rest = rest[:j]
		}
		tok, err := url.PathUnescape(rest)
		if err != nil || strings.TrimSpace(tok) == "" {
			return "", false
		}
		return tok, true
	}

	s = strings.TrimRight(s, "/")
	if s == "" || strings.ContainsAny(s, "/ \t\r\n") {
		return "", false
	}
	return s, true
}
