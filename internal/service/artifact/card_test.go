package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCards(t *testing.T) {
	cards := NewCards("https://passit.example/", []string{"t1", "7f3a9c2e-11b4-4d5e-9a77-0c1d2e3f4a5b", "a b/c"})

	assert.Len(t, cards, 3)
	assert.Equal(t, Card{Index: 0, Token: "t1", Link: "https://passit.example/claim/t1", ShortID: "t1"}, cards[0])
	assert.Equal(t, "7f3a9c2e...4a5b", cards[1].ShortID)
	assert.Equal(t, "https://passit.example/claim/a%20b%2Fc", cards[2].Link)
	assert.Equal(t, "PASS-IT-CARD-3.png", cards[2].FileName("png"))
	assert.Empty(t, NewCards("https://passit.example", nil))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "", ShortID(""))
	assert.Equal(t, "123456789012", ShortID("123456789012"))
	assert.Equal(t, "12345678...0123", ShortID("1234567890123"))
	assert.Equal(t, "ключ-при...ение", ShortID("ключ-приглашение"))
	assert.Equal(t, "日本語のトークン", ShortID("日本語のトークン"))
}

func TestTokenFromScan(t *testing.T) {
	cases := []struct {
		raw   string
		token string
		ok    bool
	}{
		{"https://passit.example/claim/abc123", "abc123", true},
		{"https://passit.example/claim/abc123/", "abc123", true},
		{"  https://passit.example/claim/abc123?ref=x  ", "abc123", true},
		{"https://passit.example/c/xyz", "xyz", true},
		{"/claim/a%20b%2Fc", "a b/c", true},
		{"https://passit.example/claim/", "", false},
		{"abc123", "abc123", true},
		{"abc123/", "abc123", true},
		{"https://passit.example/about", "", false},
		{"two words", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		tok, ok := TokenFromScan(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.token, tok, tc.raw)
	}
}
