package profile

// Entry is one leaderboard row.
type Entry struct {
	Address string `json:"wallet_address"`
	Points  int64  `json:"points"`
}

// Profile is the dashboard view of one address as reported by the ledger.
type Profile struct {
	Address      string   `json:"address"`
	Rank         int      `json:"rank"`
	Points       int64    `json:"points"`
	ActiveTokens []string `json:"myCodes"`
	Leaderboard  []Entry  `json:"globalLeaderboard"`
}
