package model

// PlayerID identifies a player profile
type PlayerID int

// Player is a person who takes part in play sessions
type Player struct {
	ID     PlayerID `json:"id"`
	Name   string   `json:"name"`
	Image  string   `json:"image,omitempty"`
	Badges []Badge  `json:"badges,omitempty"`
}

// PlayerStatistics are the backend-computed figures for a single player
type PlayerStatistics struct {
	PlayCount         int   `json:"playCount"`
	WinCount          int   `json:"winCount"`
	TotalPlayedTime   int   `json:"totalPlayedTime"`
	DistinctGameCount int   `json:"distinctGameCount"`
	MostPlayedGame    *Link `json:"mostPlayedGame,omitempty"`
}
