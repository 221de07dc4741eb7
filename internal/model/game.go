package model

import "time"

// GameID identifies a game in the collection
type GameID int

// GameState is the ownership state of a game
type GameState string

const (
	GameStateWanted          GameState = "wanted"
	GameStateOwned           GameState = "owned"
	GameStatePreviouslyOwned GameState = "previouslyOwned"
	GameStateNotOwned        GameState = "notOwned"
	GameStateForTrade        GameState = "forTrade"
)

// GameStates lists every ownership state in display order
var GameStates = []GameState{
	GameStateOwned,
	GameStateWanted,
	GameStateForTrade,
	GameStatePreviouslyOwned,
	GameStateNotOwned,
}

// Valid reports whether s is a known ownership state
func (s GameState) Valid() bool {
	for _, known := range GameStates {
		if s == known {
			return true
		}
	}
	return false
}

// Label returns a human readable name for the state
func (s GameState) Label() string {
	switch s {
	case GameStateWanted:
		return "Wanted"
	case GameStateOwned:
		return "Owned"
	case GameStatePreviouslyOwned:
		return "Previously owned"
	case GameStateNotOwned:
		return "Not owned"
	case GameStateForTrade:
		return "For trade"
	default:
		return string(s)
	}
}

// Link is a simple id+name reference to a category, mechanic, person or expansion
type Link struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Game is a board game in the collection
type Game struct {
	ID            GameID     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	YearPublished *int       `json:"yearPublished,omitempty"`
	MinPlayers    *int       `json:"minPlayers,omitempty"`
	MaxPlayers    *int       `json:"maxPlayers,omitempty"`
	MinPlayTime   *int       `json:"minPlayTime,omitempty"`
	MaxPlayTime   *int       `json:"maxPlayTime,omitempty"`
	MinAge        *int       `json:"minAge,omitempty"`
	Rating        *float64   `json:"rating,omitempty"`
	Weight        *float64   `json:"weight,omitempty"`
	BggID         *int       `json:"bggId,omitempty"`
	State         GameState  `json:"state"`
	HasScoring    bool       `json:"hasScoring"`
	PricePaid     *float64   `json:"pricePaid,omitempty"`
	AdditionDate  *time.Time `json:"additionDate,omitempty"`
	Image         string     `json:"image,omitempty"`
	Categories    []Link     `json:"categories,omitempty"`
	Mechanics     []Link     `json:"mechanics,omitempty"`
	People        []Link     `json:"people,omitempty"`
	Expansions    []Link     `json:"expansions,omitempty"`
}

// BggImport is the request payload for importing a game by BoardGameGeek id
type BggImport struct {
	BggID        int        `json:"bggId"`
	State        GameState  `json:"state"`
	Price        *float64   `json:"price,omitempty"`
	AdditionDate *time.Time `json:"additionDate,omitempty"`
	HasScoring   bool       `json:"hasScoring"`
}

// GameStatistics are the backend-computed figures for a single game
type GameStatistics struct {
	PlayCount         int        `json:"playCount"`
	TotalPlayedTime   int        `json:"totalPlayedTime"`
	PricePerPlay      *float64   `json:"pricePerPlay,omitempty"`
	UniquePlayerCount int        `json:"uniquePlayerCount"`
	HighScore         *float64   `json:"highScore,omitempty"`
	AverageScore      *float64   `json:"averageScore,omitempty"`
	AveragePlayTime   *float64   `json:"averagePlayTime,omitempty"`
	LastPlayed        *time.Time `json:"lastPlayed,omitempty"`
	ExpansionCount    int        `json:"expansionCount"`
}

// TopPlayer is one row of a game's leaderboard
type TopPlayer struct {
	PlayerID  PlayerID `json:"playerId"`
	PlayCount int      `json:"playCount"`
	Wins      int      `json:"wins"`
}
