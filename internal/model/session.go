package model

import "time"

// SessionID identifies a recorded play session
type SessionID int

// SessionFlag marks notable sessions computed by the backend
type SessionFlag string

const (
	SessionFlagLongest      SessionFlag = "longest"
	SessionFlagShortest     SessionFlag = "shortest"
	SessionFlagHighestScore SessionFlag = "highestScore"
	SessionFlagLowestScore  SessionFlag = "lowestScore"
)

// PlayerSession is one player's participation in a session
type PlayerSession struct {
	PlayerID  PlayerID `json:"playerId"`
	Won       bool     `json:"won"`
	FirstPlay bool     `json:"firstPlay"`
	Score     *float64 `json:"score,omitempty"`
	IsBot     *bool    `json:"isBot,omitempty"`
}

// Session is one recorded instance of playing a game
type Session struct {
	ID             SessionID       `json:"id"`
	GameID         GameID          `json:"gameId"`
	LocationID     LocationID      `json:"locationId"`
	Start          time.Time       `json:"start"`
	Minutes        int             `json:"minutes"`
	Comment        string          `json:"comment,omitempty"`
	Ended          bool            `json:"ended"`
	PlayerSessions []PlayerSession `json:"playerSessions"`
	Flags          []SessionFlag   `json:"flags,omitempty"`
}

// Winners returns the ids of the players that won the session
func (s *Session) Winners() []PlayerID {
	var winners []PlayerID
	for _, ps := range s.PlayerSessions {
		if ps.Won {
			winners = append(winners, ps.PlayerID)
		}
	}
	return winners
}

// HasFlag reports whether the backend marked the session with flag
func (s *Session) HasFlag(flag SessionFlag) bool {
	for _, f := range s.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// PlayerIDs returns the ids of every participant
func (s *Session) PlayerIDs() []PlayerID {
	ids := make([]PlayerID, 0, len(s.PlayerSessions))
	for _, ps := range s.PlayerSessions {
		ids = append(ids, ps.PlayerID)
	}
	return ids
}

// Play is the legacy quick-log payload accepted by POST /play
type Play struct {
	GameID         GameID          `json:"gameId"`
	LocationID     LocationID      `json:"locationId"`
	Start          time.Time       `json:"start"`
	Minutes        int             `json:"minutes"`
	PlayerSessions []PlayerSession `json:"playerSessions"`
}
