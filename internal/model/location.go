package model

// LocationID identifies a place where sessions are played
type LocationID int

// Location is a place where sessions are played
type Location struct {
	ID        LocationID `json:"id"`
	Name      string     `json:"name"`
	PlayCount int        `json:"playCount"`
}
