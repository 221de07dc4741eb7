package layout

// FlashMessage represents a one-time toast shown after a redirect
type FlashMessage struct {
	Type    string // "success", "warning", "error", "info"
	Message string
}

// Nav sections highlighted in the menu
const (
	NavGames     = "games"
	NavPlayers   = "players"
	NavLocations = "locations"
	NavSessions  = "sessions"
	NavBadges    = "badges"
	NavSettings  = "settings"
)

// PageData contains common data for all pages
type PageData struct {
	Title string
	Nav   string
	Flash *FlashMessage
	// URL is refetched when Topic reports an invalidation. An empty Topic
	// leaves the page static.
	URL   string
	Topic string
}
