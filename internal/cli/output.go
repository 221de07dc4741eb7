package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mcoot/boardgametracker/internal/format"
	"github.com/mcoot/boardgametracker/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
		o.printJSON(map[string]string{"message": msg})
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

// PrintWarning writes a warning to stderr in text mode; JSON output carries
// the result state instead
func (o *Output) PrintWarning(msg string) {
	if o.format != OutputJSON {
		fmt.Fprintf(o.errW, "Warning: %s\n", msg)
	}
}

// PrintError writes err to w, as JSON when the JSON format is selected
func PrintError(w io.Writer, err error) {
	if cfg != nil && cfg.Output == OutputJSON {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{
				"message": err.Error(),
				"kind":    errorKind(err),
			},
		})
		fmt.Fprintln(w, string(data))
		return
	}
	fmt.Fprintf(w, "Error: %s\n", err)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrNotFound):
		return "not_found"
	case errors.Is(err, model.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, model.ErrInvalid):
		return "invalid"
	case errors.Is(err, model.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case []model.Game:
		o.printGames(v)
	case *model.Game:
		o.printGame(v)
	case GameStats:
		o.printGameStats(v)
	case SessionPage:
		o.printSessionPage(v)
	case []TopPlayerRow:
		o.printTopPlayers(v)
	case []model.Player:
		o.printPlayers(v)
	case *model.Player:
		o.printPlayer(v)
	case *model.PlayerStatistics:
		o.printPlayerStats(v)
	case []model.Location:
		o.printLocations(v)
	case *model.Location:
		fmt.Fprintf(o.w, "Location: %s (%d)\n", v.Name, v.ID)
	case *model.Session:
		o.printSession(v)
	case *model.Settings:
		o.printSettings(v)
	case []model.Language:
		o.printLanguages(v)
	case *model.Environment:
		fmt.Fprintf(o.w, "Environment: %s\n", v.EnvironmentName)
		fmt.Fprintf(o.w, "Version: %s\n", v.Version)
		fmt.Fprintf(o.w, "Statistics: %s\n", yesNo(v.EnableStatistics))
	case []model.Badge:
		o.printBadges(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
		if v.Version != "" {
			fmt.Fprintf(o.w, "Backend: %s (%s)\n", v.Version, v.Environment)
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// GameStats pairs game statistics with the currency prices are shown in
type GameStats struct {
	*model.GameStatistics
	currency string
}

// SessionPage is one page of a session history
type SessionPage struct {
	Page  int             `json:"page"`
	Pages int             `json:"pages"`
	Count int             `json:"count"`
	Items []model.Session `json:"items"`
}

// TopPlayerRow is a top player with their name resolved
type TopPlayerRow struct {
	model.TopPlayer
	Name       string `json:"name"`
	WinPercent int    `json:"winPercent"`
}

// HealthResult reports whether the backend answered
type HealthResult struct {
	Status      string `json:"status"`
	Environment string `json:"environment,omitempty"`
	Version     string `json:"version,omitempty"`
}

func (o *Output) table() *tabwriter.Writer {
	return tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
}

func (o *Output) printGames(games []model.Game) {
	if len(games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tTITLE\tSTATE\tPLAYERS\tSCORING")
	for _, g := range games {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", g.ID, g.Title, g.State.Label(), playerRange(g.MinPlayers, g.MaxPlayers), yesNo(g.HasScoring))
	}
	_ = tw.Flush()
}

func (o *Output) printGame(g *model.Game) {
	fmt.Fprintf(o.w, "Game: %s (%d)\n", g.Title, g.ID)
	fmt.Fprintf(o.w, "State: %s\n", g.State.Label())
	if g.YearPublished != nil {
		fmt.Fprintf(o.w, "Published: %d\n", *g.YearPublished)
	}
	if players := playerRange(g.MinPlayers, g.MaxPlayers); players != "" {
		fmt.Fprintf(o.w, "Players: %s\n", players)
	}
	if g.MinPlayTime != nil {
		fmt.Fprintf(o.w, "Play time: %s\n", format.Duration(*g.MinPlayTime))
	}
	if rating := format.RoundDecimal(g.Rating, 0.1); rating != nil {
		fmt.Fprintf(o.w, "Rating: %.1f\n", *rating)
	}
	if g.BggID != nil {
		fmt.Fprintf(o.w, "BoardGameGeek: %d\n", *g.BggID)
	}
	fmt.Fprintf(o.w, "Scoring: %s\n", yesNo(g.HasScoring))
	if len(g.Categories) > 0 {
		fmt.Fprintf(o.w, "Categories: %s\n", linkNames(g.Categories))
	}
	if len(g.Mechanics) > 0 {
		fmt.Fprintf(o.w, "Mechanics: %s\n", linkNames(g.Mechanics))
	}
}

func (o *Output) printGameStats(s GameStats) {
	fmt.Fprintf(o.w, "Plays: %d\n", s.PlayCount)
	fmt.Fprintf(o.w, "Total play time: %s\n", format.Duration(s.TotalPlayedTime))
	fmt.Fprintf(o.w, "Unique players: %d\n", s.UniquePlayerCount)
	if s.PricePerPlay != nil {
		fmt.Fprintf(o.w, "Price per play: %s\n", format.Currency(*s.PricePerPlay, s.currency))
	}
	if high := format.RoundDecimal(s.HighScore, 1); high != nil {
		fmt.Fprintf(o.w, "High score: %.0f\n", *high)
	}
	if avg := format.RoundDecimal(s.AverageScore, 0.5); avg != nil {
		fmt.Fprintf(o.w, "Average score: %g\n", *avg)
	}
	if s.LastPlayed != nil {
		fmt.Fprintf(o.w, "Last played: %s\n", s.LastPlayed.Format("2006-01-02"))
	}
}

func (o *Output) printSessionPage(p SessionPage) {
	if len(p.Items) == 0 {
		fmt.Fprintln(o.w, "No sessions")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tSTART\tDURATION\tPLAYERS\tWINNERS")
	for _, s := range p.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", s.ID, s.Start.Format("2006-01-02 15:04"), format.Duration(s.Minutes), len(s.PlayerSessions), playerIDs(s.Winners()))
	}
	_ = tw.Flush()
	fmt.Fprintf(o.w, "Page %d of %d (%d sessions)\n", p.Page, p.Pages, p.Count)
}

func (o *Output) printTopPlayers(rows []TopPlayerRow) {
	if len(rows) == 0 {
		fmt.Fprintln(o.w, "No plays yet")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "PLAYER\tPLAYS\tWINS\tWIN %")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d%%\n", r.Name, r.PlayCount, r.Wins, r.WinPercent)
	}
	_ = tw.Flush()
}

func (o *Output) printPlayers(players []model.Player) {
	if len(players) == 0 {
		fmt.Fprintln(o.w, "No players")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tNAME\tBADGES")
	for _, p := range players {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", p.ID, p.Name, len(p.Badges))
	}
	_ = tw.Flush()
}

func (o *Output) printPlayer(p *model.Player) {
	fmt.Fprintf(o.w, "Player: %s (%d)\n", p.Name, p.ID)
	if p.Image != "" {
		fmt.Fprintf(o.w, "Image: %s\n", p.Image)
	}
	if len(p.Badges) > 0 {
		fmt.Fprintf(o.w, "Badges (%d):\n", len(p.Badges))
		for _, b := range p.Badges {
			fmt.Fprintf(o.w, "  - %s %s\n", b.Type, levelName(b.Level))
		}
	}
}

func (o *Output) printPlayerStats(s *model.PlayerStatistics) {
	fmt.Fprintf(o.w, "Plays: %d\n", s.PlayCount)
	fmt.Fprintf(o.w, "Wins: %d (%d%%)\n", s.WinCount, format.GetPercentage(float64(s.WinCount), float64(s.PlayCount)))
	fmt.Fprintf(o.w, "Total play time: %s\n", format.Duration(s.TotalPlayedTime))
	fmt.Fprintf(o.w, "Distinct games: %d\n", s.DistinctGameCount)
	if s.MostPlayedGame != nil {
		fmt.Fprintf(o.w, "Most played: %s\n", s.MostPlayedGame.Name)
	}
}

func (o *Output) printLocations(locations []model.Location) {
	if len(locations) == 0 {
		fmt.Fprintln(o.w, "No locations")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tNAME\tPLAYS")
	for _, l := range locations {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", l.ID, l.Name, l.PlayCount)
	}
	_ = tw.Flush()
}

func (o *Output) printSession(s *model.Session) {
	fmt.Fprintf(o.w, "Session: %d\n", s.ID)
	fmt.Fprintf(o.w, "Game: %d\n", s.GameID)
	fmt.Fprintf(o.w, "Location: %d\n", s.LocationID)
	fmt.Fprintf(o.w, "Start: %s\n", s.Start.Format("2006-01-02 15:04"))
	fmt.Fprintf(o.w, "Duration: %s\n", format.Duration(s.Minutes))
	if s.Comment != "" {
		fmt.Fprintf(o.w, "Comment: %s\n", s.Comment)
	}
	fmt.Fprintf(o.w, "Players (%d):\n", len(s.PlayerSessions))
	for _, ps := range s.PlayerSessions {
		line := fmt.Sprintf("  - %d", ps.PlayerID)
		if ps.Score != nil {
			line += fmt.Sprintf(" score %g", *ps.Score)
		}
		if ps.Won {
			line += " [won]"
		}
		if ps.FirstPlay {
			line += " [first play]"
		}
		fmt.Fprintln(o.w, line)
	}
}

func (o *Output) printSettings(s *model.Settings) {
	fmt.Fprintf(o.w, "Date format: %s\n", s.DateFormat)
	fmt.Fprintf(o.w, "Time format: %s\n", s.TimeFormat)
	fmt.Fprintf(o.w, "Currency: %s\n", s.Currency)
	fmt.Fprintf(o.w, "Language: %s\n", s.Language)
}

func (o *Output) printLanguages(languages []model.Language) {
	for _, l := range languages {
		fmt.Fprintf(o.w, "%s\t%s\n", l.Key, l.TranslationKey)
	}
}

func (o *Output) printBadges(badges []model.Badge) {
	if len(badges) == 0 {
		fmt.Fprintln(o.w, "No badges")
		return
	}
	tw := o.table()
	fmt.Fprintln(tw, "ID\tTYPE\tLEVEL")
	for _, b := range badges {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", b.ID, b.Type, levelName(b.Level))
	}
	_ = tw.Flush()
}

func playerRange(minPlayers, maxPlayers *int) string {
	switch {
	case minPlayers == nil && maxPlayers == nil:
		return ""
	case minPlayers == nil:
		return fmt.Sprintf("up to %d", *maxPlayers)
	case maxPlayers == nil || *maxPlayers == *minPlayers:
		return fmt.Sprintf("%d", *minPlayers)
	default:
		return fmt.Sprintf("%d-%d", *minPlayers, *maxPlayers)
	}
}

func linkNames(links []model.Link) string {
	names := make([]string, len(links))
	for i, l := range links {
		names[i] = l.Name
	}
	return strings.Join(names, ", ")
}

func playerIDs(ids []model.PlayerID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

func levelName(l model.BadgeLevel) string {
	if l == model.BadgeLevelNone {
		return "-"
	}
	return string(l)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
