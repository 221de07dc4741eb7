package components

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/boardgametracker/internal/format"
	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/web/templates"
)

// Date formats t with the date pattern of the request settings
func Date(ctx context.Context, t time.Time) string {
	return format.Date(t, templates.SettingsFrom(ctx).DateFormat)
}

// DateTime formats t with the date and time patterns of the request
// settings; the zero time renders empty
func DateTime(ctx context.Context, t time.Time) string {
	if t.IsZero() {
		return ""
	}
	s := templates.SettingsFrom(ctx)
	return format.Date(t, s.DateFormat) + " " + format.Date(t, s.TimeFormat)
}

// Currency renders amount in the currency of the request settings
func Currency(ctx context.Context, amount float64) string {
	return format.Currency(amount, templates.SettingsFrom(ctx).Currency)
}

// Rounded rounds v to increment; nil renders empty
func Rounded(v *float64, increment float64) string {
	r := format.RoundDecimal(v, increment)
	if r == nil {
		return ""
	}
	return Float(*r)
}

// Float prints f without trailing zeros
func Float(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// OptFloat prints an optional number; nil renders empty
func OptFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return Float(*f)
}

// Int prints an optional number; nil renders empty
func Int(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

// Background is the inline style of an image placeholder coloured by name
func Background(name string) string {
	return "background-color: " + format.StringToHsl(name)
}

// ImageURL is where uploaded images are served from
func ImageURL(image string) string {
	return "/images/" + image
}

// Pages lists page numbers 1..n
func Pages(n int) []int {
	out := make([]int, 0, max(n, 0))
	for i := 1; i <= n; i++ {
		out = append(out, i)
	}
	return out
}

// PageURL addresses one page of a paged table
func PageURL(basePath string, page int) string {
	return basePath + "?page=" + strconv.Itoa(page)
}

// MoreURL addresses one page of the load more list. seen lists the
// sessions the previous page showed so shifted rows are not repeated.
func MoreURL(basePath string, page int, seen []model.SessionID) string {
	u := basePath + "/more?page=" + strconv.Itoa(page)
	if len(seen) == 0 {
		return u
	}
	ids := make([]string, len(seen))
	for i, id := range seen {
		ids[i] = ID(id)
	}
	return u + "&seen=" + strings.Join(ids, ",")
}

// SelectorVals is the hx-vals payload of a selector row button
func SelectorVals(op string, index int) string {
	return fmt.Sprintf(`{"op":%q,"index":"%d"}`, op, index)
}

// BadgeClass is the class list of a badge chip
func BadgeClass(b model.Badge) string {
	class := "badge badge-" + string(b.Type)
	if b.Level != model.BadgeLevelNone {
		class += " level-" + string(b.Level)
	}
	return class
}

// ID prints a record id
func ID[T ~int](id T) string {
	return strconv.Itoa(int(id))
}
