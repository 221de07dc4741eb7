package format

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestGetPercentage(t *testing.T) {
	tests := []struct {
		value, total float64
		want         int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{100, 100, 100},
		{0, 0, 0},
		{5, 0, 0},
		{3, 2, 150},
		{1, 8, 13},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v of %v", tt.value, tt.total), func(t *testing.T) {
			assert.Equal(t, tt.want, GetPercentage(tt.value, tt.total))
		})
	}
}

func TestRoundDecimal(t *testing.T) {
	assert.Nil(t, RoundDecimal(nil, 5))
	assert.Nil(t, RoundDecimal(nil, 0.5))

	tests := []struct {
		value, increment, want float64
	}{
		{7, 5, 5},
		{8, 5, 10},
		{4.27, 0.5, 4.5},
		{4.2, 0.5, 4},
		{3.6, 1, 4},
		{3.6, 0, 4},
		{0.27, 0.1, 0.3},
	}
	for _, tt := range tests {
		got := RoundDecimal(ptr(tt.value), tt.increment)
		require.NotNil(t, got)
		assert.Equal(t, tt.want, *got, "RoundDecimal(%v, %v)", tt.value, tt.increment)
	}
}

var (
	hslPattern = regexp.MustCompile(`^hsl\((\d+), 85%, 35%\)$`)
	rgbPattern = regexp.MustCompile(`^rgb\((\d+),(\d+),(\d+)\)$`)
)

func TestStringToHsl(t *testing.T) {
	assert.Equal(t, "hsl(0, 85%, 35%)", StringToHsl(""))
	assert.Equal(t, "hsl(97, 85%, 35%)", StringToHsl("a"))
	assert.Equal(t, "hsl(225, 85%, 35%)", StringToHsl("ab"))

	names := []string{"Alice", "Bob", "Terraforming Mars", "Wingspan", "Ærøskøbing", "a very long player name that overflows the hash"}
	for _, name := range names {
		got := StringToHsl(name)
		assert.Equal(t, got, StringToHsl(name), "deterministic")

		m := hslPattern.FindStringSubmatch(got)
		require.NotNil(t, m, got)
		var hue int
		fmt.Sscan(m[1], &hue)
		assert.GreaterOrEqual(t, hue, 0)
		assert.Less(t, hue, 360)
	}

	assert.NotEqual(t, StringToHsl("Alice"), StringToHsl("Bob"))
}

func TestStringToRgb(t *testing.T) {
	assert.Equal(t, "rgb(0,0,0)", StringToRgb(""))
	assert.Equal(t, "rgb(33,12,0)", StringToRgb("ab"))

	for _, name := range []string{"Alice", "Bob", "Catan", "a very long player name that overflows the hash"} {
		got := StringToRgb(name)
		assert.Equal(t, got, StringToRgb(name))

		m := rgbPattern.FindStringSubmatch(got)
		require.NotNil(t, m, got)
		for _, channel := range m[1:] {
			var v int
			fmt.Sscan(channel, &v)
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 255)
		}
	}
}

func TestDuration(t *testing.T) {
	tests := map[int]string{
		-3:             "0m",
		0:              "0m",
		45:             "45m",
		60:             "1h",
		65:             "1h 5m",
		24 * 60:        "1d",
		2*24*60 + 190:  "2d 3h",
		23*60 + 59:     "23h 59m",
	}
	for minutes, want := range tests {
		assert.Equal(t, want, Duration(minutes), "Duration(%d)", minutes)
	}
}

func TestDate(t *testing.T) {
	ts := time.Date(2024, time.March, 9, 14, 5, 7, 0, time.UTC)

	assert.Equal(t, "09-03-2024", Date(ts, "DD-MM-YYYY"))
	assert.Equal(t, "03/09/24", Date(ts, "MM/DD/YY"))
	assert.Equal(t, "14:05", Date(ts, "HH:mm"))
	assert.Equal(t, "2:05 PM", Date(ts, "h:mm A"))
	assert.Equal(t, "Mar 9, 2024", Date(ts, "MMM D, YYYY"))
	assert.Equal(t, "", Date(time.Time{}, "DD-MM-YYYY"))
}

func TestDateLiterals(t *testing.T) {
	ts := time.Date(2024, time.March, 9, 14, 5, 7, 0, time.UTC)

	assert.Equal(t, "9 at 14:05", Date(ts, "D [at] HH:mm"))
	assert.Equal(t, "9 at 14:05", Date(ts, "D at HH:mm"), "words that are not all tokens stay literal")
	assert.Equal(t, "Saturday, week 1 of Mar", Date(ts, "dddd, [week 1 of] MMM"))
	assert.Equal(t, "20240309", Date(ts, "YYYYMMDD"))
	assert.Equal(t, "09.03.", Date(ts, "DD.MM."))
	assert.Equal(t, "9 [open", Date(ts, "D [[open"))
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "€12.50", Currency(12.5, "EUR"))
	assert.Equal(t, "$3.00", Currency(3, "usd"))
	assert.Equal(t, "-£1.25", Currency(-1.25, "GBP"))
	assert.Equal(t, "SEK 99.90", Currency(99.9, "SEK"))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AL", Initials("Ada Lovelace"))
	assert.Equal(t, "AB", Initials("anne marie-bell"))
	assert.Equal(t, "C", Initials("cher"))
	assert.Equal(t, "?", Initials("   "))
	assert.Equal(t, "ÉZ", Initials("émile zola"))
}
