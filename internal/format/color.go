package format

import (
	"fmt"
	"unicode/utf16"
)

// stringHash mixes the UTF-16 code units of s as hash = c + (hash<<5) - hash,
// where the shift operates on the low 32 bits of the running hash.
func stringHash(s string) int64 {
	var hash int64
	for _, c := range utf16.Encode([]rune(s)) {
		shifted := int64(int32(uint32(hash)) << 5)
		hash = int64(c) + (shifted - hash)
	}
	return hash
}

// StringToHsl derives a stable avatar colour from s. The empty string
// yields hue 0.
func StringToHsl(s string) string {
	hue := stringHash(s) % 360
	if hue < 0 {
		hue += 360
	}
	return fmt.Sprintf("hsl(%d, 85%%, 35%%)", hue)
}

// StringToRgb derives a stable colour from s with one byte of the hash per
// channel.
func StringToRgb(s string) string {
	hash := int32(uint32(stringHash(s)))
	var ch [3]int32
	for i := range ch {
		ch[i] = (hash >> (8 * i)) & 0xff
	}
	return fmt.Sprintf("rgb(%d,%d,%d)", ch[0], ch[1], ch[2])
}
