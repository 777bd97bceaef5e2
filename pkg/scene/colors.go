package scene

import (
	"image/color"
	"strconv"
	"strings"
)

var named = map[string]color.RGBA{
	"black":  {0, 0, 0, 255},
	"white":  {255, 255, 255, 255},
	"gray":   {128, 128, 128, 255},
	"grey":   {128, 128, 128, 255},
	"red":    {255, 0, 0, 255},
	"green":  {0, 128, 0, 255},
	"blue":   {0, 0, 255, 255},
	"orange": {255, 165, 0, 255},
	"yellow": {255, 255, 0, 255},
	"purple": {128, 0, 128, 255},
	"cyan":   {0, 255, 255, 255},

	// slider shades, dark and light
	"dr": {153, 0, 0, 255},
	"dg": {0, 100, 0, 255},
	"db": {0, 0, 139, 255},
	"lr": {255, 128, 128, 255},
	"lg": {144, 238, 144, 255},
	"lb": {173, 216, 230, 255},
}

// ParseColor resolves a color name or a "#rrggbb" string. Unknown values
// resolve to gray and false.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := named[s]; ok {
		return c, true
	}
	if len(s) == 7 && s[0] == '#' {
		v, err := strconv.ParseUint(s[1:], 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
		}
	}
	return named["gray"], false
}

// NamedColor is ParseColor without the flag.
func NamedColor(s string) color.RGBA {
	c, _ := ParseColor(s)
	return c
}
