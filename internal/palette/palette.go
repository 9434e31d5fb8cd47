// Package palette produces deterministic fallback colors for records that
// carry no explicit color of their own.
package palette

import (
	"fmt"
	"math"
)

// Generated colors share one saturation/lightness so only the hue varies;
// hues are partitioned evenly across the wheel, which keeps every pair of
// generated colors visually apart for any record count.
const (
	genSaturation = 0.68
	genLightness  = 0.52
)

// Assign returns n colors. The first len(seeds) slots reuse the seeds in
// order; the remaining slots take evenly-spread hues across 360 degrees.
// Output is positional: callers consume a slot only when the record at that
// position has no explicit color.
func Assign(n int, seeds []string) []string {
	if n <= 0 {
		return []string{}
	}

	out := make([]string, 0, n)
	for i := 0; i < n && i < len(seeds); i++ {
		out = append(out, seeds[i])
	}

	generated := n - len(out)
	for i := 0; i < generated; i++ {
		hue := float64(i) * 360 / float64(generated)
		out = append(out, hslHex(hue, genSaturation, genLightness))
	}
	return out
}

// hslHex converts an HSL triple (hue in degrees, s/l in [0,1]) to "#rrggbb".
func hslHex(h, s, l float64) string {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}

	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return fmt.Sprintf("#%02x%02x%02x",
		int(math.Round((r+m)*255)),
		int(math.Round((g+m)*255)),
		int(math.Round((b+m)*255)),
	)
}
