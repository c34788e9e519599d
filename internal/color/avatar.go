// Package color derives placeholder avatar colors.
package color

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
)

// Avatar saturation and lightness keep initials readable on every hue.
const (
	avatarSaturation = 0.4
	avatarLightness  = 0.65
)

// ForEmail returns a stable "#RRGGBB" color for an account, used when the
// identity provider supplied no picture. Case is ignored so an address
// always maps to the same color.
func ForEmail(email string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(email))))
	hue := float64(h.Sum32() % 360)

	r, g, b := hslToRGB(hue, avatarSaturation, avatarLightness)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts hue in degrees and saturation/lightness in [0,1].
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := toByte(l)
		return v, v, v
	}

	h /= 360
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	return toByte(hueToChannel(p, q, h+1.0/3)),
		toByte(hueToChannel(p, q, h)),
		toByte(hueToChannel(p, q, h-1.0/3))
}

func hueToChannel(p, q, t float64) float64 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 0.5:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(v * 255))
}
