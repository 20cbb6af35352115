package lenstrace

import "math"

// wvlToRGB maps a wavelength in nm onto an approximate display color, using
// a piecewise-linear fit of the visible spectrum (380-780 nm) with intensity
// falloff toward both ends. Wavelengths outside the visible range map to a
// dim neutral gray so they remain distinguishable in plots.
func wvlToRGB(wvl Real) RGB {
	var r, g, b Real
	switch {
	case wvl >= 380 && wvl < 440:
		r = -(wvl - 440) / (440 - 380)
		b = 1
	case wvl >= 440 && wvl < 490:
		g = (wvl - 440) / (490 - 440)
		b = 1
	case wvl >= 490 && wvl < 510:
		g = 1
		b = -(wvl - 510) / (510 - 490)
	case wvl >= 510 && wvl < 580:
		r = (wvl - 510) / (580 - 510)
		g = 1
	case wvl >= 580 && wvl < 645:
		r = 1
		g = -(wvl - 645) / (645 - 580)
	case wvl >= 645 && wvl <= 780:
		r = 1
	default:
		return RGB{0.3, 0.3, 0.3}
	}

	// attenuate toward the edges of the visible range
	var factor Real = 1
	switch {
	case wvl >= 380 && wvl < 420:
		factor = 0.3 + 0.7*(wvl-380)/(420-380)
	case wvl > 700 && wvl <= 780:
		factor = 0.3 + 0.7*(780-wvl)/(780-700)
	}

	const gamma = 0.8
	adj := func(c Real) Real {
		if c == 0 {
			return 0
		}
		return math.Pow(c*factor, gamma)
	}
	return RGB{adj(r), adj(g), adj(b)}.clamp01()
}
