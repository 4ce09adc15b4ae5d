package scoring

import "math"

const xpPerLevelUnit = 100

// Level returns the level reached with xp experience: 1 for xp <= 0, otherwise
// floor(sqrt(xp/100)) + 1.
func Level(xp int64) int {
	if xp <= 0 {
		return 1
	}
	return int(isqrt(xp/xpPerLevelUnit)) + 1
}

// XPThreshold is the minimum experience at which Level returns level.
func XPThreshold(level int) int64 {
	if level <= 1 {
		return 0
	}
	n := int64(level - 1)
	return n * n * xpPerLevelUnit
}

// ProgressPercent is how far xp has advanced from the start of level towards the
// next one, clamped to [0, 100].
func ProgressPercent(xp int64, level int) float64 {
	lo := XPThreshold(level)
	hi := XPThreshold(level + 1)
	span := hi - lo
	if span <= 0 {
		return 100
	}
	p := float64(xp-lo) / float64(span) * 100
	return math.Max(0, math.Min(100, p))
}

// XPToNextLevel is the experience still needed to reach the level after the one
// xp currently grants.
func XPToNextLevel(xp int64) int64 {
	if xp < 0 {
		xp = 0
	}
	return XPThreshold(Level(xp)+1) - xp
}

// isqrt returns floor(sqrt(n)) for n >= 0 without floating point drift.
func isqrt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	r := int64(math.Sqrt(float64(n)))
	for r*r > n {
		r--
	}
	for (r+1)*(r+1) <= n {
		r++
	}
	return r
}
