// Package window implements the guard-window rule that suppresses device
// accesses too close to the previous access on the same device.
package window

// ShouldSkip reports whether candidate lies inside the guard interval
// [max(0, prev-width), prev+width) around prev.
//
// A device whose whole extent fits inside one window (size <= width) never
// skips: the window cannot tell its positions apart.
func ShouldSkip(prev, candidate, size, width int64) bool {
	if size <= width {
		return false
	}

	left := int64(0)
	if prev > width {
		left = prev - width
	}
	right := prev + width
	if right < prev {
		// prev+width overflowed; the interval is open-ended.
		return candidate >= left
	}
	return left <= candidate && candidate < right
}

// Guard applies ShouldSkip with a fixed width.
type Guard struct {
	// Width is the window half-width in bytes.
	Width int64
}

// Skip reports whether candidate should be suppressed. A device that has
// not been visited yet (hasPrev false) never skips.
func (g Guard) Skip(prev int64, hasPrev bool, candidate, size int64) bool {
	if !hasPrev {
		return false
	}
	return ShouldSkip(prev, candidate, size, g.Width)
}
