// Package scoring holds the pure formulas that turn completed work into points,
// experience and levels.
package scoring

const (
	BasePoints      = 10
	EfficiencyBonus = 5

	// EfficientThreshold is the duration in seconds (25 minutes) below which a
	// completion earns the efficiency bonus.
	EfficientThreshold = 1500

	ComplexityBonus       = 20
	ComplexityMinSubtasks = 5
)

// IsEfficient reports whether a completion of d seconds earns the efficiency bonus.
func IsEfficient(d int64) bool {
	return d < EfficientThreshold
}

// SubtaskPoints returns the points for completing a subtask in d seconds.
func SubtaskPoints(d int64) int {
	if IsEfficient(d) {
		return BasePoints + EfficiencyBonus
	}
	return BasePoints
}

// XPForDuration is the experience awarded to a category: one XP per second.
func XPForDuration(d int64) int64 {
	if d < 0 {
		return 0
	}
	return d
}

// TaskBonus returns the complexity bonus for a task with total subtasks of which
// done are completed.
func TaskBonus(total, done int) int {
	if total >= ComplexityMinSubtasks && done == total {
		return ComplexityBonus
	}
	return 0
}
