package colorseg

import (
	"math"

	"github.com/pkg/errors"
)

// Match is the result of a nearest exemplar query.
type Match struct {
	// Class is the index of the winning class.
	Class int

	// Distance is the distance from the query to the closest exemplar of
	// the winning class. Lower is better; zero is an exact match.
	Distance float64
}

// MinDistance returns the smallest distance from query to any exemplar.
// An empty exemplar set yields +Inf.
func MinDistance(query ColorDistribution, exemplars []ColorDistribution) float64 {
	minDist := math.Inf(1)
	for i := range exemplars {
		if dist := query.Distance(exemplars[i]); dist < minDist {
			minDist = dist
		}
	}
	return minDist
}

// Nearest finds the class holding the exemplar closest to query. Each class
// is scored by its closest exemplar, not an average, so a class with
// several distinct looks matches any of them. The best class is only
// replaced on strict improvement, so ties go to the lowest index. Classes
// must pass ClassList.Validate.
func Nearest(query ColorDistribution, classes ClassList) (Match, error) {
	if err := classes.Validate(); err != nil {
		return Match{}, err
	}
	return nearest(query, classes), nil
}

// nearest is Nearest without validation, for callers that validated the
// class list once up front.
func nearest(query ColorDistribution, classes ClassList) Match {
	best := Match{Class: 0, Distance: MinDistance(query, classes[0].Exemplars)}
	for i := 1; i < len(classes); i++ {
		if dist := MinDistance(query, classes[i].Exemplars); dist < best.Distance {
			best = Match{Class: i, Distance: dist}
		}
	}
	return best
}

// validateClasses wraps ClassList.Validate with context.
func validateClasses(classes ClassList) error {
	return errors.Wrap(classes.Validate(), "cannot classify")
}
