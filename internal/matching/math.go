package matching

import (
	"math"
	"math/big"

	"github.com/me/jamsched/pkg/model"
)

// Saturated is the LCM reported when the true value does not fit in int64.
// It exceeds every finite hyperperiod bound.
const Saturated int64 = math.MaxInt64

// GCD returns the greatest common divisor of a and b.
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of periods, computed incrementally.
// The LCM of no periods is 0. Overflow saturates to Saturated.
func LCM(periods ...int64) int64 {
	var l int64
	for _, p := range periods {
		if p <= 0 {
			continue
		}
		if l == 0 {
			l = p
			continue
		}
		q := p / GCD(l, p)
		if l > Saturated/q {
			return Saturated
		}
		l *= q
	}
	return l
}

// Utilization returns the exact sum of computation/period over the periodic
// tasks. One-shot tasks contribute nothing.
func Utilization(tasks []*model.TaskSpec) *big.Rat {
	u := new(big.Rat)
	for _, t := range tasks {
		if !t.IsPeriodic() {
			continue
		}
		u.Add(u, big.NewRat(t.Computation, t.Period))
	}
	return u
}

// Hyperperiod returns the LCM of the periodic tasks' periods.
func Hyperperiod(tasks []*model.TaskSpec) int64 {
	periods := make([]int64, 0, len(tasks))
	for _, t := range tasks {
		if t.IsPeriodic() {
			periods = append(periods, t.Period)
		}
	}
	return LCM(periods...)
}

var one = big.NewRat(1, 1)

// feasible reports whether a worker load respects utilization <= 1 and, when
// bound is positive, hyperperiod <= bound. It returns the violated bound.
func feasible(util *big.Rat, hyperperiod, bound int64) (model.EvictionReason, bool) {
	if bound > 0 && hyperperiod > bound {
		return model.ReasonHyperperiod, false
	}
	if util.Cmp(one) > 0 {
		return model.ReasonUtilization, false
	}
	return "", true
}
