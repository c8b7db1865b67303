// Package dice provides the randomness abstraction and the Shadowrun 5E
// dice-pool mechanics: success counting, glitch classification, and the
// Rule of Six (exploding sixes).
package dice

import "sort"

const (
	// Sides is the number of faces on a Shadowrun die.
	Sides = 6
	// SuccessThreshold is the minimum face value that counts as a success.
	SuccessThreshold = 5
	// FailValue is the face value that counts as a failure ("a one").
	FailValue = 1
	// ExplodeValue is the face value that triggers an extra die when the
	// Rule of Six is in play.
	ExplodeValue = 6

	// maxExplodingDice bounds the total dice rolled by RollExploding. The
	// tabletop rule has no cap; with the 100-die input cap the geometric
	// explosion chain makes this bound unreachable in practice. Deliberate
	// deviation so a broken Source cannot spin forever.
	maxExplodingDice = 10000
)

// Outcome is the classified result of a single dice-pool roll.
// Immutable once built: a second render of the same roll must never reroll.
//
// Invariant: Successes + Fails <= len(Rolls); CriticalGlitch implies Glitch.
type Outcome struct {
	// Dice is the pool size the classification was made against. For an
	// exploding roll this stays the requested pool size even though
	// len(Rolls) may exceed it.
	Dice int
	// Limit is the success cap, nil when unlimited.
	Limit *int
	// Rolls holds the individual face values, sorted descending.
	Rolls []int
	// Successes is the count of rolls >= SuccessThreshold.
	Successes int
	// Fails is the count of rolls == FailValue.
	Fails int
	// Glitch is true iff Fails > 0 and Fails >= floor(Dice/2).
	Glitch bool
	// CriticalGlitch is true iff Glitch and Successes == 0.
	CriticalGlitch bool
	// Explosions is the count of sixes that added an extra die
	// (exploding rolls only, zero otherwise).
	Explosions int
}

// HitLimit reports whether the raw success count exceeds the limit.
//
// Postcondition: true iff Limit is set and Successes > *Limit. Reported
// successes are never clamped; only this flag changes.
func (o Outcome) HitLimit() bool {
	return o.Limit != nil && o.Successes > *o.Limit
}

// Classify builds an Outcome from raw face values against a pool size.
//
// The pool size is passed separately so a partial reroll (Second Chance) can
// be reclassified against the original pool rather than the rerolled subset.
//
// Precondition: dice >= 0; every value in rolls is in [1, Sides].
// Postcondition: result.Rolls is a new slice sorted descending.
func Classify(rolls []int, dice int, limit *int) Outcome {
	sorted := make([]int, len(rolls))
	copy(sorted, rolls)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	o := Outcome{
		Dice:  dice,
		Limit: limit,
		Rolls: sorted,
	}
	for _, v := range sorted {
		if v >= SuccessThreshold {
			o.Successes++
		}
		if v == FailValue {
			o.Fails++
		}
	}
	if o.Fails > 0 && o.Fails >= dice/2 {
		o.Glitch = true
		if o.Successes == 0 {
			o.CriticalGlitch = true
		}
	}
	return o
}

// RollPool rolls dice six-sided dice and classifies the pool.
//
// Precondition: src must be non-nil; dice >= 0.
// Postcondition: len(result.Rolls) == dice; result.Explosions == 0.
func RollPool(src Source, dice int, limit *int) Outcome {
	rolls := make([]int, dice)
	for i := range rolls {
		rolls[i] = src.Intn(Sides) + 1
	}
	return Classify(rolls, dice, limit)
}

// RollExploding rolls dice six-sided dice under the Rule of Six: every six
// counts as a success and adds one additional die, recursively.
//
// Precondition: src must be non-nil; dice >= 0.
// Postcondition: len(result.Rolls) >= dice; result.Successes >= result.Explosions;
// result.Dice == dice (classification pool size is the requested pool).
func RollExploding(src Source, dice int, limit *int) Outcome {
	var rolls []int
	explosions := 0
	remaining := dice
	for remaining > 0 && len(rolls) < maxExplodingDice {
		v := src.Intn(Sides) + 1
		rolls = append(rolls, v)
		remaining--
		if v == ExplodeValue {
			explosions++
			remaining++
		}
	}
	o := Classify(rolls, dice, limit)
	o.Explosions = explosions
	return o
}

// RollSum rolls dice n-sided dice and returns the raw values in roll order.
// Used for initiative and generic sum-of-dice rolls, which have no
// success/glitch concept.
//
// Precondition: src must be non-nil; dice >= 0; sides >= 2.
func RollSum(src Source, dice, sides int) []int {
	rolls := make([]int, dice)
	for i := range rolls {
		rolls[i] = src.Intn(sides) + 1
	}
	return rolls
}

// Sum returns the arithmetic sum of the given face values.
func Sum(rolls []int) int {
	total := 0
	for _, v := range rolls {
		total += v
	}
	return total
}

// Limit returns a pointer to v, for building limited Outcomes inline.
func Limit(v int) *int { return &v }
