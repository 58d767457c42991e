// Package scoring implements the step-based level-delta scoring engine of
// materializing landlord-winning/losing score windows from a
// GameScoringParameters configuration, looking up the level deltas for a
// given non-landlord point total, and the threshold-explanation helpers
// used by the stateless compute RPC.
package scoring

// BonusLevelPolicy governs whether the landlord team receives an extra
// level when it won with fewer members than the configured team size
// (FindingFriends with unclaimed friend slots).
type BonusLevelPolicy int

const (
	BonusLevelNone BonusLevelPolicy = iota
	BonusLevelForSmallerLandlordTeam
)

// GameScoringParameters configures the score-window materialization.
type GameScoringParameters struct {
	// StepSizePerDeck is the number of non-landlord points, per
	// configured deck, that make up one scoring window's width.
	StepSizePerDeck int
	// StepAdjustments optionally overrides the landlord delta assigned
	// to each successive landlord-winning window (index 0 = the window
	// nearest zero). Windows beyond the end of this slice continue
	// decrementing by 1 from the last supplied value. An empty slice
	// decrements uniformly by 1 starting from NumStepsToNonLandlordTurnover.
	StepAdjustments []int
	// NumStepsToNonLandlordTurnover is both the number of
	// landlord-winning windows below the turnover point and the
	// landlord delta assigned to the very first (lowest) window.
	NumStepsToNonLandlordTurnover int
	// DeadzoneSize is the width, in points, carved out of the end of the
	// last landlord-winning window and assigned a delta of zero (no
	// level changes either way) before scoring turns over to the
	// non-landlord side.
	DeadzoneSize int
	// TruncateZeroCrossingWindow enables the DeadzoneSize carve-out; when
	// false the last landlord window runs all the way to the turnover
	// point and non-landlord scoring begins at +1 immediately after it.
	TruncateZeroCrossingWindow bool
	BonusLevelPolicy           BonusLevelPolicy
}

// DefaultParameters returns the standard calibration: 20
// points per deck per step, 3 steps before turnover, a 5-point deadzone.
func DefaultParameters() GameScoringParameters {
	return GameScoringParameters{
		StepSizePerDeck:               20,
		NumStepsToNonLandlordTurnover: 3,
		DeadzoneSize:                  5,
		TruncateZeroCrossingWindow:    true,
	}
}

// LandlordWinningScoreSegment is a contiguous range of non-landlord point
// totals in which the landlord team won and advances by LandlordDelta.
type LandlordWinningScoreSegment struct {
	Start, End    int // [Start, End)
	LandlordDelta int
}

// LandlordLosingScoreSegment is a contiguous range in which the landlord
// team did not win outright: NonLandlordDelta is zero in the deadzone and
// positive once non-landlord scoring has turned over.
type LandlordLosingScoreSegment struct {
	Start, End       int // [Start, End)
	NonLandlordDelta int
}

func step(p GameScoringParameters, numDecks int) int {
	s := p.StepSizePerDeck * numDecks
	if s < 1 {
		s = 1
	}
	return s
}

func landlordDeltaForStep(p GameScoringParameters, i int) int {
	n := p.NumStepsToNonLandlordTurnover
	if len(p.StepAdjustments) > 0 {
		if i < len(p.StepAdjustments) {
			return p.StepAdjustments[i]
		}
		last := p.StepAdjustments[len(p.StepAdjustments)-1]
		d := last - (i - len(p.StepAdjustments) + 1)
		if d < 0 {
			d = 0
		}
		return d
	}
	d := n - i
	if d < 0 {
		d = 0
	}
	return d
}

// Windows materializes the landlord-winning and landlord-losing segments:
// up to NumStepsToNonLandlordTurnover winning windows below the natural
// turnover point, the deadzone (when configured), and
// NumStepsToNonLandlordTurnover+1 losing windows above it, tiling a
// contiguous range starting at 0 with no gap or overlap. Point totals
// past this range are handled by ComputeLevelDeltas, which extends the
// outermost window by shifting.
func Windows(p GameScoringParameters, numDecks int) ([]LandlordWinningScoreSegment, []LandlordLosingScoreSegment) {
	s := step(p, numDecks)
	n := p.NumStepsToNonLandlordTurnover
	if n < 0 {
		n = 0
	}

	var winning []LandlordWinningScoreSegment
	var losing []LandlordLosingScoreSegment

	cursor := 0
	for i := 0; i < n; i++ {
		delta := landlordDeltaForStep(p, i)
		end := cursor + s
		if delta <= 0 {
			break
		}
		if i == n-1 && p.TruncateZeroCrossingWindow && p.DeadzoneSize > 0 && p.DeadzoneSize < s {
			end -= p.DeadzoneSize
		}
		winning = append(winning, LandlordWinningScoreSegment{Start: cursor, End: end, LandlordDelta: delta})
		cursor = end
	}

	turnover := n * s
	if p.TruncateZeroCrossingWindow && p.DeadzoneSize > 0 && p.DeadzoneSize < s && cursor < turnover {
		losing = append(losing, LandlordLosingScoreSegment{Start: cursor, End: turnover, NonLandlordDelta: 0})
		cursor = turnover
	}

	// n+1 non-landlord windows of positive delta (1, 2, ..., n+1);
	// ComputeLevelDeltas extends the last one by shifting.
	for j := 0; j < n+1; j++ {
		end := cursor + s
		losing = append(losing, LandlordLosingScoreSegment{Start: cursor, End: end, NonLandlordDelta: j + 1})
		cursor = end
	}
	return winning, losing
}

// GameScoreResult is the outcome of looking up a non-landlord point total
// against the materialized windows.
type GameScoreResult struct {
	LandlordWon      bool
	LandlordDelta    int
	NonLandlordDelta int
}

// ComputeLevelDeltas looks up nonLandlordPoints against the windows
// materialized (and, if necessary, propagated) for p and numDecks. It is
// total: every integer non-landlord point value resolves to a defined
// result, propagating further windows indefinitely in either direction.
func ComputeLevelDeltas(p GameScoringParameters, numDecks, nonLandlordPoints int) GameScoreResult {
	winning, losing := Windows(p, numDecks)
	s := step(p, numDecks)

	if nonLandlordPoints < 0 {
		nonLandlordPoints = 0
	}

	for _, w := range winning {
		if nonLandlordPoints >= w.Start && nonLandlordPoints < w.End {
			return GameScoreResult{LandlordWon: true, LandlordDelta: w.LandlordDelta}
		}
	}
	for _, l := range losing {
		if nonLandlordPoints >= l.Start && nonLandlordPoints < l.End {
			return GameScoreResult{LandlordWon: false, NonLandlordDelta: l.NonLandlordDelta}
		}
	}

	// Past the materialized range: propagate further windows by
	// shifting by the window width and adjusting delta by +/-1 per step.
	if len(losing) > 0 {
		last := losing[len(losing)-1]
		if nonLandlordPoints >= last.End {
			stepsPast := (nonLandlordPoints-last.End)/s + 1
			return GameScoreResult{NonLandlordDelta: last.NonLandlordDelta + stepsPast}
		}
	}
	if len(winning) > 0 {
		first := winning[0]
		if nonLandlordPoints < first.Start {
			stepsBefore := (first.Start-nonLandlordPoints-1)/s + 1
			return GameScoreResult{LandlordWon: true, LandlordDelta: first.LandlordDelta + stepsBefore}
		}
	}
	return GameScoreResult{}
}

// ApplyBonus adds one landlord level when policy and the caller-supplied
// landlordTeamSmaller condition both hold; it is a no-op otherwise,
// including when the landlord team did not win.
func ApplyBonus(p GameScoringParameters, result GameScoreResult, landlordTeamSmaller bool) GameScoreResult {
	if p.BonusLevelPolicy == BonusLevelForSmallerLandlordTeam && result.LandlordWon && landlordTeamSmaller {
		result.LandlordDelta++
	}
	return result
}

// NextRelevantScore steps in increments of 5 from current and returns the
// first point total at which ComputeLevelDeltas's result changes.
func NextRelevantScore(p GameScoringParameters, numDecks, current int) int {
	base := ComputeLevelDeltas(p, numDecks, current)
	n := current
	for {
		n += 5
		if ComputeLevelDeltas(p, numDecks, n) != base {
			return n
		}
	}
}

// Threshold is one row of the explain table: the first point total at
// which the result takes on Result.
type Threshold struct {
	Point  int
	Result GameScoreResult
}

// ExplainScoring iterates NextRelevantScore from 0 until totalDeckPoints,
// yielding a complete thresholds table that partitions [0, totalDeckPoints].
func ExplainScoring(p GameScoringParameters, numDecks, totalDeckPoints int) []Threshold {
	out := []Threshold{{Point: 0, Result: ComputeLevelDeltas(p, numDecks, 0)}}
	n := 0
	for n < totalDeckPoints {
		n = NextRelevantScore(p, numDecks, n)
		if n > totalDeckPoints {
			break
		}
		out = append(out, Threshold{Point: n, Result: ComputeLevelDeltas(p, numDecks, n)})
	}
	return out
}
