package textmatch

import "strings"

// Category selects the vocabulary and scorer used for a field.
type Category int

const (
	// CategoryPlayer covers player name fields.
	CategoryPlayer Category = iota
	// CategoryUnit covers unit name fields.
	CategoryUnit
)

func (c Category) String() string {
	switch c {
	case CategoryPlayer:
		return "player"
	case CategoryUnit:
		return "unit"
	default:
		return "unknown"
	}
}

// CategoryForField maps a field key such as "player3_name" or "player1_unit"
// to its category. Keys naming a player name select CategoryPlayer; every
// other key is a unit field.
func CategoryForField(field string) Category {
	if strings.Contains(field, "name") {
		return CategoryPlayer
	}
	return CategoryUnit
}

// Scorer rates how well candidate b explains recognized text a. Higher is
// better; scores may be negative.
type Scorer func(a, b string) float64

const (
	playerLengthPenalty = 5
	unitLengthPenalty   = 10
	unitLiteralWeight   = 0.7
	unitPatternWeight   = 0.3
)

// PlayerScore is literal similarity minus 5 points per rune of length
// difference. It is symmetric in its arguments.
func PlayerScore(a, b string) float64 {
	return Ratio(a, b) - float64(playerLengthPenalty*runeLenDiff(a, b))
}

// UnitScore blends literal similarity (70%) with character-class skeleton
// similarity (30%) and subtracts 10 points per rune of length difference.
func UnitScore(a, b string) float64 {
	literal := Ratio(a, b)
	skeleton := Ratio(Pattern(a), Pattern(b))
	return unitLiteralWeight*literal + unitPatternWeight*skeleton - float64(unitLengthPenalty*runeLenDiff(a, b))
}

// ScorerFor returns the scorer for a category.
func ScorerFor(c Category) Scorer {
	if c == CategoryPlayer {
		return PlayerScore
	}
	return UnitScore
}
