package textmatch

// Match is the best candidate found for a piece of text.
type Match struct {
	Candidate string
	Score     float64
}

// Corrector snaps recognized text onto the player and unit vocabularies.
type Corrector struct {
	players Vocabulary
	units   Vocabulary
	cutoff  float64
}

// NewCorrector builds a Corrector. Candidates scoring below cutoff are never
// returned.
func NewCorrector(players, units Vocabulary, cutoff float64) *Corrector {
	return &Corrector{players: players, units: units, cutoff: cutoff}
}

// Cutoff returns the minimum accepted score.
func (c *Corrector) Cutoff() float64 {
	return c.cutoff
}

// Correct normalizes raw and returns the best candidate of the category's
// vocabulary. ok is false when the normalized text is empty, the vocabulary
// is empty, or no candidate reaches the cutoff.
func (c *Corrector) Correct(raw string, category Category) (string, bool) {
	m, ok := c.Best(Normalize(raw), category)
	if !ok {
		return "", false
	}
	return m.Candidate, true
}

// Best scores already-normalized text against the category vocabulary. On
// equal scores the earlier candidate wins.
func (c *Corrector) Best(text string, category Category) (Match, bool) {
	if text == "" {
		return Match{}, false
	}
	vocab := c.units
	if category == CategoryPlayer {
		vocab = c.players
	}
	score := ScorerFor(category)

	var (
		best  Match
		found bool
	)
	for _, candidate := range vocab.entries {
		s := score(text, candidate)
		if s < c.cutoff {
			continue
		}
		if !found || s > best.Score {
			best = Match{Candidate: candidate, Score: s}
			found = true
		}
	}
	return best, found
}
