package ranking

import (
	"math"

	"sentiment-backtester/internal/types"
)

// RankingFactor identifies which source listing(s) an article appeared in.
// Each factor carries a fixed weight applied to that article's contribution.
type RankingFactor int

const (
	Popularity RankingFactor = iota
	Relevancy
	Both
)

// Weight returns the fixed contribution weight for the factor.
func (f RankingFactor) Weight() float64 {
	switch f {
	case Popularity:
		return 0.5
	case Relevancy:
		return 0.3
	case Both:
		return 0.8
	}
	return 0
}

func (f RankingFactor) String() string {
	switch f {
	case Popularity:
		return "popularity"
	case Relevancy:
		return "relevancy"
	case Both:
		return "both"
	}
	return "unknown"
}

// TitleMatcher decides whether two article titles refer to the same story.
// The weighting logic is independent of the matching policy.
type TitleMatcher interface {
	Match(a, b string) bool
}

// ExactMatcher matches titles by exact string equality.
type ExactMatcher struct{}

func (ExactMatcher) Match(a, b string) bool { return a == b }

// Aggregator fuses two independently ranked sentiment lists into one scalar.
type Aggregator struct {
	matcher TitleMatcher
}

// NewAggregator creates an Aggregator. A nil matcher defaults to exact title
// equality.
func NewAggregator(m TitleMatcher) *Aggregator {
	if m == nil {
		m = ExactMatcher{}
	}
	return &Aggregator{matcher: m}
}

// Factorize reduces the popularity- and relevancy-ranked lists to a single
// fused value. An article found in both lists is weighted once, with the Both
// factor, during the popularity pass; the relevancy pass only adds articles
// unique to the relevancy list. Contributions are signal * weight * normalized
// rank, where rank is normalized against the length of the list the article
// came from.
func (g *Aggregator) Factorize(popularity, relevancy []types.ArticleSentiment) float64 {
	fused := 0.0

	for _, p := range popularity {
		factor := Popularity
		if g.contains(relevancy, p.Title) {
			factor = Both
		}
		fused += float64(p.Signal) * factor.Weight() * normalizedRank(p.Rank, len(popularity))
	}

	for _, r := range relevancy {
		if g.contains(popularity, r.Title) {
			continue
		}
		fused += float64(r.Signal) * Relevancy.Weight() * normalizedRank(r.Rank, len(relevancy))
	}

	return fused
}

func (g *Aggregator) contains(list []types.ArticleSentiment, title string) bool {
	for _, a := range list {
		if g.matcher.Match(a.Title, title) {
			return true
		}
	}
	return false
}

// normalizedRank scales a 1-based rank into [0,1). Rank 1 maps to 0, so the
// top-ranked article contributes nothing; the historical scoring behaved this
// way and downstream expectations depend on it, so it is kept as is.
func normalizedRank(rank, size int) float64 {
	if size == 0 {
		return 0
	}
	return float64(rank-1) / float64(size)
}

// Action maps the sign of a fused signal onto a trade direction.
func Action(fused float64) types.TradeAction {
	switch {
	case fused > 0:
		return types.Buy
	case fused < 0:
		return types.Sell
	}
	return types.Nothing
}

// Quantity scales a fused signal into a whole-share order size. Zero is a
// valid result and means no executable order even when a direction exists.
func Quantity(fused float64) int {
	return int(math.Floor(math.Abs(fused) * 10))
}
