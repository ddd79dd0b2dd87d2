package types

// Article is a raw news item as delivered by a news provider, before
// classification. Description and Content may be empty depending on the source.
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

// ArticleSentiment pairs an article title with its classified signal and the
// 1-based rank the article held in its source listing. Rank is assigned by the
// provider's ordering and never recomputed here.
type ArticleSentiment struct {
	Title  string
	Signal int // -1 bad, 0 neutral, +1 good
	Rank   int // 1 = best within its own list
}

// RankBy selects the ordering a news provider applies to its results.
type RankBy string

const (
	RankByPopularity RankBy = "popularity"
	RankByRelevancy  RankBy = "relevancy"
)

// TradeAction is a closed set of trade directions. The numeric values match
// the sign of the fused signal that produces them.
type TradeAction int

const (
	Sell    TradeAction = -1
	Nothing TradeAction = 0
	Buy     TradeAction = 1
)

func (a TradeAction) String() string {
	switch a {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "NOTHING"
	}
}

// PricePoint is one daily close. Date is the trading day in YYYY-MM-DD form;
// missing trading days are simply absent from a series.
type PricePoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// Report is the read-only result of a finished simulation run.
type Report struct {
	StartDate      string         `json:"start_date"`
	EndDate        string         `json:"end_date"`
	Days           int            `json:"days"`
	InitialBalance float64        `json:"initial_balance"`
	FinalBalance   float64        `json:"final_balance"`
	StockValue     float64        `json:"stock_value"`
	TotalValue     float64        `json:"total_value"`
	NetGain        float64        `json:"net_gain"`
	Holdings       map[string]int `json:"holdings"`
	TradesExecuted int            `json:"trades_executed"`
	TradesRejected int            `json:"trades_rejected"`
	DaysSkipped    int            `json:"days_skipped"`
}
