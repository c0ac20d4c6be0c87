package market

import (
	"time"

	"github.com/google/uuid"
)

const newsFeedCap = 100

// NewsKind tags where a feed item came from.
type NewsKind string

const (
	NewsKindCompany  NewsKind = "company"
	NewsKindSector   NewsKind = "sector"
	NewsKindEarnings NewsKind = "earnings"
	NewsKindDividend NewsKind = "dividend"
)

// NewsItem is one immutable feed entry.
type NewsItem struct {
	ID       string    `json:"id"`
	Symbol   string    `json:"symbol,omitempty"`
	Headline string    `json:"headline"`
	Impact   float64   `json:"impact"`
	Kind     NewsKind  `json:"kind"`
	At       time.Time `json:"at"`
}

func newNewsItem(symbol, headline string, impact float64, kind NewsKind) NewsItem {
	return NewsItem{
		ID:       uuid.NewString(),
		Symbol:   symbol,
		Headline: headline,
		Impact:   impact,
		Kind:     kind,
		At:       time.Now().UTC(),
	}
}

// newsFeed keeps the newest items first, bounded.
type newsFeed struct {
	items []NewsItem
}

func (f *newsFeed) push(items ...NewsItem) {
	for _, item := range items {
		f.items = append([]NewsItem{item}, f.items...)
	}
	if len(f.items) > newsFeedCap {
		f.items = f.items[:newsFeedCap]
	}
}

func (f *newsFeed) list() []NewsItem {
	out := make([]NewsItem, len(f.items))
	copy(out, f.items)
	return out
}
