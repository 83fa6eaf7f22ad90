package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	listingModel "scrap-collect/models/listing"
	userModel "scrap-collect/models/user"
	"scrap-collect/services/lifecycle"
	"scrap-collect/services/listing_store"

	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"
)

type listingFinder interface {
	FindAll(ctx context.Context, filter listing_store.Filter) ([]listingModel.Listing, error)
}

// CategoryBreakdown is the collected volume and payout for one material
type CategoryBreakdown struct {
	Category    listingModel.ScrapType `json:"category"`
	DisplayName string                 `json:"display_name"`
	CollectedKg decimal.Decimal        `json:"collected_kg"`
	Payout      decimal.Decimal        `json:"payout"`
}

// MonthlySummary aggregates listings created within one calendar month
type MonthlySummary struct {
	Month         string              `json:"month"`
	From          time.Time           `json:"from"`
	To            time.Time           `json:"to"`
	TotalListings int                 `json:"total_listings"`
	Pending       int                 `json:"pending"`
	Scheduled     int                 `json:"scheduled"`
	Collected     int                 `json:"collected"`
	Cancelled     int                 `json:"cancelled"`
	CollectedKg   decimal.Decimal     `json:"collected_kg"`
	TotalPayout   decimal.Decimal     `json:"total_payout"`
	Categories    []CategoryBreakdown `json:"categories"`
}

type Service struct {
	listings listingFinder
}

func NewService(listings listingFinder) *Service {
	return &Service{listings: listings}
}

// MonthlySummary is staff-only and covers the month containing at, in at's location.
func (s *Service) MonthlySummary(ctx context.Context, caller userModel.Caller, at time.Time) (*MonthlySummary, error) {
	if !caller.IsStaff() {
		return nil, fmt.Errorf("%w: analytics are available to staff only", lifecycle.ErrUnauthorized)
	}

	month := now.With(at)
	from := month.BeginningOfMonth()
	to := month.EndOfMonth()

	listings, err := s.listings.FindAll(ctx, listing_store.Filter{
		CreatedFrom: from.UTC(),
		CreatedTo:   to.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load listings for %s: %w", from.Format("2006-01"), err)
	}

	summary := &MonthlySummary{
		Month:       from.Format("2006-01"),
		From:        from,
		To:          to,
		CollectedKg: decimal.Zero,
		TotalPayout: decimal.Zero,
	}
	byCategory := map[listingModel.ScrapType]*CategoryBreakdown{}

	for i := range listings {
		l := &listings[i]
		summary.TotalListings++

		switch l.Status {
		case listingModel.StatusPending:
			summary.Pending++
		case listingModel.StatusScheduled:
			summary.Scheduled++
		case listingModel.StatusCancelled:
			summary.Cancelled++
		case listingModel.StatusCollected:
			summary.Collected++
			if l.ActualKg == nil {
				continue
			}
			amount := l.PayoutAmount()
			summary.CollectedKg = summary.CollectedKg.Add(*l.ActualKg)
			summary.TotalPayout = summary.TotalPayout.Add(amount)

			row, ok := byCategory[l.Category]
			if !ok {
				row = &CategoryBreakdown{
					Category:    l.Category,
					DisplayName: l.Category.DisplayName(),
					CollectedKg: decimal.Zero,
					Payout:      decimal.Zero,
				}
				byCategory[l.Category] = row
			}
			row.CollectedKg = row.CollectedKg.Add(*l.ActualKg)
			row.Payout = row.Payout.Add(amount)
		}
	}

	summary.Categories = make([]CategoryBreakdown, 0, len(byCategory))
	for _, row := range byCategory {
		if row.CollectedKg.IsZero() {
			continue
		}
		summary.Categories = append(summary.Categories, *row)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		return summary.Categories[i].CollectedKg.GreaterThan(summary.Categories[j].CollectedKg)
	})
	return summary, nil
}
