package pricing

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	listingModel "scrap-collect/models/listing"
)

var ErrUnknownCategory = errors.New("unknown scrap category")

// Table resolves the current rupee price per kilogram for a category.
type Table interface {
	PriceForCategory(category listingModel.ScrapType) (int64, error)
}

// Entry is one row of the published price table
type Entry struct {
	Category    listingModel.ScrapType `json:"category"`
	DisplayName string                 `json:"display_name"`
	PricePerKg  int64                  `json:"price_per_kg"`
}

var defaultPrices = map[listingModel.ScrapType]int64{
	listingModel.ScrapIron:        27,
	listingModel.ScrapCopper:      430,
	listingModel.ScrapAluminium:   110,
	listingModel.ScrapBrass:       310,
	listingModel.ScrapSteel:       38,
	listingModel.ScrapPlasticHDPE: 18,
	listingModel.ScrapPlasticPET:  12,
	listingModel.ScrapPaper:       14,
	listingModel.ScrapCardboard:   10,
	listingModel.ScrapBooks:       12,
	listingModel.ScrapEWaste:      90,
	listingModel.ScrapGlass:       2,
	listingModel.ScrapMixedMetals: 45,
}

// StaticTable is an in-memory price table with one entry per ScrapType.
type StaticTable struct {
	mu     sync.RWMutex
	prices map[listingModel.ScrapType]int64
}

func NewStaticTable() *StaticTable {
	prices := make(map[listingModel.ScrapType]int64, len(defaultPrices))
	for k, v := range defaultPrices {
		prices[k] = v
	}
	return &StaticTable{prices: prices}
}

func (t *StaticTable) PriceForCategory(category listingModel.ScrapType) (int64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	price, ok := t.prices[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return price, nil
}

// Set replaces the price of a category. Existing listings keep their snapshot.
func (t *StaticTable) Set(category listingModel.ScrapType, pricePerKg int64) error {
	if !category.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if pricePerKg <= 0 {
		return fmt.Errorf("price per kg must be positive, got %d", pricePerKg)
	}

	t.mu.Lock()
	t.prices[category] = pricePerKg
	t.mu.Unlock()
	return nil
}

// Entries returns the table sorted by category name
func (t *StaticTable) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entries := make([]Entry, 0, len(t.prices))
	for category, price := range t.prices {
		entries = append(entries, Entry{
			Category:    category,
			DisplayName: category.DisplayName(),
			PricePerKg:  price,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Category < entries[j].Category
	})
	return entries
}
