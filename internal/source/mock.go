package source

import (
	"context"
	"time"

	"PriceHistorian/internal/model"

	"github.com/shopspring/decimal"
)

// MockSource returns controllable fixed data for development and testing.
// Prices and Errs are keyed by day in YYYY-MM-DD form; a day present in
// neither yields a DataNotFoundError.
type MockSource struct {
	Prices map[string]string // day -> decimal price
	Errs   map[string]error  // day -> error to return
	Calls  []string          // days requested, in order
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) FetchOpeningPrice(_ context.Context, day time.Time) (model.PricePoint, error) {
	key := model.Midnight(day).Format(model.DateFormat)
	m.Calls = append(m.Calls, key)
	if err, ok := m.Errs[key]; ok {
		return model.PricePoint{}, err
	}
	if raw, ok := m.Prices[key]; ok {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return model.PricePoint{}, err
		}
		return model.PricePoint{Day: model.Midnight(day), Price: price}, nil
	}
	return model.PricePoint{}, &DataNotFoundError{Day: model.Midnight(day), Reason: "no mock data"}
}
