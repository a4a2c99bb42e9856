package repository

import (
	"time"
	_ "time/tzdata"

	"github.com/kjannette/trahn-prices/internal/models"
)

var newYork = mustLoad("America/New_York")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// TradingDay returns the trading day (YYYY-MM-DD) a quote belongs to.
// Stocks follow the New York calendar date; crypto trades around the clock
// and uses the UTC date.
func TradingDay(ts time.Time, t models.AssetType) string {
	if t == models.AssetStock {
		return ts.In(newYork).Format("2006-01-02")
	}
	return ts.UTC().Format("2006-01-02")
}
