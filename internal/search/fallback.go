package search

import "github.com/kjannette/trahn-prices/internal/models"

// wellKnown answers searches when the provider is down and nothing is cached.
var wellKnown = []models.SearchResult{
	{Symbol: "AAPL", Name: "Apple Inc", Type: "Equity", Region: "United States"},
	{Symbol: "MSFT", Name: "Microsoft Corporation", Type: "Equity", Region: "United States"},
	{Symbol: "GOOGL", Name: "Alphabet Inc Class A", Type: "Equity", Region: "United States"},
	{Symbol: "GOOG", Name: "Alphabet Inc Class C", Type: "Equity", Region: "United States"},
	{Symbol: "AMZN", Name: "Amazon.com Inc", Type: "Equity", Region: "United States"},
	{Symbol: "NVDA", Name: "NVIDIA Corporation", Type: "Equity", Region: "United States"},
	{Symbol: "META", Name: "Meta Platforms Inc", Type: "Equity", Region: "United States"},
	{Symbol: "TSLA", Name: "Tesla Inc", Type: "Equity", Region: "United States"},
	{Symbol: "BRK.B", Name: "Berkshire Hathaway Inc Class B", Type: "Equity", Region: "United States"},
	{Symbol: "JPM", Name: "JPMorgan Chase & Co", Type: "Equity", Region: "United States"},
	{Symbol: "V", Name: "Visa Inc", Type: "Equity", Region: "United States"},
	{Symbol: "MA", Name: "Mastercard Inc", Type: "Equity", Region: "United States"},
	{Symbol: "JNJ", Name: "Johnson & Johnson", Type: "Equity", Region: "United States"},
	{Symbol: "WMT", Name: "Walmart Inc", Type: "Equity", Region: "United States"},
	{Symbol: "PG", Name: "Procter & Gamble Co", Type: "Equity", Region: "United States"},
	{Symbol: "XOM", Name: "Exxon Mobil Corporation", Type: "Equity", Region: "United States"},
	{Symbol: "KO", Name: "Coca-Cola Co", Type: "Equity", Region: "United States"},
	{Symbol: "PEP", Name: "PepsiCo Inc", Type: "Equity", Region: "United States"},
	{Symbol: "DIS", Name: "Walt Disney Co", Type: "Equity", Region: "United States"},
	{Symbol: "NFLX", Name: "Netflix Inc", Type: "Equity", Region: "United States"},
	{Symbol: "AMD", Name: "Advanced Micro Devices Inc", Type: "Equity", Region: "United States"},
	{Symbol: "INTC", Name: "Intel Corporation", Type: "Equity", Region: "United States"},
	{Symbol: "ORCL", Name: "Oracle Corporation", Type: "Equity", Region: "United States"},
	{Symbol: "CRM", Name: "Salesforce Inc", Type: "Equity", Region: "United States"},
	{Symbol: "ADBE", Name: "Adobe Inc", Type: "Equity", Region: "United States"},
	{Symbol: "PYPL", Name: "PayPal Holdings Inc", Type: "Equity", Region: "United States"},
	{Symbol: "UBER", Name: "Uber Technologies Inc", Type: "Equity", Region: "United States"},
	{Symbol: "BA", Name: "Boeing Co", Type: "Equity", Region: "United States"},
	{Symbol: "NKE", Name: "Nike Inc", Type: "Equity", Region: "United States"},
	{Symbol: "SBUX", Name: "Starbucks Corporation", Type: "Equity", Region: "United States"},
	{Symbol: "COST", Name: "Costco Wholesale Corporation", Type: "Equity", Region: "United States"},
	{Symbol: "AAP", Name: "Advance Auto Parts Inc", Type: "Equity", Region: "United States"},
	{Symbol: "AAL", Name: "American Airlines Group Inc", Type: "Equity", Region: "United States"},
	{Symbol: "T", Name: "AT&T Inc", Type: "Equity", Region: "United States"},
	{Symbol: "VZ", Name: "Verizon Communications Inc", Type: "Equity", Region: "United States"},
	{Symbol: "SPY", Name: "SPDR S&P 500 ETF Trust", Type: "ETF", Region: "United States"},
	{Symbol: "QQQ", Name: "Invesco QQQ Trust", Type: "ETF", Region: "United States"},
	{Symbol: "COIN", Name: "Coinbase Global Inc", Type: "Equity", Region: "United States"},
	{Symbol: "PLTR", Name: "Palantir Technologies Inc", Type: "Equity", Region: "United States"},
	{Symbol: "SHOP", Name: "Shopify Inc", Type: "Equity", Region: "United States"},
}
