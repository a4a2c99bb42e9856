package symbols

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kjannette/trahn-prices/internal/models"
)

// ErrUnsupportedSymbol marks a crypto ticker we recognise but cannot price.
// It is permanent: retrying or caching will not change the answer.
var ErrUnsupportedSymbol = errors.New("unsupported symbol")

// coinIDs maps base crypto tickers to CoinGecko coin ids.
var coinIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"BNB":   "binancecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"DOGE":  "dogecoin",
	"DOT":   "polkadot",
	"MATIC": "matic-network",
	"LTC":   "litecoin",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"SHIB":  "shiba-inu",
	"UNI":   "uniswap",
	"ATOM":  "cosmos",
	"XLM":   "stellar",
	"TRX":   "tron",
	"BCH":   "bitcoin-cash",
	"USDT":  "tether",
	"USDC":  "usd-coin",
}

// Recognised as crypto so they never hit the stock provider, but without a
// price source.
var unmappedCrypto = map[string]struct{}{
	"FTT":  {},
	"LUNC": {},
	"XMR":  {},
}

// Quote-currency suffixes stripped before lookup, longest first so that
// "-USDT" wins over "-USD".
var quoteSuffixes = []string{"-USDT", "/USDT", "-USD", "/USD", "USDT", "USD"}

// Canonical upper-cases and trims a ticker.
func Canonical(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// base strips a quote-currency suffix when the remainder is a known crypto
// ticker. Stock tickers are returned unchanged.
func base(symbol string) (string, bool) {
	s := Canonical(symbol)
	if isCrypto(s) {
		return s, true
	}
	for _, suf := range quoteSuffixes {
		if !strings.HasSuffix(s, suf) {
			continue
		}
		b := strings.TrimSuffix(s, suf)
		if b != "" && isCrypto(b) {
			return b, true
		}
	}
	return s, false
}

func isCrypto(s string) bool {
	if _, ok := coinIDs[s]; ok {
		return true
	}
	_, ok := unmappedCrypto[s]
	return ok
}

// Classify reports whether symbol is a crypto asset or a stock. Anything not
// in the crypto set is a stock.
func Classify(symbol string) models.AssetType {
	if _, ok := base(symbol); ok {
		return models.AssetCrypto
	}
	return models.AssetStock
}

// ProviderID returns the identifier the matching provider expects: the
// CoinGecko coin id for crypto, the canonical ticker for stocks.
func ProviderID(symbol string) (string, error) {
	b, crypto := base(symbol)
	if b == "" {
		return "", fmt.Errorf("%w: empty symbol", ErrUnsupportedSymbol)
	}
	if !crypto {
		return b, nil
	}
	id, ok := coinIDs[b]
	if !ok {
		return "", fmt.Errorf("%w: no coin id for %s", ErrUnsupportedSymbol, b)
	}
	return id, nil
}
