package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	goeth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/kjannette/trahn-prices/internal/external"
	"github.com/kjannette/trahn-prices/internal/models"
)

const (
	providerName = "uniswap"

	// EtherCoinID is the only coin this pricer answers for.
	EtherCoinID = "ethereum"

	DefaultRouter       = "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D"
	DefaultWETH         = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	DefaultQuoteToken   = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	DefaultQuoteDecimal = 6
)

// ContractCaller is the read side of an RPC client. *ethclient.Client
// satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg goeth.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type PoolOptions struct {
	Router        string
	WETH          string
	QuoteToken    string
	QuoteDecimals int
}

// PoolPricer reads the ETH price in the quote stablecoin from the Uniswap V2
// router. It only reads; nothing is signed or sent.
type PoolPricer struct {
	caller    ContractCaller
	router    common.Address
	path      []common.Address
	quoteDec  int32
	routerABI abi.ABI
	closeFn   func()
	oneEther  *big.Int
}

// Dial connects to an Ethereum JSON-RPC endpoint and returns a pricer bound
// to it. Close releases the connection.
func Dial(ctx context.Context, rpcURL string, opts PoolOptions) (*PoolPricer, error) {
	rpc, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}
	p, err := NewPoolPricer(rpc, opts)
	if err != nil {
		rpc.Close()
		return nil, err
	}
	p.closeFn = rpc.Close
	return p, nil
}

func NewPoolPricer(caller ContractCaller, opts PoolOptions) (*PoolPricer, error) {
	if opts.Router == "" {
		opts.Router = DefaultRouter
	}
	if opts.WETH == "" {
		opts.WETH = DefaultWETH
	}
	if opts.QuoteToken == "" {
		opts.QuoteToken = DefaultQuoteToken
	}
	if opts.QuoteDecimals <= 0 {
		opts.QuoteDecimals = DefaultQuoteDecimal
	}
	for _, a := range []string{opts.Router, opts.WETH, opts.QuoteToken} {
		if !common.IsHexAddress(a) {
			return nil, fmt.Errorf("invalid address %q", a)
		}
	}

	parsed, err := abi.JSON(routerABI())
	if err != nil {
		return nil, fmt.Errorf("parse router ABI: %w", err)
	}
	return &PoolPricer{
		caller:    caller,
		router:    common.HexToAddress(opts.Router),
		path:      []common.Address{common.HexToAddress(opts.WETH), common.HexToAddress(opts.QuoteToken)},
		quoteDec:  int32(opts.QuoteDecimals),
		routerABI: parsed,
		oneEther:  new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil),
	}, nil
}

func (p *PoolPricer) Close() {
	if p.closeFn != nil {
		p.closeFn()
	}
}

// ETHPrice returns what one ETH swaps for in the quote token right now.
func (p *PoolPricer) ETHPrice(ctx context.Context) (float64, error) {
	data, err := p.routerABI.Pack("getAmountsOut", p.oneEther, p.path)
	if err != nil {
		return 0, fmt.Errorf("pack getAmountsOut: %w", err)
	}

	out, err := p.caller.CallContract(ctx, goeth.CallMsg{To: &p.router, Data: data}, nil)
	if err != nil {
		kind := external.Unavailable
		if errors.Is(err, context.DeadlineExceeded) {
			kind = external.Timeout
		}
		return 0, &external.ProviderError{Provider: providerName, Kind: kind, Err: err}
	}

	vals, err := p.routerABI.Unpack("getAmountsOut", out)
	if err != nil {
		return 0, &external.ProviderError{Provider: providerName, Kind: external.Malformed, Err: err}
	}
	amounts, ok := vals[0].([]*big.Int)
	if !ok || len(amounts) != len(p.path) || amounts[len(amounts)-1].Sign() <= 0 {
		return 0, &external.ProviderError{Provider: providerName, Kind: external.Malformed, Err: errors.New("unexpected getAmountsOut result")}
	}

	return decimal.NewFromBigInt(amounts[len(amounts)-1], -p.quoteDec).InexactFloat64(), nil
}

// CryptoQuotes answers for EtherCoinID only. Other ids are left out of the
// result, so the caller can serve them from cache.
func (p *PoolPricer) CryptoQuotes(ctx context.Context, ids []string) (map[string]models.PriceQuote, error) {
	out := make(map[string]models.PriceQuote)
	for _, id := range ids {
		if id != EtherCoinID {
			continue
		}
		price, err := p.ETHPrice(ctx)
		if err != nil {
			return nil, err
		}
		out[EtherCoinID] = models.PriceQuote{
			Symbol: strings.ToUpper(EtherCoinID),
			Type:   models.AssetCrypto,
			Price:  price,
			Source: providerName,
		}
		break
	}
	return out, nil
}
