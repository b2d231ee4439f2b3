package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"coinwatch/internal/market"
)

type RESTClient struct {
	spotURL    string
	futuresURL string
	alphaURL   string
	httpClient *http.Client
}

func NewRESTClient(spotURL, futuresURL, alphaURL string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		spotURL:    strings.TrimSuffix(spotURL, "/"),
		futuresURL: strings.TrimSuffix(futuresURL, "/"),
		alphaURL:   strings.TrimSuffix(alphaURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *RESTClient) getJSON(ctx context.Context, endpoint string, header http.Header, out any) error {
	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("binance error: status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetSpotPairs lists spot pairs that are trading against USDT.
func (c *RESTClient) GetSpotPairs(ctx context.Context) ([]market.Pair, error) {
	var info ExchangeInfoResponse
	if err := c.getJSON(ctx, c.spotURL+spotExchangeInfoPath, nil, &info); err != nil {
		return nil, fmt.Errorf("spot exchange info: %w", err)
	}

	var pairs []market.Pair
	for _, s := range info.Symbols {
		if s.Status != statusTrading || s.QuoteAsset != quoteUSDT {
			continue
		}
		pairs = append(pairs, symbolPair(s, market.Spot))
	}
	return pairs, nil
}

// GetFuturesPairs lists USDT-margined perpetual contracts that are trading.
func (c *RESTClient) GetFuturesPairs(ctx context.Context) ([]market.Pair, error) {
	var info ExchangeInfoResponse
	if err := c.getJSON(ctx, c.futuresURL+futuresExchangeInfoPath, nil, &info); err != nil {
		return nil, fmt.Errorf("futures exchange info: %w", err)
	}

	var pairs []market.Pair
	for _, s := range info.Symbols {
		if s.Status != statusTrading || s.QuoteAsset != quoteUSDT || s.ContractType != contractPerpetual {
			continue
		}
		p := symbolPair(s, market.Futures)
		p.ContractType = s.ContractType
		pairs = append(pairs, p)
	}
	return pairs, nil
}

func symbolPair(s SymbolInfo, m market.MarketType) market.Pair {
	return market.Pair{
		Symbol:       s.BaseAsset + "/" + quoteUSDT,
		Name:         market.TokenName(s.BaseAsset),
		BaseAsset:    s.BaseAsset,
		QuoteAsset:   s.QuoteAsset,
		Market:       m,
		StreamSymbol: s.Symbol,
	}
}

// GetAlphaPairs lists alpha tokens. Their stream symbol is the alpha id.
func (c *RESTClient) GetAlphaPairs(ctx context.Context) ([]market.Pair, error) {
	// Accept-Encoding stays unset: the transport requests gzip and decodes it
	header := http.Header{}
	header.Set("User-Agent", "Mozilla/5.0")

	var resp AlphaTokenListResponse
	if err := c.getJSON(ctx, c.alphaURL+alphaTokenListPath, header, &resp); err != nil {
		return nil, fmt.Errorf("alpha token list: %w", err)
	}
	if resp.Code != alphaSuccessCode {
		return nil, fmt.Errorf("alpha token list: response code %s", resp.Code)
	}

	pairs := make([]market.Pair, 0, len(resp.Data))
	for _, t := range resp.Data {
		name := t.Name
		if name == "" {
			name = t.Symbol
		}
		pairs = append(pairs, market.Pair{
			Symbol:       t.Symbol + "/" + quoteUSDT,
			Name:         name,
			BaseAsset:    t.Symbol,
			QuoteAsset:   quoteUSDT,
			Market:       market.Alpha,
			StreamSymbol: t.AlphaID,
			Volume:       floatOrZero(t.Volume24h),
			Price:        floatOrZero(t.Price),
			Change24h:    floatOrZero(t.PercentChange24h),
			MarketCap:    floatOrZero(t.MarketCap),
			TokenID:      t.TokenID,
		})
	}
	return pairs, nil
}

// GetKlines fetches the most recent limit bars for symbol. Futures use the
// futures API; spot and alpha the spot API.
func (c *RESTClient) GetKlines(ctx context.Context, m market.MarketType, symbol, interval string,
	limit int) ([]market.KlineBar, error) {
	meta, err := ParseKlineInterval(interval)
	if err != nil {
		return nil, err
	}

	base, path := c.spotURL, spotKlinesPath
	if m == market.Futures {
		base, path = c.futuresURL, futuresKlinesPath
	}

	q := url.Values{}
	q.Set("symbol", strings.ToUpper(symbol))
	q.Set("interval", meta.APIValue)
	q.Set("limit", strconv.Itoa(limit))
	endpoint := base + path + "?" + q.Encode()

	var rows []KlineRow
	if err := c.getJSON(ctx, endpoint, nil, &rows); err != nil {
		return nil, fmt.Errorf("klines %s: %w", symbol, err)
	}
	return ParseKlineRows(rows), nil
}

// FetchKlines loads chart history for a watched pair.
func (c *RESTClient) FetchKlines(ctx context.Context, p market.WatchedPair, interval string,
	limit int) ([]market.KlineBar, error) {
	return c.GetKlines(ctx, p.Market, p.StreamSymbol(), interval, limit)
}

func floatOrZero(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
