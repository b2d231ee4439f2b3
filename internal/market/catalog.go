package market

import (
	"sort"
	"strings"
)

const (
	browseLimit = 50
	searchLimit = 20
)

// majorCoins are listed first within each market, in this order.
var majorCoins = []string{"BTC", "ETH", "BNB", "ADA", "XRP", "SOL", "DOT", "AVAX", "MATIC", "LINK"}

var tokenNames = map[string]string{
	"BTC":   "Bitcoin",
	"ETH":   "Ethereum",
	"BNB":   "Binance Coin",
	"ADA":   "Cardano",
	"XRP":   "XRP",
	"SOL":   "Solana",
	"DOT":   "Polkadot",
	"AVAX":  "Avalanche",
	"MATIC": "Polygon",
	"LINK":  "Chainlink",
	"UNI":   "Uniswap",
	"LTC":   "Litecoin",
	"ATOM":  "Cosmos",
	"NEAR":  "NEAR Protocol",
	"FTM":   "Fantom",
	"ALGO":  "Algorand",
	"MANA":  "Decentraland",
	"SAND":  "The Sandbox",
	"CRV":   "Curve DAO Token",
	"COMP":  "Compound",
}

// TokenName returns a display name for a base asset, or the asset itself.
func TokenName(base string) string {
	if name, ok := tokenNames[base]; ok {
		return name
	}
	return base
}

// Catalog is an immutable, display-ordered list of tradable pairs.
type Catalog struct {
	pairs []Pair
	index map[PairKey]int
}

// NewCatalog copies and sorts pairs: spot, futures, alpha; major coins first
// within a market; the rest alphabetically by symbol.
func NewCatalog(pairs []Pair) *Catalog {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return lessPair(sorted[i], sorted[j])
	})

	c := &Catalog{pairs: sorted, index: make(map[PairKey]int, len(sorted))}
	for i, p := range sorted {
		if _, dup := c.index[p.Key()]; !dup {
			c.index[p.Key()] = i
		}
	}
	return c
}

func majorRank(base string) int {
	for i, c := range majorCoins {
		if c == base {
			return i
		}
	}
	return -1
}

func lessPair(a, b Pair) bool {
	if marketOrder[a.Market] != marketOrder[b.Market] {
		return marketOrder[a.Market] < marketOrder[b.Market]
	}
	ai, bi := majorRank(a.BaseAsset), majorRank(b.BaseAsset)
	switch {
	case ai != -1 && bi != -1:
		return ai < bi
	case ai != -1:
		return true
	case bi != -1:
		return false
	}
	return a.Symbol < b.Symbol
}

// Len returns the number of pairs.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.pairs)
}

// Pairs returns a copy of the ordered pair list.
func (c *Catalog) Pairs() []Pair {
	if c == nil {
		return nil
	}
	out := make([]Pair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// Lookup finds the catalog entry for key.
func (c *Catalog) Lookup(key PairKey) (Pair, bool) {
	if c == nil {
		return Pair{}, false
	}
	i, ok := c.index[key]
	if !ok {
		return Pair{}, false
	}
	return c.pairs[i], true
}

// Resolve attaches catalog metadata to key when present.
func (c *Catalog) Resolve(key PairKey) WatchedPair {
	w := WatchedPair{PairKey: key}
	if p, ok := c.Lookup(key); ok {
		w.Meta = &p
	}
	return w
}

// Search filters the catalog for the add-pair picker. Pairs in exclude are
// skipped and filter, when non-empty, restricts the market. An empty query
// browses the first 50 matches; otherwise the query is matched
// case-insensitively against symbol, name, base asset and market and the
// result is capped at 20.
func (c *Catalog) Search(query string, exclude []PairKey, filter MarketType) []Pair {
	if c == nil {
		return nil
	}
	skip := make(map[PairKey]struct{}, len(exclude))
	for _, k := range exclude {
		skip[k] = struct{}{}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	limit := searchLimit
	if q == "" {
		limit = browseLimit
	}

	var out []Pair
	for _, p := range c.pairs {
		if _, ok := skip[p.Key()]; ok {
			continue
		}
		if filter != "" && p.Market != filter {
			continue
		}
		if q != "" && !matches(p, q) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out
}

func matches(p Pair, q string) bool {
	return strings.Contains(strings.ToLower(p.Symbol), q) ||
		strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.BaseAsset), q) ||
		strings.Contains(string(p.Market), q)
}
