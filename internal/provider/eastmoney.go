package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"trendrank/internal/ratelimit"
	"trendrank/internal/trace"
	"trendrank/pkg/model"
)

// Eastmoney push2 endpoints
const (
	eastmoneyListURL  = "https://82.push2.eastmoney.com/api/qt/clist/get"
	eastmoneyKlineURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
	eastmoneyIndexURL = "https://push2.eastmoney.com/api/qt/ulist.np/get"
)

// Snapshot list fields: f2 price, f3 change%, f5 volume, f6 amount,
// f8 turnover rate, f9 p/e, f12 code, f14 name, f20 market cap, f23 p/b
const (
	snapshotFields   = "f2,f3,f5,f6,f8,f9,f12,f14,f20,f23"
	snapshotMarkets  = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23" // SZ main, ChiNext, SH main, STAR
	snapshotPageSize = 500
)

// Kline fields2: f51 date, f52 open, f53 close, f54 high, f55 low,
// f56 volume, f57 amount, f61 turnover rate
const (
	klineFields1 = "f1,f2,f3,f4,f5,f6"
	klineFields2 = "f51,f52,f53,f54,f55,f56,f57,f61"
)

// Index ulist: SSE composite, SZSE component, ChiNext
const (
	indexSecIDs = "1.000001,0.399001,0.399006"
	indexFields = "f2,f3,f12,f14"
)

// Request headers mimic a browser; the endpoints reject bare clients
const (
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	referer        = "https://quote.eastmoney.com/"
	acceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// EastmoneyProvider implements Provider against the Eastmoney push2 API.
// No API key is required; the per-minute limiter keeps request volume
// polite enough to avoid bans.
type EastmoneyProvider struct {
	client    *http.Client
	limiter   *ratelimit.Limiter
	rateLimit int

	// endpoint URLs and page size, overridable in tests
	listURL  string
	klineURL string
	indexURL string
	pageSize int
}

// NewEastmoneyProvider creates a provider throttled to perMinute requests
func NewEastmoneyProvider(perMinute int, timeout time.Duration) *EastmoneyProvider {
	return &EastmoneyProvider{
		client:    &http.Client{Timeout: timeout},
		limiter:   ratelimit.NewLimiter("eastmoney", perMinute),
		rateLimit: perMinute,
		listURL:   eastmoneyListURL,
		klineURL:  eastmoneyKlineURL,
		indexURL:  eastmoneyIndexURL,
		pageSize:  snapshotPageSize,
	}
}

// Name returns the provider name
func (p *EastmoneyProvider) Name() string {
	return "eastmoney"
}

// RateLimit returns the request budget per minute
func (p *EastmoneyProvider) RateLimit() int {
	return p.rateLimit
}

// get performs one rate-limited GET and returns the response body
func (p *EastmoneyProvider) get(ctx context.Context, url string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", referer)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", acceptLanguage)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: p.Name(), Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		p.limiter.SignalRateLimited()
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("rate limited"), Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: false}
	}

	p.limiter.ResetBackoff()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

// Snapshot pages through the clist endpoint until the universe is complete
func (p *EastmoneyProvider) Snapshot(ctx context.Context) ([]model.Quote, error) {
	var quotes []model.Quote
	page := 1

	for {
		url := fmt.Sprintf("%s?pn=%d&pz=%d&fs=%s&fields=%s",
			p.listURL, page, p.pageSize, snapshotMarkets, snapshotFields)

		body, err := p.get(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("snapshot page %d: %w", page, err)
		}

		total, count := parseSnapshotPage(body, &quotes)
		if count == 0 {
			break
		}
		if total <= len(quotes) || count < p.pageSize {
			break
		}
		page++
	}

	trace.Logf(ctx, "provider: snapshot fetched %d quotes", len(quotes))
	if len(quotes) == 0 {
		return nil, &ProviderError{Provider: p.Name(), Err: fmt.Errorf("empty snapshot"), Retryable: false}
	}
	return quotes, nil
}

// parseSnapshotPage appends one page of quotes and returns the reported
// universe total and the page row count. data.diff arrives either as an
// array or as an object keyed "0", "1", ...
func parseSnapshotPage(body []byte, quotes *[]model.Quote) (total, count int) {
	total = int(gjson.GetBytes(body, "data.total").Int())

	diff := gjson.GetBytes(body, "data.diff")
	if !diff.Exists() {
		return total, 0
	}

	start := len(*quotes)
	diff.ForEach(func(_, row gjson.Result) bool {
		symbol := row.Get("f12").String()
		if symbol == "" {
			return true
		}
		*quotes = append(*quotes, model.Quote{
			Symbol:    symbol,
			Name:      row.Get("f14").String(),
			Price:     row.Get("f2").Float(),
			ChangePct: row.Get("f3").Float(),
			Volume:    row.Get("f5").Int(),
			Amount:    row.Get("f6").Float(),
			Turnover:  row.Get("f8").Float(),
			MarketCap: row.Get("f20").Float(),
			PE:        row.Get("f9").Float(),
			PB:        row.Get("f23").Float(),
		})
		return true
	})
	return total, len(*quotes) - start
}

// DailyBars fetches forward-adjusted (fqt=1) daily klines over [start, end]
func (p *EastmoneyProvider) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	url := fmt.Sprintf("%s?secid=%s&fields1=%s&fields2=%s&klt=101&fqt=1&beg=%s&end=%s",
		p.klineURL, FormatSecID(symbol), klineFields1, klineFields2,
		start.Format("20060102"), end.Format("20060102"))

	body, err := p.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("klines for %s: %w", symbol, err)
	}
	return parseKlines(body, symbol)
}

// parseKlines decodes data.klines entries of the form
// "2024-01-15,10.00,10.50,10.80,9.90,123456,1.2e8,3.21"
func parseKlines(body []byte, symbol string) ([]model.Bar, error) {
	klines := gjson.GetBytes(body, "data.klines")
	if !klines.Exists() || !klines.IsArray() {
		return nil, fmt.Errorf("no kline data for %s", symbol)
	}

	arr := klines.Array()
	bars := make([]model.Bar, 0, len(arr))
	for _, v := range arr {
		parts := strings.Split(strings.TrimSpace(v.String()), ",")
		if len(parts) < 6 {
			continue
		}
		open, _ := strconv.ParseFloat(parts[1], 64)
		closePx, _ := strconv.ParseFloat(parts[2], 64)
		high, _ := strconv.ParseFloat(parts[3], 64)
		low, _ := strconv.ParseFloat(parts[4], 64)
		volume, _ := strconv.ParseInt(parts[5], 10, 64)
		var amount, turnover float64
		if len(parts) >= 7 {
			amount, _ = strconv.ParseFloat(parts[6], 64)
		}
		if len(parts) >= 8 {
			turnover, _ = strconv.ParseFloat(parts[7], 64)
		}
		bars = append(bars, model.Bar{
			Date:     parts[0],
			Open:     open,
			Close:    closePx,
			High:     high,
			Low:      low,
			Volume:   volume,
			Amount:   amount,
			Turnover: turnover,
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no klines for %s", symbol)
	}
	return bars, nil
}

// IndexQuotes fetches the major index levels for the CLI banner
func (p *EastmoneyProvider) IndexQuotes(ctx context.Context) ([]model.IndexQuote, error) {
	url := fmt.Sprintf("%s?secids=%s&fields=%s", p.indexURL, indexSecIDs, indexFields)

	body, err := p.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("index quotes: %w", err)
	}

	diff := gjson.GetBytes(body, "data.diff")
	if !diff.Exists() {
		return nil, fmt.Errorf("no index data")
	}

	var out []model.IndexQuote
	diff.ForEach(func(_, row gjson.Result) bool {
		symbol := row.Get("f12").String()
		name := row.Get("f14").String()
		if symbol == "" && name == "" {
			return true
		}
		// The ulist endpoint reports f3 as percent*100 (-0.25% arrives
		// as -25); rescale when the magnitude gives it away.
		changePct := row.Get("f3").Float()
		if changePct > 20 || changePct < -20 {
			changePct /= 100
		}
		out = append(out, model.IndexQuote{
			Symbol:    symbol,
			Name:      name,
			Price:     row.Get("f2").Float(),
			ChangePct: changePct,
		})
		return true
	})
	return out, nil
}

// FormatSecID converts a bare symbol to an Eastmoney secid:
// Shanghai listings (6/5/9 prefix) get market 1, Shenzhen gets 0.
func FormatSecID(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "0.000000"
	}
	switch symbol[0] {
	case '6', '5', '9':
		return "1." + symbol
	default:
		return "0." + symbol
	}
}
