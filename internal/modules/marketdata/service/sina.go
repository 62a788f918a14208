package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
)

const (
	sinaKlineURL = "https://money.finance.sina.com.cn/quotes_service/api/json_v2.php/CN_MarketData.getKLineData"
	sinaQfqURL   = "https://finance.sina.com.cn/realstock/company/%s/qfq.js"
	sinaNavURL   = "https://fund.sina.com.cn/fund/api/netWorthTable"

	navPageSize = 5000
	navMaxPages = 200
)

// Sina is the fallback provider. Stocks come from the kline service (with a
// separate qfq factor table when adjustment is requested); funds come from
// the NAV table, which only carries unadjusted unit values, so an adjusted
// fund request is served raw and flagged degraded by the caller.
type Sina struct {
	client   *http.Client
	klineURL string
	qfqURL   string
	navURL   string
}

func NewSina(client *http.Client) *Sina {
	return &Sina{client: client, klineURL: sinaKlineURL, qfqURL: sinaQfqURL, navURL: sinaNavURL}
}

func (s *Sina) Name() string { return "sina" }

func (s *Sina) DailyHistory(ctx context.Context, code string, class models.AssetClass, start, end time.Time, adjusted bool) (*models.PriceSeries, error) {
	switch class {
	case models.ClassStock:
		return s.stockHistory(ctx, code, start, end, adjusted)
	case models.ClassFund:
		return s.fundHistory(ctx, code, start, end)
	default:
		return nil, fmt.Errorf("unsupported instrument code %q", code)
	}
}

type sinaBar struct {
	Day    string `json:"day"`
	Open   string `json:"open"`
	High   string `json:"high"`
	Low    string `json:"low"`
	Close  string `json:"close"`
	Volume string `json:"volume"`
}

func (s *Sina) stockHistory(ctx context.Context, code string, start, end time.Time, adjusted bool) (*models.PriceSeries, error) {
	// The kline service has no date window, only a row count; over-fetch by
	// calendar span and trim locally.
	days := int(end.Sub(start).Hours()/24) + 1
	bars, err := s.klines(ctx, SinaSymbol(code), 240, days)
	if err != nil {
		return nil, err
	}

	points := make([]models.PricePoint, 0, len(bars))
	for _, b := range bars {
		p, ok := parseSinaBar(b)
		if !ok {
			continue
		}
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		points = append(points, p)
	}

	if adjusted && len(points) > 0 {
		factors, err := s.qfqFactors(ctx, SinaSymbol(code))
		if err != nil {
			return nil, fmt.Errorf("qfq factors: %w", err)
		}
		applyQfq(points, factors)
	}

	return &models.PriceSeries{
		Code:         code,
		Points:       normalizePoints(points),
		AdjustFactor: 1,
		Source:       s.Name(),
	}, nil
}

// fundHistory reads the paged NAV table. Only raw unit values are available
// on this endpoint regardless of the requested pricing mode.
func (s *Sina) fundHistory(ctx context.Context, code string, start, end time.Time) (*models.PriceSeries, error) {
	var points []models.PricePoint
	for page := 1; page <= navMaxPages; page++ {
		q := url.Values{}
		q.Set("fundcode", code)
		q.Set("page", strconv.Itoa(page))
		q.Set("num", strconv.Itoa(navPageSize))

		body, err := s.get(ctx, s.navURL+"?"+q.Encode())
		if err != nil {
			return nil, err
		}

		var payload struct {
			Code int `json:"code"`
			Data []struct {
				EndDate string `json:"ENDDATE"`
				UnitNav string `json:"UNITNAV"`
			} `json:"data"`
		}
		if err := sonic.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("decode nav page %d: %w", page, err)
		}
		if payload.Code != 0 {
			return nil, fmt.Errorf("nav table error code %d", payload.Code)
		}
		if len(payload.Data) == 0 {
			break
		}
		for _, row := range payload.Data {
			date, err := time.Parse("20060102", row.EndDate)
			if err != nil {
				continue
			}
			nav, err := strconv.ParseFloat(row.UnitNav, 64)
			if err != nil || nav < 0 {
				continue
			}
			if date.Before(start) || date.After(end) {
				continue
			}
			points = append(points, models.PricePoint{Date: date, Open: nav, High: nav, Low: nav, Close: nav})
		}
		if len(payload.Data) < navPageSize {
			break
		}
	}

	return &models.PriceSeries{
		Code:         code,
		Points:       normalizePoints(points),
		AdjustFactor: 1,
		Source:       s.Name(),
	}, nil
}

// LivePrice returns the close of the latest minute bar, the most reliable
// spot quote sina exposes.
func (s *Sina) LivePrice(ctx context.Context, code string) (float64, error) {
	bars, err := s.klines(ctx, SinaSymbol(code), 1, 5)
	if err != nil {
		return 0, err
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if px, err := strconv.ParseFloat(bars[i].Close, 64); err == nil && px > 0 {
			return px, nil
		}
	}
	return 0, fmt.Errorf("no minute bars for %s", code)
}

func (s *Sina) klines(ctx context.Context, symbol string, scale, datalen int) ([]sinaBar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("scale", strconv.Itoa(scale))
	q.Set("ma", "no")
	q.Set("datalen", strconv.Itoa(datalen))

	body, err := s.get(ctx, s.klineURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var bars []sinaBar
	if err := sonic.Unmarshal(body, &bars); err != nil {
		return nil, fmt.Errorf("decode klines: %w", err)
	}
	return bars, nil
}

func (s *Sina) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}
	return io.ReadAll(resp.Body)
}

func parseSinaBar(b sinaBar) (models.PricePoint, bool) {
	// Minute symbols carry a timestamp; keep the calendar-day part only.
	day := b.Day
	if len(day) > 10 {
		day = day[:10]
	}
	date, err := time.Parse("2006-01-02", day)
	if err != nil {
		return models.PricePoint{}, false
	}
	closePx, err := strconv.ParseFloat(b.Close, 64)
	if err != nil || closePx < 0 {
		return models.PricePoint{}, false
	}
	p := models.PricePoint{Date: date, Close: closePx}
	p.Open, _ = strconv.ParseFloat(b.Open, 64)
	p.High, _ = strconv.ParseFloat(b.High, 64)
	p.Low, _ = strconv.ParseFloat(b.Low, 64)
	p.Volume, _ = strconv.ParseFloat(b.Volume, 64)
	return p, true
}

type qfqFactor struct {
	date   time.Time
	factor float64
}

// qfq.js is a JS assignment with unquoted keys, not JSON; pick the d/f pairs
// out directly.
var qfqPairRe = regexp.MustCompile(`d:"([0-9-]+)",f:"([0-9.]+)"`)

func (s *Sina) qfqFactors(ctx context.Context, symbol string) ([]qfqFactor, error) {
	body, err := s.get(ctx, fmt.Sprintf(s.qfqURL, symbol))
	if err != nil {
		return nil, err
	}

	matches := qfqPairRe.FindAllStringSubmatch(string(body), -1)
	factors := make([]qfqFactor, 0, len(matches))
	for _, m := range matches {
		date, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			continue
		}
		f, err := strconv.ParseFloat(m[2], 64)
		if err != nil || f <= 0 {
			continue
		}
		factors = append(factors, qfqFactor{date: date, factor: f})
	}
	sort.Slice(factors, func(i, j int) bool { return factors[i].date.Before(factors[j].date) })
	return factors, nil
}

// applyQfq rescales each bar by the newest factor effective on or before its
// date. Bars older than every factor keep their raw price.
func applyQfq(points []models.PricePoint, factors []qfqFactor) {
	if len(factors) == 0 {
		return
	}
	for i := range points {
		f := 1.0
		for _, qf := range factors {
			if qf.date.After(points[i].Date) {
				break
			}
			f = qf.factor
		}
		points[i].Open *= f
		points[i].High *= f
		points[i].Low *= f
		points[i].Close *= f
	}
}
