package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
)

const (
	eastmoneyKlineURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
	eastmoneyQuoteURL = "https://push2.eastmoney.com/api/qt/stock/get"
)

// Eastmoney is the primary history provider. The same kline endpoint serves
// both stocks and exchange-traded funds, addressed by secid.
type Eastmoney struct {
	client   *http.Client
	klineURL string
	quoteURL string
}

func NewEastmoney(client *http.Client) *Eastmoney {
	return &Eastmoney{client: client, klineURL: eastmoneyKlineURL, quoteURL: eastmoneyQuoteURL}
}

func (e *Eastmoney) Name() string { return "eastmoney" }

// DailyHistory fetches daily bars in [start, end]. adjusted selects the
// forward-adjusted (qfq) price scale.
func (e *Eastmoney) DailyHistory(ctx context.Context, code string, class models.AssetClass, start, end time.Time, adjusted bool) (*models.PriceSeries, error) {
	if class == models.ClassUnknown {
		return nil, fmt.Errorf("unsupported instrument code %q", code)
	}

	fqt := "0"
	if adjusted {
		fqt = "1"
	}
	q := url.Values{}
	q.Set("secid", EastmoneySecID(code))
	q.Set("klt", "101") // daily bars
	q.Set("fqt", fqt)
	q.Set("beg", start.Format("20060102"))
	q.Set("end", end.Format("20060102"))
	q.Set("fields1", "f1,f2,f3,f4,f5,f6")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.klineURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, string(b))
	}

	var payload struct {
		RC   int `json:"rc"`
		Data *struct {
			Code   string   `json:"code"`
			Klines []string `json:"klines"`
		} `json:"data"`
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("eastmoney returned no data for %s", code)
	}

	points := make([]models.PricePoint, 0, len(payload.Data.Klines))
	for _, line := range payload.Data.Klines {
		if p, ok := parseKline(line); ok {
			points = append(points, p)
		}
	}
	return &models.PriceSeries{
		Code:         code,
		Points:       normalizePoints(points),
		AdjustFactor: 1,
		Source:       e.Name(),
	}, nil
}

// parseKline splits one "date,open,close,high,low,volume,amount" row. Rows
// with an unparseable date or close are dropped.
func parseKline(line string) (models.PricePoint, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 7 {
		return models.PricePoint{}, false
	}
	date, err := time.Parse("2006-01-02", fields[0])
	if err != nil {
		return models.PricePoint{}, false
	}
	closePx, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || closePx < 0 {
		return models.PricePoint{}, false
	}
	p := models.PricePoint{Date: date, Close: closePx}
	p.Open, _ = strconv.ParseFloat(fields[1], 64)
	p.High, _ = strconv.ParseFloat(fields[3], 64)
	p.Low, _ = strconv.ParseFloat(fields[4], 64)
	p.Volume, _ = strconv.ParseFloat(fields[5], 64)
	p.Amount, _ = strconv.ParseFloat(fields[6], 64)
	return p, true
}

// AssetName resolves the display name via the quote endpoint (field f58).
func (e *Eastmoney) AssetName(ctx context.Context, code string) (string, error) {
	q := url.Values{}
	q.Set("secid", EastmoneySecID(code))
	q.Set("fields", "f58")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.quoteURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("http %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	var payload struct {
		Data *struct {
			Name string `json:"f58"`
		} `json:"data"`
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}
	if payload.Data == nil || payload.Data.Name == "" {
		return "", fmt.Errorf("no name for %s", code)
	}
	return payload.Data.Name, nil
}
