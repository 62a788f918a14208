package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maxduke/rsi6-monitor-bot/internal/models"
)

func TestSinaStockHistoryWithQfq(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/kline", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") != "sh600000" {
			t.Errorf("symbol = %q", r.URL.Query().Get("symbol"))
		}
		_, _ = w.Write([]byte(`[
			{"day":"2026-08-27","open":"9.90","high":"10.00","low":"9.85","close":"9.95","volume":"1000"},
			{"day":"2026-08-28","open":"9.95","high":"10.10","low":"9.90","close":"10.00","volume":"1200"}
		]`))
	})
	mux.HandleFunc("/qfq/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`var hqdata={total:2,data:[{d:"2020-01-01",f:"1.0000"},{d:"2026-08-28",f:"1.0500"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := NewSina(srv.Client())
	s.klineURL = srv.URL + "/kline"
	s.qfqURL = srv.URL + "/qfq/%s"

	series, err := s.DailyHistory(context.Background(), "600000", models.ClassStock,
		time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), true)
	if err != nil {
		t.Fatal(err)
	}
	if series.Len() != 2 {
		t.Fatalf("len = %d, want 2", series.Len())
	}
	// 08-27 predates the 08-28 factor, so only the older 1.0 factor applies.
	if math.Abs(series.Points[0].Close-9.95) > 1e-9 {
		t.Errorf("08-27 close = %v, want 9.95", series.Points[0].Close)
	}
	if math.Abs(series.Points[1].Close-10.00*1.05) > 1e-9 {
		t.Errorf("08-28 close = %v, want %v", series.Points[1].Close, 10.00*1.05)
	}
}

func TestSinaFundHistoryPaged(t *testing.T) {
	var pages []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		if page != "1" {
			_, _ = w.Write([]byte(`{"code":0,"data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"code":0,"data":[
			{"ENDDATE":"20260828","UNITNAV":"4.012"},
			{"ENDDATE":"20260827","UNITNAV":"3.998"},
			{"ENDDATE":"bogus","UNITNAV":"1.0"}
		]}`))
	}))
	defer srv.Close()

	s := NewSina(srv.Client())
	s.navURL = srv.URL

	series, err := s.DailyHistory(context.Background(), "510300", models.ClassFund,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), false)
	if err != nil {
		t.Fatal(err)
	}
	if series.Len() != 2 {
		t.Fatalf("len = %d, want 2", series.Len())
	}
	// normalized oldest first regardless of upstream order
	if !series.Points[0].Date.Before(series.Points[1].Date) {
		t.Error("points not sorted by date")
	}
	if series.Points[1].Close != 4.012 {
		t.Errorf("newest nav = %v", series.Points[1].Close)
	}
	if len(pages) != 1 {
		t.Errorf("fetched %d pages for a short table, want 1", len(pages))
	}
}

func TestSinaLivePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("scale") != "1" {
			t.Errorf("scale = %q, want 1", r.URL.Query().Get("scale"))
		}
		_, _ = w.Write([]byte(`[
			{"day":"2026-08-31 10:29:00","open":"4.00","high":"4.02","low":"3.99","close":"4.01","volume":"100"},
			{"day":"2026-08-31 10:30:00","open":"4.01","high":"4.03","low":"4.00","close":"4.02","volume":"120"}
		]`))
	}))
	defer srv.Close()

	s := NewSina(srv.Client())
	s.klineURL = srv.URL

	px, err := s.LivePrice(context.Background(), "510300")
	if err != nil {
		t.Fatal(err)
	}
	if px != 4.02 {
		t.Errorf("live = %v, want the latest minute close 4.02", px)
	}
}

func TestParseSinaBar(t *testing.T) {
	tests := []struct {
		day, close string
		ok         bool
		wantDate   string
	}{
		{"2026-08-28", "10.00", true, "2026-08-28"},
		{"2026-08-31 10:30:00", "4.02", true, "2026-08-31"},
		{"bogus", "10.00", false, ""},
		{"2026-08-28", "n/a", false, ""},
	}
	for _, tt := range tests {
		p, ok := parseSinaBar(sinaBar{Day: tt.day, Close: tt.close})
		if ok != tt.ok {
			t.Errorf("parseSinaBar(%q, %q) ok = %v, want %v", tt.day, tt.close, ok, tt.ok)
			continue
		}
		if ok && p.Date.Format("2006-01-02") != tt.wantDate {
			t.Errorf("date = %v, want %s", p.Date, tt.wantDate)
		}
	}
}

func TestQfqFactorParsing(t *testing.T) {
	body := `var _sh600000qfq={total:3,data:[{d:"2019-06-25",f:"1.1525"},{d:"2020-07-10",f:"1.0931"},{d:"2021-07-14",f:"1.0000"}]}`
	matches := qfqPairRe.FindAllStringSubmatch(body, -1)
	if len(matches) != 3 {
		t.Fatalf("matched %d pairs, want 3", len(matches))
	}
	if matches[0][1] != "2019-06-25" || matches[0][2] != "1.1525" {
		t.Errorf("first pair = %v", matches[0])
	}
}

func TestApplyQfq(t *testing.T) {
	points := []models.PricePoint{
		{Date: day("2026-08-20"), Open: 10, High: 10, Low: 10, Close: 10},
		{Date: day("2026-08-28"), Open: 10, High: 10, Low: 10, Close: 10},
	}
	factors := []qfqFactor{
		{date: day("2026-08-25"), factor: 1.05},
	}
	applyQfq(points, factors)
	if points[0].Close != 10 {
		t.Errorf("pre-factor bar rescaled to %v", points[0].Close)
	}
	if math.Abs(points[1].Close-10.5) > 1e-9 {
		t.Errorf("post-factor close = %v, want 10.5", points[1].Close)
	}
}

func TestSinaFundHistoryErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":500,"data":[]}`)
	}))
	defer srv.Close()

	s := NewSina(srv.Client())
	s.navURL = srv.URL

	_, err := s.DailyHistory(context.Background(), "510300", models.ClassFund,
		time.Now().AddDate(0, 0, -10), time.Now(), false)
	if err == nil || !strings.Contains(err.Error(), "error code") {
		t.Errorf("err = %v, want nav table error", err)
	}
}
