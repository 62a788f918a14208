package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeSpot struct {
	prices map[string]float64
	calls  int
}

func (f *fakeSpot) LivePrice(_ context.Context, code string) (float64, error) {
	f.calls++
	px, ok := f.prices[code]
	if !ok {
		return 0, errors.New("no quote")
	}
	return px, nil
}

func newSpotService(spot SpotSource, threshold int) *Service {
	return New(Config{
		Retry:            RetryPolicy{Attempts: 1},
		FailureThreshold: threshold,
	}, nil, &fakeProvider{name: "sina"}, spot, nil, quietHealth(false), time.UTC)
}

func TestSpotPrices(t *testing.T) {
	spot := &fakeSpot{prices: map[string]float64{"510300": 4.01, "600000": 10.2}}
	s := newSpotService(spot, 5)

	prices, success, alertNow := s.SpotPrices(context.Background(), []string{"510300", "600000", "159915"})
	if !success || alertNow {
		t.Fatalf("success=%v alertNow=%v", success, alertNow)
	}
	if len(prices) != 2 || prices["510300"] != 4.01 {
		t.Errorf("prices = %v", prices)
	}
}

func TestSpotPricesPacesEveryRequest(t *testing.T) {
	spot := &fakeSpot{prices: map[string]float64{"510300": 4.01, "600000": 10.2}}
	s := newSpotService(spot, 5)
	s.cfg.RequestInterval = 20 * time.Millisecond

	start := time.Now()
	s.SpotPrices(context.Background(), []string{"510300", "600000"})
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("two quotes fetched in %v, want a pause before each", elapsed)
	}
}

func TestSpotPricesFailureAlertIsOneShot(t *testing.T) {
	spot := &fakeSpot{prices: map[string]float64{}}
	s := newSpotService(spot, 3)
	codes := []string{"510300"}

	for i := 1; i <= 2; i++ {
		if _, _, alertNow := s.SpotPrices(context.Background(), codes); alertNow {
			t.Fatalf("alert fired at failure %d, threshold 3", i)
		}
	}
	if _, _, alertNow := s.SpotPrices(context.Background(), codes); !alertNow {
		t.Fatal("alert did not fire at the threshold")
	}
	// Latched: further failures stay quiet.
	if _, _, alertNow := s.SpotPrices(context.Background(), codes); alertNow {
		t.Fatal("alert fired twice without a recovery")
	}
	if s.FailureCount() != 4 {
		t.Errorf("failure count = %d, want 4", s.FailureCount())
	}
}

func TestSpotPricesSuccessResetsFailures(t *testing.T) {
	spot := &fakeSpot{prices: map[string]float64{}}
	s := newSpotService(spot, 2)
	codes := []string{"510300"}

	s.SpotPrices(context.Background(), codes)
	s.SpotPrices(context.Background(), codes)

	spot.prices["510300"] = 4.0
	if _, success, _ := s.SpotPrices(context.Background(), codes); !success {
		t.Fatal("want success")
	}
	if s.FailureCount() != 0 {
		t.Errorf("failure count = %d after recovery, want 0", s.FailureCount())
	}

	// The alert latch re-arms too.
	delete(spot.prices, "510300")
	s.SpotPrices(context.Background(), codes)
	if _, _, alertNow := s.SpotPrices(context.Background(), codes); !alertNow {
		t.Error("alert did not re-arm after recovery")
	}
}

func TestLivePrice(t *testing.T) {
	spot := &fakeSpot{prices: map[string]float64{"510300": 4.01}}
	s := newSpotService(spot, 5)

	px, ok := s.LivePrice(context.Background(), "510300")
	if !ok || px != 4.01 {
		t.Errorf("LivePrice = %v, %v", px, ok)
	}
	if _, ok := s.LivePrice(context.Background(), "600000"); ok {
		t.Error("want failure for unquoted code")
	}
}
