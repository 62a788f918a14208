package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeNamer struct {
	names map[string]string
	calls int
}

func (f *fakeNamer) AssetName(_ context.Context, code string) (string, error) {
	f.calls++
	name, ok := f.names[code]
	if !ok {
		return "", errors.New("no name")
	}
	return name, nil
}

func newNameService(namer NameSource) *Service {
	return New(Config{Retry: RetryPolicy{Attempts: 1}},
		nil, &fakeProvider{name: "sina"}, nil, namer, quietHealth(false), time.UTC)
}

func TestAssetNameCaches(t *testing.T) {
	namer := &fakeNamer{names: map[string]string{"510300": "CSI300 ETF"}}
	s := newNameService(namer)

	for i := 0; i < 3; i++ {
		if got := s.AssetName(context.Background(), "510300"); got != "CSI300 ETF" {
			t.Fatalf("AssetName = %q", got)
		}
	}
	if namer.calls != 1 {
		t.Errorf("namer called %d times, want 1", namer.calls)
	}
}

func TestAssetNameFallback(t *testing.T) {
	namer := &fakeNamer{names: map[string]string{}}
	s := newNameService(namer)

	if got := s.AssetName(context.Background(), "600000"); got != "Asset_600000" {
		t.Errorf("AssetName = %q, want Asset_600000", got)
	}
	// The synthetic name is cached; the upstream is not hammered.
	s.AssetName(context.Background(), "600000")
	if namer.calls != 1 {
		t.Errorf("namer called %d times, want 1", namer.calls)
	}
}

func TestSeedName(t *testing.T) {
	namer := &fakeNamer{names: map[string]string{}}
	s := newNameService(namer)

	s.SeedName("510300", "CSI300 ETF")
	if got := s.AssetName(context.Background(), "510300"); got != "CSI300 ETF" {
		t.Errorf("AssetName = %q", got)
	}
	if namer.calls != 0 {
		t.Errorf("namer called %d times for a seeded code", namer.calls)
	}
}
