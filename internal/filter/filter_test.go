package filter

import (
	"context"
	"testing"

	"trendrank/internal/config"
	"trendrank/pkg/model"
)

func validQuote() model.Quote {
	return model.Quote{
		Symbol:    "600519",
		Name:      "贵州茅台",
		Price:     1700.5,
		ChangePct: 1.2,
		Volume:    32000,
	}
}

func defaultFilter() *Filter {
	return New(config.DefaultConfig().Filter)
}

func apply(f *Filter, q model.Quote) bool {
	return len(f.Apply(context.Background(), []model.Quote{q})) == 1
}

func TestValidQuotePasses(t *testing.T) {
	if !apply(defaultFilter(), validQuote()) {
		t.Error("Valid quote should pass all rules")
	}
}

func TestZeroPriceExcluded(t *testing.T) {
	q := validQuote()
	q.Price = 0
	if apply(defaultFilter(), q) {
		t.Error("Quote with price 0 should be excluded")
	}
}

func TestSpecialDesignationExcluded(t *testing.T) {
	for _, name := range []string{"ST康美", "*ST海航", "退市博元"} {
		q := validQuote()
		q.Name = name
		if apply(defaultFilter(), q) {
			t.Errorf("%q should be excluded when exclusion is enabled", name)
		}
	}
}

func TestSpecialDesignationRetainedWhenDisabled(t *testing.T) {
	cfg := config.DefaultConfig().Filter
	cfg.ExcludeSpecial = false
	f := New(cfg)

	q := validQuote()
	q.Name = "ST康美"
	if !apply(f, q) {
		t.Error("ST name should be retained when exclusion is disabled")
	}
}

func TestMinPriceExcluded(t *testing.T) {
	q := validQuote()
	q.Price = 0.95 // below the 1.0 floor
	if apply(defaultFilter(), q) {
		t.Error("Quote below the price floor should be excluded")
	}

	q.Price = 1.0 // the floor itself is kept
	if !apply(defaultFilter(), q) {
		t.Error("Quote at the price floor should be kept")
	}
}

func TestHaltedExcluded(t *testing.T) {
	q := validQuote()
	q.Volume = 0
	if apply(defaultFilter(), q) {
		t.Error("Quote with zero volume should be excluded")
	}
}

func TestDailyChangeBoundIsExclusive(t *testing.T) {
	f := defaultFilter() // bound 11.0

	q := validQuote()
	q.ChangePct = 11.0
	if apply(f, q) {
		t.Error("Change of exactly +bound should be excluded")
	}

	q.ChangePct = -11.0
	if apply(f, q) {
		t.Error("Change of exactly -bound should be excluded")
	}

	q.ChangePct = 10.99
	if !apply(f, q) {
		t.Error("Change just inside the bound should be kept")
	}
}

func TestApplyPreservesOrder(t *testing.T) {
	a, b, c := validQuote(), validQuote(), validQuote()
	a.Symbol, b.Symbol, c.Symbol = "600001", "600002", "600003"
	b.Volume = 0 // dropped

	kept := defaultFilter().Apply(context.Background(), []model.Quote{a, b, c})
	if len(kept) != 2 {
		t.Fatalf("Expected 2 kept, got %d", len(kept))
	}
	if kept[0].Symbol != "600001" || kept[1].Symbol != "600003" {
		t.Errorf("Snapshot order not preserved: %s, %s", kept[0].Symbol, kept[1].Symbol)
	}
}
