package catalog

import (
	"strings"
	"testing"

	"github.com/angelmondragon/catalog-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

func TestNormalizeName(t *testing.T) {
	got, err := NormalizeName("name", "  Chair ")
	if err != nil || got != "Chair" {
		t.Fatalf("expected trimmed name, got %q (%v)", got, err)
	}
	if _, err := NormalizeName("name", "   "); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
	if _, err := NormalizeName("name", strings.Repeat("x", MaxNameLength+1)); err == nil {
		t.Fatal("expected validation error for long name")
	}
}

func TestValidatePrice(t *testing.T) {
	if err := ValidatePrice(decimal.Zero); err != nil {
		t.Fatalf("zero price should be allowed: %v", err)
	}
	if err := ValidatePrice(decimal.NewFromFloat(-0.01)); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestValidatePriceFitsColumn(t *testing.T) {
	tests := []struct {
		price string
		ok    bool
	}{
		{price: "9999999999.99", ok: true},
		{price: "1.50", ok: true},
		{price: "1.500", ok: true},
		{price: "10000000000", ok: false},
		{price: "12345678901.5", ok: false},
		{price: "1.005", ok: false},
		{price: "0.001", ok: false},
	}
	for _, tc := range tests {
		err := ValidatePrice(decimal.RequireFromString(tc.price))
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.price, err)
		}
		if !tc.ok && !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.price, err)
		}
	}

	_, err := RequirePrice(func() *decimal.Decimal { d := decimal.RequireFromString("2.999"); return &d }())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Details() == nil {
		t.Fatalf("expected detailed validation error, got %v", err)
	}
}

func TestRequirePrice(t *testing.T) {
	if _, err := RequirePrice(nil); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected missing price to fail, got %v", err)
	}
	p := decimal.RequireFromString("3.10")
	got, err := RequirePrice(&p)
	if err != nil || !got.Equal(p) {
		t.Fatalf("expected price passthrough, got %v (%v)", got, err)
	}
}

func TestItemRefFromModel(t *testing.T) {
	ref := ItemRefFromModel(models.Item{ID: 3, Name: "Chair", Price: decimal.RequireFromString("12.50"), StoreID: 9})
	if ref.Price != 12.5 || ref.StoreID != 9 {
		t.Fatalf("unexpected ref %+v", ref)
	}
	if len(ItemRefs(nil)) != 0 || TagRefs(nil) == nil {
		t.Fatal("expected empty non-nil slices")
	}
}
