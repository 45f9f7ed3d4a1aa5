package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/catalog-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type priced struct {
	Name  string           `json:"name" validate:"required,max=80"`
	Price *decimal.Decimal `json:"price" validate:"required,gte=0,lt=10000000000"`
}

func TestDecodeJSONBodyComparesDecimalPrices(t *testing.T) {
	cases := []struct {
		body    string
		wantErr bool
	}{
		{`{"name":"chair","price":0}`, false},
		{`{"name":"chair","price":"12.50"}`, false},
		{`{"name":"chair","price":-0.01}`, true},
		{`{"name":"chair","price":"9999999999.99"}`, false},
		{`{"name":"chair","price":10000000000}`, true},
		{`{"name":"chair"}`, true},
		{`{"name":"","price":1}`, true},
		{`{"name":"chair","price":1,"extra":true}`, true},
	}
	for _, tc := range cases {
		req := httptest.NewRequest("POST", "/item", strings.NewReader(tc.body))
		var dest priced
		err := DecodeJSONBody(req, &dest)
		if tc.wantErr {
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("%s: expected validation error, got %v", tc.body, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tc.body, err)
		}
	}
}

func TestValidationDetailsUseJSONNames(t *testing.T) {
	req := httptest.NewRequest("POST", "/item", strings.NewReader(`{"name":"chair","price":-3}`))
	var dest priced
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["price"] != "must be greater than or equal to 0" {
		t.Fatalf("unexpected details %v", details)
	}
}

func TestParsePageBounds(t *testing.T) {
	req := httptest.NewRequest("GET", "/store?limit=500", nil)
	if _, err := ParsePage(req); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	req = httptest.NewRequest("GET", "/store?limit=5&cursor=abc", nil)
	params, err := ParsePage(req)
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}
	if params.Limit != 5 || params.Cursor != "abc" {
		t.Fatalf("unexpected params %+v", params)
	}
}
