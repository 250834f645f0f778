package validator

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

func init() {
	Register()
}

type sample struct {
	Type    string          `binding:"omitempty,transaction_type"`
	Group   string          `binding:"omitempty,category_group"`
	Method  string          `binding:"omitempty,payment_method"`
	Status  string          `binding:"omitempty,transaction_status"`
	Period  string          `binding:"omitempty,period"`
	Code    string          `binding:"omitempty,subcategory_code"`
	Target  decimal.Decimal `binding:"money"`
}

func TestCustomValidators(t *testing.T) {
	tests := []struct {
		name  string
		input sample
		valid bool
	}{
		{"empty", sample{}, true},
		{"income", sample{Type: "income"}, true},
		{"transfer is not supported", sample{Type: "transfer"}, false},
		{"needs", sample{Group: "needs"}, true},
		{"unknown group", sample{Group: "luxury"}, false},
		{"credit card", sample{Method: "credit_card"}, true},
		{"pix not supported", sample{Method: "pix"}, false},
		{"pending", sample{Status: "pending"}, true},
		{"overdue not a status", sample{Status: "overdue"}, false},
		{"period", sample{Period: "2026-10"}, true},
		{"month 13", sample{Period: "2026-13"}, false},
		{"short period", sample{Period: "26-1"}, false},
		{"code", sample{Code: "cat_mercado"}, true},
		{"code with spaces", sample{Code: "Cat Mercado"}, false},
		{"cents", sample{Target: decimal.RequireFromString("10.25")}, true},
		{"sub-cent", sample{Target: decimal.RequireFromString("10.255")}, false},
		{"negative", sample{Target: decimal.RequireFromString("-1")}, false},
	}

	v := binding.Validator.Engine().(*validator.Validate)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
