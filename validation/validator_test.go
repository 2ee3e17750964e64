package validation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/CypherAli/My-project/models"
)

func validPlace() models.PlaceData {
	return models.PlaceData{
		ID:       1,
		UserID:   1,
		Symbol:   "BTC/USD",
		Side:     models.OrderSideBuy,
		Type:     models.OrderTypeLimit,
		Price:    decimal.NewFromInt(50000),
		Quantity: decimal.NewFromInt(1),
	}
}

func TestValidatePlace(t *testing.T) {
	trigger := decimal.NewFromInt(49000)
	badTrigger := decimal.Zero

	tests := []struct {
		name      string
		mutate    func(*models.PlaceData)
		wantError bool
	}{
		{
			name:   "valid limit order",
			mutate: func(d *models.PlaceData) {},
		},
		{
			name: "valid market order without price",
			mutate: func(d *models.PlaceData) {
				d.Type = models.OrderTypeMarket
				d.Price = decimal.Zero
			},
		},
		{
			name: "valid stop-limit order",
			mutate: func(d *models.PlaceData) {
				d.Type = models.OrderTypeStopLimit
				d.TriggerPrice = &trigger
			},
		},
		{
			name:      "zero order id",
			mutate:    func(d *models.PlaceData) { d.ID = 0 },
			wantError: true,
		},
		{
			name:      "empty symbol",
			mutate:    func(d *models.PlaceData) { d.Symbol = "" },
			wantError: true,
		},
		{
			name:      "lowercase symbol",
			mutate:    func(d *models.PlaceData) { d.Symbol = "btc/usd" },
			wantError: true,
		},
		{
			name:      "symbol too long",
			mutate:    func(d *models.PlaceData) { d.Symbol = "ABCDEFGHIJKLMNOPQRSTU" },
			wantError: true,
		},
		{
			name:      "invalid side",
			mutate:    func(d *models.PlaceData) { d.Side = "hold" },
			wantError: true,
		},
		{
			name:      "invalid order type",
			mutate:    func(d *models.PlaceData) { d.Type = "iceberg" },
			wantError: true,
		},
		{
			name:      "zero price on limit order",
			mutate:    func(d *models.PlaceData) { d.Price = decimal.Zero },
			wantError: true,
		},
		{
			name:      "price above maximum",
			mutate:    func(d *models.PlaceData) { d.Price = decimal.NewFromInt(2000000000) },
			wantError: true,
		},
		{
			name:      "zero quantity",
			mutate:    func(d *models.PlaceData) { d.Quantity = decimal.Zero },
			wantError: true,
		},
		{
			name:      "negative quantity",
			mutate:    func(d *models.PlaceData) { d.Quantity = decimal.NewFromInt(-1) },
			wantError: true,
		},
		{
			name: "stop-limit without trigger",
			mutate: func(d *models.PlaceData) {
				d.Type = models.OrderTypeStopLimit
			},
			wantError: true,
		},
		{
			name: "stop-limit with zero trigger",
			mutate: func(d *models.PlaceData) {
				d.Type = models.OrderTypeStopLimit
				d.TriggerPrice = &badTrigger
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := validPlace()
			tt.mutate(&data)

			err := ValidatePlace(&data)
			if tt.wantError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestValidatePlaceMissingTriggerError(t *testing.T) {
	data := validPlace()
	data.Type = models.OrderTypeStopLimit

	if err := ValidatePlace(&data); err != ErrMissingTrigger {
		t.Errorf("Expected ErrMissingTrigger, got %v", err)
	}
}

func TestValidateCancel(t *testing.T) {
	if err := ValidateCancel(&models.CancelData{OrderID: 1}); err != nil {
		t.Errorf("Expected valid cancel, got %v", err)
	}
	if err := ValidateCancel(&models.CancelData{OrderID: 0}); err == nil {
		t.Error("Expected error for zero order id")
	}
}

func TestValidateSymbolFormats(t *testing.T) {
	tests := []struct {
		symbol string
		valid  bool
	}{
		{"BTC/USD", true},
		{"BTCUSD", true},
		{"ETH/USDT", true},
		{"A1/B2", true},
		{"", false},
		{"BTC-USD", false},
		{"BTC/USD/EUR", false},
		{"btc/usd", false},
		{" BTC/USD", false},
	}

	for _, tt := range tests {
		data := validPlace()
		data.Symbol = tt.symbol

		err := ValidatePlace(&data)
		if tt.valid && err != nil {
			t.Errorf("Symbol %q: expected valid, got %v", tt.symbol, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("Symbol %q: expected invalid", tt.symbol)
		}
	}
}
