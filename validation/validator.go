package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/CypherAli/My-project/models"
)

const (
	MaxSymbolLength = 20

	SymbolPattern = `^[A-Z0-9]+(/[A-Z0-9]+)?$`
)

var (
	symbolRegex = regexp.MustCompile(SymbolPattern)

	// Price and quantity bounds. Anything outside is either noise or a
	// fat-finger order that should never reach the book.
	minPrice    = decimal.RequireFromString("0.00000001")
	maxPrice    = decimal.RequireFromString("1000000000")
	minQuantity = decimal.RequireFromString("0.00000001")
	maxQuantity = decimal.RequireFromString("1000000000")
)

var (
	ErrUnknownCommandType = errors.New("unknown command type")
	ErrMissingTrigger     = errors.New("stop_limit order requires trigger_price")
)

// ValidatePlace checks a Place payload before it is admitted into matching.
func ValidatePlace(data *models.PlaceData) error {
	if data.ID == 0 {
		return errors.New("order id is required")
	}

	if err := validateSymbol(data.Symbol); err != nil {
		return err
	}

	if data.Side != models.OrderSideBuy && data.Side != models.OrderSideSell {
		return fmt.Errorf("invalid side: %q", data.Side)
	}

	switch data.Type {
	case models.OrderTypeLimit, models.OrderTypeStopLimit:
		if err := validateRange("price", data.Price, minPrice, maxPrice); err != nil {
			return err
		}
	case models.OrderTypeMarket:
		// Market orders ignore price.
	default:
		return fmt.Errorf("invalid order_type: %q", data.Type)
	}

	if err := validateRange("quantity", data.Quantity, minQuantity, maxQuantity); err != nil {
		return err
	}

	if data.Type == models.OrderTypeStopLimit {
		if data.TriggerPrice == nil {
			return ErrMissingTrigger
		}
		if err := validateRange("trigger_price", *data.TriggerPrice, minPrice, maxPrice); err != nil {
			return err
		}
	}

	return nil
}

// ValidateCancel checks a Cancel payload.
func ValidateCancel(data *models.CancelData) error {
	if data.OrderID == 0 {
		return errors.New("order id is required")
	}
	return nil
}

func validateSymbol(symbol string) error {
	if symbol == "" {
		return errors.New("symbol is required")
	}
	if len(symbol) > MaxSymbolLength {
		return fmt.Errorf("symbol exceeds %d characters", MaxSymbolLength)
	}
	if !symbolRegex.MatchString(symbol) {
		return fmt.Errorf("symbol %q does not match %s", symbol, SymbolPattern)
	}
	return nil
}

func validateRange(field string, value, min, max decimal.Decimal) error {
	if value.LessThan(min) {
		return fmt.Errorf("%s %s below minimum %s", field, value, min)
	}
	if value.GreaterThan(max) {
		return fmt.Errorf("%s %s above maximum %s", field, value, max)
	}
	return nil
}
