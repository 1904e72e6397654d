package usecase

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/polkiloo/cakeshop-checkout/internal/domain/errors"
	"github.com/polkiloo/cakeshop-checkout/internal/domain/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeCustomer trims surrounding whitespace from every customer field.
func NormalizeCustomer(c model.Customer) model.Customer {
	return model.Customer{
		FirstName:     strings.TrimSpace(c.FirstName),
		LastName:      strings.TrimSpace(c.LastName),
		Phone:         strings.TrimSpace(c.Phone),
		Email:         strings.TrimSpace(c.Email),
		County:        strings.TrimSpace(c.County),
		PickupStation: strings.TrimSpace(c.PickupStation),
	}
}

// ValidateCustomer checks that every required customer field is present and well formed.
func ValidateCustomer(c model.Customer) error {
	if err := validate.Struct(c); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
		}
		return fmt.Errorf("%w: %s", domainErrors.ErrInvalidCustomer, strings.Join(fields, ", "))
	}
	return nil
}

// pricePlaces is the number of decimal places a stored price keeps.
const pricePlaces = 2

// ValidateLines checks every cart line: it needs a name, a positive quantity
// and a non-negative price with at most two decimal places.
func ValidateLines(lines []model.CartLine) error {
	for i, line := range lines {
		switch {
		case strings.TrimSpace(line.ProductName) == "":
			return fmt.Errorf("%w: line %d has no product name", domainErrors.ErrInvalidLineItem, i)
		case line.Quantity <= 0:
			return fmt.Errorf("%w: line %d quantity %d", domainErrors.ErrInvalidLineItem, i, line.Quantity)
		case line.UnitPrice.IsNegative():
			return fmt.Errorf("%w: line %d unit price %s", domainErrors.ErrInvalidLineItem, i, line.UnitPrice)
		case !line.UnitPrice.Equal(line.UnitPrice.Round(pricePlaces)):
			return fmt.Errorf("%w: line %d unit price %s has sub-cent precision", domainErrors.ErrInvalidLineItem, i, line.UnitPrice)
		}
	}
	return nil
}
