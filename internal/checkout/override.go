package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tournevent/pargo/internal/sales"
	"github.com/tournevent/pargo/pkg/shipper"
)

const careOf = " C/O "

var validate = validator.New()

// ValidatePickupPoint checks that a map selection carries the fields the
// shipping address is rebuilt from.
func ValidatePickupPoint(point shipper.PickupPoint) error {
	if err := validate.Struct(point); err != nil {
		return fmt.Errorf("invalid pickup point: %w", err)
	}
	return nil
}

// AddressSaver persists quote addresses.
type AddressSaver interface {
	SaveQuoteAddress(ctx context.Context, addr *sales.QuoteAddress) error
}

// ApplyPickupPoint rewrites the quote's shipping address to the pickup
// point and saves it. The shopper stays the addressee: the store name and
// point code are appended to the last name. An incomplete selection leaves
// the address untouched and reports false.
func ApplyPickupPoint(ctx context.Context, saver AddressSaver, addr *sales.QuoteAddress, point shipper.PickupPoint) (bool, error) {
	if ValidatePickupPoint(point) != nil {
		return false, nil
	}

	lastName := addr.LastName
	if i := strings.Index(lastName, careOf); i >= 0 {
		lastName = lastName[:i]
	}

	addr.LastName = lastName + careOf + point.StoreName + " pargoPointCode: " + point.Code
	addr.Company = point.StoreName
	addr.Street = point.Address1 + ", " + point.Address2
	addr.City = point.City
	addr.Region = point.Province
	addr.Postcode = point.PostalCode
	addr.CountryID = "ZA"
	addr.PupID = point.Code

	if err := saver.SaveQuoteAddress(ctx, addr); err != nil {
		return false, fmt.Errorf("applying pickup point %s: %w", point.Code, err)
	}
	return true, nil
}
