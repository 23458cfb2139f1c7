package ordersync

import (
	"github.com/tournevent/pargo/internal/sales"
	"github.com/tournevent/pargo/pkg/shipper/pargo"
)

// placeholder is sent for parcel measurements the shop does not record.
const placeholder = "0"

// BuildOrderRequest maps an order shipped to pickup point pupID onto the
// Pargo order payload.
func BuildOrderRequest(order *sales.Order, pupID, warehouseCode string) *pargo.OrderRequest {
	var addr sales.OrderAddress
	if a := order.ShippingAddress(); a != nil {
		addr = *a
	}
	email := addr.Email
	if email == "" {
		email = order.CustomerEmail
	}

	return &pargo.OrderRequest{
		Warehouse: pargo.Warehouse{WarehouseCode: warehouseCode},
		Consignee: pargo.Consignee{
			FirstName:    order.CustomerFirstName,
			LastName:     order.CustomerLastName,
			PhoneNumber:  addr.Telephone,
			MobileNumber: addr.Telephone,
			Email:        email,
			Address1:     addr.StreetLine(1),
			Address2:     addr.StreetLine(2),
			Suburb:       addr.Region,
			PostalCode:   addr.Postcode,
			City:         addr.City,
			Language:     "EN",
		},
		Communication: pargo.Communication{InformBySMS: 1},
		Delivery:      pargo.Delivery{PargoPointCode: pupID},
		OrderData:     pargo.OrderData{},
		TransportData: pargo.TransportData{
			Insurance:         placeholder,
			Dimensions:        placeholder,
			Weight:            placeholder,
			FinancialValue:    placeholder,
			ShippersReference: order.IncrementID,
		},
	}
}
