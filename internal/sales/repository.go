package sales

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrNothingToShip is returned when no order line has a quantity left to ship.
	ErrNothingToShip = errors.New("nothing left to ship")
)

// Repository reads and writes sales records.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository on db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// CreateOrder inserts an order with its items and addresses.
func (r *Repository) CreateOrder(ctx context.Context, order *Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("creating order %s: %w", order.IncrementID, err)
	}
	return nil
}

// Order loads an order with its items, addresses and shipments.
func (r *Repository) Order(ctx context.Context, id uint) (*Order, error) {
	var order Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Addresses").
		Preload("Shipments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Shipments.Items").
		Preload("Shipments.Tracks").
		First(&order, id).Error
	if err != nil {
		return nil, fmt.Errorf("loading order %d: %w", id, translate(err))
	}
	return &order, nil
}

// StatusHistory returns an order's comments, oldest first.
func (r *Repository) StatusHistory(ctx context.Context, orderID uint) ([]StatusHistory, error) {
	var entries []StatusHistory
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("loading status history of order %d: %w", orderID, err)
	}
	return entries, nil
}

// SetOrderStatus changes an order's status.
func (r *Repository) SetOrderStatus(ctx context.Context, orderID uint, status string) error {
	res := r.db.WithContext(ctx).Model(&Order{}).Where("id = ?", orderID).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("updating status of order %d: %w", orderID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("updating status of order %d: %w", orderID, ErrNotFound)
	}
	return nil
}

// QuoteShippingAddress returns the shipping address of a quote.
func (r *Repository) QuoteShippingAddress(ctx context.Context, quoteID string) (*QuoteAddress, error) {
	var addr QuoteAddress
	err := r.db.WithContext(ctx).
		Where("quote_id = ? AND address_type = ?", quoteID, AddressTypeShipping).
		First(&addr).Error
	if err != nil {
		return nil, fmt.Errorf("loading shipping address of quote %s: %w", quoteID, translate(err))
	}
	return &addr, nil
}

// SaveQuoteAddress inserts or updates a quote address.
func (r *Repository) SaveQuoteAddress(ctx context.Context, addr *QuoteAddress) error {
	if err := r.db.WithContext(ctx).Save(addr).Error; err != nil {
		return fmt.Errorf("saving address of quote %s: %w", addr.QuoteID, err)
	}
	return nil
}

// SetQuoteShippingMethod stores the chosen shipping method on the quote's
// shipping address.
func (r *Repository) SetQuoteShippingMethod(ctx context.Context, quoteID, method string) error {
	res := r.db.WithContext(ctx).Model(&QuoteAddress{}).
		Where("quote_id = ? AND address_type = ?", quoteID, AddressTypeShipping).
		Update("shipping_method", method)
	if res.Error != nil {
		return fmt.Errorf("setting shipping method of quote %s: %w", quoteID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("setting shipping method of quote %s: %w", quoteID, ErrNotFound)
	}
	return nil
}

// CreateShipment ships every remaining quantity of the order. The shipment,
// the shipped quantities and the order's in-process flag are saved in one
// transaction. On success the shipment is appended to order.Shipments.
func (r *Repository) CreateShipment(ctx context.Context, order *Order, comment string) (*Shipment, error) {
	shipment := Shipment{OrderID: order.ID, Comment: comment}
	for _, item := range order.Items {
		if qty := item.QtyToShip(); qty > 0 {
			shipment.Items = append(shipment.Items, ShipmentItem{OrderItemID: item.ID, Qty: qty})
		}
	}
	if len(shipment.Items) == 0 {
		return nil, fmt.Errorf("creating shipment for order %s: %w", order.IncrementID, ErrNothingToShip)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&shipment).Error; err != nil {
			return err
		}
		for _, si := range shipment.Items {
			if err := tx.Model(&OrderItem{}).Where("id = ?", si.OrderItemID).
				Update("qty_shipped", gorm.Expr("qty_shipped + ?", si.Qty)).Error; err != nil {
				return err
			}
		}
		return tx.Model(order).Update("is_in_process", true).Error
	})
	if err != nil {
		return nil, fmt.Errorf("creating shipment for order %s: %w", order.IncrementID, err)
	}

	shipped := make(map[uint]int, len(shipment.Items))
	for _, si := range shipment.Items {
		shipped[si.OrderItemID] = si.Qty
	}
	for i := range order.Items {
		order.Items[i].QtyShipped += shipped[order.Items[i].ID]
	}
	order.IsInProcess = true
	order.Shipments = append(order.Shipments, shipment)
	return &order.Shipments[len(order.Shipments)-1], nil
}

// FindTrack returns the shipment's track with the given title.
func (r *Repository) FindTrack(ctx context.Context, shipmentID uint, title string) (*ShipmentTrack, error) {
	var track ShipmentTrack
	err := r.db.WithContext(ctx).
		Where("shipment_id = ? AND title = ?", shipmentID, title).
		Order("id").
		First(&track).Error
	if err != nil {
		return nil, fmt.Errorf("loading %s track of shipment %d: %w", title, shipmentID, translate(err))
	}
	return &track, nil
}

// FindTrackByNumber returns the track with the given number.
func (r *Repository) FindTrackByNumber(ctx context.Context, number string) (*ShipmentTrack, error) {
	var track ShipmentTrack
	if err := r.db.WithContext(ctx).Where("track_number = ?", number).First(&track).Error; err != nil {
		return nil, fmt.Errorf("loading track %s: %w", number, translate(err))
	}
	return &track, nil
}

// AddTrack attaches a track to a shipment and touches the order in one
// transaction.
func (r *Repository) AddTrack(ctx context.Context, order *Order, shipment *Shipment, track *ShipmentTrack) error {
	track.ShipmentID = shipment.ID
	track.OrderID = order.ID

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(track).Error; err != nil {
			return err
		}
		return tx.Model(order).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	})
	if err != nil {
		return fmt.Errorf("adding track to shipment %d: %w", shipment.ID, err)
	}
	shipment.Tracks = append(shipment.Tracks, *track)
	return nil
}

// AddStatusHistory appends a comment to the order and saves the order with it.
func (r *Repository) AddStatusHistory(ctx context.Context, order *Order, entry *StatusHistory) error {
	entry.OrderID = order.ID
	if entry.Status == "" {
		entry.Status = order.Status
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		return tx.Model(order).Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP")).Error
	})
	if err != nil {
		return fmt.Errorf("adding comment to order %s: %w", order.IncrementID, err)
	}
	order.StatusHistory = append(order.StatusHistory, *entry)
	return nil
}
