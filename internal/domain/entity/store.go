package entity

import "time"

// Store representa una tienda: frontera de tenant del motor.
// Toda operación de ledger está limitada por StoreID; nunca cruza tiendas.
type Store struct {
	ID            string
	OwnerID       string
	Name          string
	Location      string
	ContactNumber string
	TaxNumber     string
	StoreType     string // grocery, pharmacy, electronics, fashion, restaurant, home_services
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
