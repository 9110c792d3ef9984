package entities

import (
	"strings"
	"time"

	"github.com/zatekoja/healthmarket/pkg/money"
)

// Medicine is a pharmacy catalog item
type Medicine struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	MRP         money.Paise `json:"mrp"`
	Price       money.Paise `json:"price"`
	Description string      `json:"description,omitempty"`
	Image       string      `json:"image,omitempty"`
	Category    string      `json:"category,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks the admin catalog form rules
func (m *Medicine) Validate() string {
	return validateCatalogPrice(m.Name, m.Price, m.MRP)
}

// DiscountPercent is the whole-number discount off MRP
func (m *Medicine) DiscountPercent() int64 {
	if m.MRP <= 0 || m.Price >= m.MRP {
		return 0
	}
	return int64((m.MRP - m.Price) * 100 / m.MRP)
}

func validateCatalogPrice(name string, price, mrp money.Paise) string {
	switch {
	case strings.TrimSpace(name) == "":
		return "name is required"
	case price <= 0:
		return "price must be greater than zero"
	case mrp <= 0:
		return "mrp must be greater than zero"
	case price > mrp:
		return "price must not exceed mrp"
	}
	return ""
}
