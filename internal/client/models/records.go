package models

import "time"

// Record is implemented by every administrative entity mirrored locally.
type Record interface {
	GetID() int64
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (c Customer) GetID() int64 { return c.ID }

type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

type Product struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku,omitempty"`
	Description string    `json:"description,omitempty"`
	CustomerID  int64     `json:"customer_id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

func (p Product) GetID() int64 { return p.ID }

type ProductInput struct {
	Name        string `json:"name"`
	SKU         string `json:"sku,omitempty"`
	Description string `json:"description,omitempty"`
	CustomerID  int64  `json:"customer_id,omitempty"`
}

// Certificate asserts a product's authenticity. The client only displays it.
type Certificate struct {
	ID           int64      `json:"id"`
	SerialNumber string     `json:"serial_number"`
	ProductID    int64      `json:"product_id,omitempty"`
	CustomerID   int64      `json:"customer_id,omitempty"`
	ProductName  string     `json:"product_name,omitempty"`
	CustomerName string     `json:"customer_name,omitempty"`
	Status       string     `json:"status,omitempty"`
	IssuedAt     time.Time  `json:"issued_at,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

func (c Certificate) GetID() int64 { return c.ID }

type CertificateInput struct {
	ProductID  int64  `json:"product_id"`
	CustomerID int64  `json:"customer_id,omitempty"`
	Status     string `json:"status,omitempty"`
}
