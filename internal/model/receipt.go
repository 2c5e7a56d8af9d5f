package model

import "time"

// Receipt is the structured data extracted from one receipt file.
type Receipt struct {
	ID            string        `json:"id"`
	ReceiptFileID string        `json:"receipt_file_id"`
	PurchasedAt   *time.Time    `json:"purchased_at"`
	MerchantName  *string       `json:"merchant_name"`
	TotalAmount   float64       `json:"total_amount"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     *time.Time    `json:"updated_at"`
	Items         []ReceiptItem `json:"items"`
}

// ReceiptItem is a single purchased line on a receipt.
type ReceiptItem struct {
	ID          string  `json:"id"`
	ReceiptID   string  `json:"receipt_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}
