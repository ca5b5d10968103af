package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCanceled  OrderStatus = "CANCELED"
)

// 注文。金額と配送先は作成時点のスナップショット。
// PaidAtが入ったらキャンセル・削除は不可（支払いは一方通行）。
type Order struct {
	ID     int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64       `gorm:"not null;index" json:"user_id"`
	Status OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//配送先スナップショット
	ShippingName       string `gorm:"type:varchar(255);not null" json:"shipping_name"`
	ShippingPhone      string `gorm:"type:varchar(30)" json:"shipping_phone"`
	ShippingAddress    string `gorm:"type:varchar(255);not null" json:"shipping_address"`
	ShippingCity       string `gorm:"type:varchar(255);not null" json:"shipping_city"`
	ShippingRegion     string `gorm:"type:varchar(255)" json:"shipping_region"`
	ShippingPostalCode string `gorm:"type:varchar(20);not null" json:"shipping_postal_code"`

	PaymentMethod   string  `gorm:"type:varchar(50);not null" json:"payment_method"`
	PaymentResultID *string `gorm:"type:varchar(255)" json:"payment_result_id"`

	ItemsPrice    int64 `gorm:"not null" json:"items_price"`
	ShippingPrice int64 `gorm:"not null" json:"shipping_price"`
	TaxPrice      int64 `gorm:"not null" json:"tax_price"`
	TotalPrice    int64 `gorm:"not null" json:"total_price"`
	TotalWeight   int64 `gorm:"not null;default:0" json:"total_weight"`

	PaidAt      *time.Time `gorm:"index" json:"paid_at"`
	DeliveredAt *time.Time `json:"delivered_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (o Order) IsPaid() bool {
	return o.PaidAt != nil
}

func (o Order) IsDelivered() bool {
	return o.DeliveredAt != nil
}
