package client

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Wire types mirror the server's JSON. Money fields are decimal strings with
// two fraction digits, exactly as the server renders them.

type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	SchoolID     uuid.UUID `json:"school_id"`
	Role         string    `json:"role"`
	User         User      `json:"user"`
}

type Order struct {
	ID           uuid.UUID `json:"id"`
	SchoolID     uuid.UUID `json:"school_id"`
	Code         string    `json:"code"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientName   string    `json:"client_name,omitempty"`
	ClientPhone  string    `json:"client_phone,omitempty"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
	StatusColor  string    `json:"status_color"`
	NextStatus   string    `json:"next_status,omitempty"`
	Subtotal     string    `json:"subtotal"`
	TaxAmount    string    `json:"tax_amount"`
	Total        string    `json:"total"`
	DeliveryDate string    `json:"delivery_date,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type OrderItem struct {
	ID             uuid.UUID       `json:"id"`
	ProductID      uuid.UUID       `json:"product_id"`
	Quantity       int32           `json:"quantity"`
	UnitPrice      string          `json:"unit_price"`
	Subtotal       string          `json:"subtotal"`
	Status         string          `json:"status"`
	StatusLabel    string          `json:"status_label"`
	Measurements   json.RawMessage `json:"measurements,omitempty"`
	EmbroideryText string          `json:"embroidery_text,omitempty"`
	StockReserved  bool            `json:"stock_reserved"`
}

type OrderDetail struct {
	Order
	PaidAmount string      `json:"paid_amount"`
	Balance    string      `json:"balance"`
	Items      []OrderItem `json:"items"`
}

type Payment struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	Method     string    `json:"method"`
	Amount     string    `json:"amount"`
	Reference  string    `json:"reference,omitempty"`
	RecordedBy uuid.UUID `json:"recorded_by"`
	RecordedAt time.Time `json:"recorded_at"`
}

type PaymentResult struct {
	Payment    Payment `json:"payment"`
	PaidAmount string  `json:"paid_amount"`
	Balance    string  `json:"balance"`
	Paid       bool    `json:"paid"`
}

type Alteration struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	ClientID          string    `json:"client_id,omitempty"`
	ClientName        string    `json:"client_name,omitempty"`
	ClientPhone       string    `json:"client_phone,omitempty"`
	Garment           string    `json:"garment"`
	Description       string    `json:"description,omitempty"`
	Cost              string    `json:"cost"`
	Status            string    `json:"status"`
	StatusLabel       string    `json:"status_label"`
	StatusColor       string    `json:"status_color"`
	NextStatus        string    `json:"next_status,omitempty"`
	ReceivedDate      string    `json:"received_date,omitempty"`
	EstimatedDelivery string    `json:"estimated_delivery,omitempty"`
	CreatedBy         uuid.UUID `json:"created_by"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type AlterationDetail struct {
	Alteration
	PaidAmount string `json:"paid_amount"`
	Balance    string `json:"balance"`
}

type AlterationPaymentResult struct {
	Payment    AlterationPayment `json:"payment"`
	PaidAmount string            `json:"paid_amount"`
	Balance    string            `json:"balance"`
	Paid       bool              `json:"paid"`
}

type AlterationPayment struct {
	ID           uuid.UUID `json:"id"`
	AlterationID uuid.UUID `json:"alteration_id"`
	Method       string    `json:"method"`
	Amount       string    `json:"amount"`
	RecordedBy   uuid.UUID `json:"recorded_by"`
	RecordedAt   time.Time `json:"recorded_at"`
}

type Product struct {
	ID            uuid.UUID `json:"id"`
	SchoolID      string    `json:"school_id,omitempty"`
	GarmentTypeID uuid.UUID `json:"garment_type_id"`
	Name          string    `json:"name"`
	Size          string    `json:"size"`
	Color         string    `json:"color"`
	Price         string    `json:"price"`
	Stock         int32     `json:"stock"`
	ImageURL      string    `json:"image_url,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type GarmentType struct {
	ID                   uuid.UUID `json:"id"`
	SchoolID             string    `json:"school_id,omitempty"`
	Name                 string    `json:"name"`
	Description          string    `json:"description,omitempty"`
	RequiresMeasurements bool      `json:"requires_measurements"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type CatalogVariant struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Size     string    `json:"size"`
	Color    string    `json:"color"`
	Price    string    `json:"price"`
	Stock    int32     `json:"stock"`
	ImageURL string    `json:"image_url,omitempty"`
}

type CatalogGroupType struct {
	ID                   uuid.UUID `json:"id"`
	Name                 string    `json:"name"`
	RequiresMeasurements bool      `json:"requires_measurements"`
}

type CatalogGroup struct {
	GarmentType CatalogGroupType `json:"garment_type"`
	Sizes       []string         `json:"sizes"`
	Variants    []CatalogVariant `json:"variants"`
}

// ClientRecord is a school's customer. Named to avoid clashing with the API
// Client itself.
type ClientRecord struct {
	ID        uuid.UUID `json:"id"`
	SchoolID  uuid.UUID `json:"school_id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Document  string    `json:"document,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	FullName string    `json:"full_name"`
	Phone    string    `json:"phone,omitempty"`
	IsActive bool      `json:"is_active"`
}

type UserSchoolRole struct {
	UserID   uuid.UUID `json:"user_id"`
	SchoolID uuid.UUID `json:"school_id"`
	Role     string    `json:"role"`
}

type UserDetail struct {
	User
	Roles []UserSchoolRole `json:"roles"`
}

type School struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type PqrsTicket struct {
	ID        uuid.UUID `json:"id"`
	SchoolID  string    `json:"school_id,omitempty"`
	Type      string    `json:"type"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CashTransaction struct {
	ID           uuid.UUID `json:"id"`
	SchoolID     uuid.UUID `json:"school_id"`
	Box          string    `json:"box"`
	Kind         string    `json:"kind"`
	Code         string    `json:"code"`
	Concept      string    `json:"concept"`
	Amount       string    `json:"amount"`
	EntryDate    string    `json:"entry_date"`
	OrderID      string    `json:"order_id,omitempty"`
	AlterationID string    `json:"alteration_id,omitempty"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

type BoxSummary struct {
	Box     string `json:"box"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}
