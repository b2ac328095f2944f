package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/confetex/api/internal/status"
)

type School struct {
	ID        uuid.UUID
	Name      string
	Slug      string
	Address   pgtype.Text
	Phone     pgtype.Text
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	FullName     string
	Phone        pgtype.Text
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserSchoolRole struct {
	UserID    uuid.UUID
	SchoolID  uuid.UUID
	Role      string
	CreatedAt time.Time
}

// GarmentType is school-scoped; a NULL school_id marks a global type shared by
// every school's catalog.
type GarmentType struct {
	ID                   uuid.UUID
	SchoolID             pgtype.UUID
	Name                 string
	Description          pgtype.Text
	RequiresMeasurements bool
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Product is a single sellable variant row (garment type + size + color).
// Grouping into the display hierarchy happens in internal/catalog.
type Product struct {
	ID            uuid.UUID
	SchoolID      pgtype.UUID
	GarmentTypeID uuid.UUID
	Name          string
	Size          string
	Color         string
	Price         pgtype.Numeric
	Stock         int32
	ImageUrl      pgtype.Text
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Client struct {
	ID        uuid.UUID
	SchoolID  uuid.UUID
	Name      string
	Phone     pgtype.Text
	Email     pgtype.Text
	Document  pgtype.Text
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order holds a registered client reference (ClientID) or an external client
// (ClientName/ClientPhone), never both. paid_amount is not a column: it is
// computed from order_payments at read time.
type Order struct {
	ID           uuid.UUID
	SchoolID     uuid.UUID
	Code         string
	ClientID     pgtype.UUID
	ClientName   pgtype.Text
	ClientPhone  pgtype.Text
	Status       status.OrderStatus
	Subtotal     pgtype.Numeric
	TaxAmount    pgtype.Numeric
	Total        pgtype.Numeric
	DeliveryDate pgtype.Date
	Notes        pgtype.Text
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type OrderItem struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	Quantity       int32
	UnitPrice      pgtype.Numeric
	Subtotal       pgtype.Numeric
	Status         status.OrderStatus
	Measurements   []byte // JSONB, present when the garment type requires them
	EmbroideryText pgtype.Text
	StockReserved  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderPayment struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	Method     string
	Amount     pgtype.Numeric
	Reference  pgtype.Text
	RecordedBy uuid.UUID
	RecordedAt time.Time
}

type Alteration struct {
	ID                uuid.UUID
	Code              string
	ClientID          pgtype.UUID
	ClientName        pgtype.Text
	ClientPhone       pgtype.Text
	Garment           string
	Description       pgtype.Text
	Cost              pgtype.Numeric
	Status            status.AlterationStatus
	ReceivedDate      pgtype.Date
	EstimatedDelivery pgtype.Date
	CreatedBy         uuid.UUID
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type AlterationPayment struct {
	ID           uuid.UUID
	AlterationID uuid.UUID
	Method       string
	Amount       pgtype.Numeric
	RecordedBy   uuid.UUID
	RecordedAt   time.Time
}

type PqrsTicket struct {
	ID        uuid.UUID
	SchoolID  pgtype.UUID
	Type      string
	Name      string
	Email     string
	Phone     pgtype.Text
	Message   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CashTransaction struct {
	ID           uuid.UUID
	SchoolID     uuid.UUID
	Box          string
	Kind         string
	Code         string
	Concept      string
	Amount       pgtype.Numeric
	EntryDate    pgtype.Date
	OrderID      pgtype.UUID
	AlterationID pgtype.UUID
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
}
