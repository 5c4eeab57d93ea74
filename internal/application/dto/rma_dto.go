package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateRMAItemRequest línea del body de POST /api/rmas.
type CreateRMAItemRequest struct {
	SourceLineItemID string          `json:"source_line_item_id,omitempty"`
	ProductID        string          `json:"product_id"`
	VariantID        string          `json:"variant_id,omitempty"`
	Quantity         int             `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
}

// CreateRMARequest body de POST /api/rmas.
type CreateRMARequest struct {
	CustomerID               string                 `json:"customer_id"`
	OriginatingTransactionID string                 `json:"originating_transaction_id,omitempty"`
	Reason                   string                 `json:"reason"`
	RequestedResolution      string                 `json:"requested_resolution,omitempty"` // REFUND (defecto), EXCHANGE, STORE_CREDIT
	RequiresInspection       bool                   `json:"requires_inspection"`
	CustomerNotes            string                 `json:"customer_notes,omitempty"`
	PurchasedAt              *time.Time             `json:"purchased_at,omitempty"`
	Items                    []CreateRMAItemRequest `json:"items"`
}

// RejectRMARequest body de POST /api/rmas/:id/reject.
type RejectRMARequest struct {
	Reason string `json:"reason"`
}

// ReceiveRMARequest body de POST /api/rmas/:id/receive.
// ItemConditions: item_id → UNOPENED | OPENED_UNUSED | USED_GOOD | USED_FAIR | DEFECTIVE | DAMAGED.
type ReceiveRMARequest struct {
	ItemConditions  map[string]string `json:"item_conditions"`
	InspectionNotes string            `json:"inspection_notes,omitempty"`
}

// RefundRMARequest body de POST /api/rmas/:id/refund. Sin refund_amount se usa el monto calculado.
type RefundRMARequest struct {
	RefundAmount *decimal.Decimal `json:"refund_amount,omitempty"`
}

// SetDispositionRequest body de PUT /api/rmas/:id/items/:itemId/disposition.
type SetDispositionRequest struct {
	Disposition string `json:"disposition"` // RESTOCK | VENDOR_RETURN
}

// CreateVendorRMARequest body de POST /api/rmas/:id/vendor-rma.
type CreateVendorRMARequest struct {
	VendorID string   `json:"vendor_id"`
	ItemIDs  []string `json:"item_ids"`
}

// CreatedResponse id del recurso creado.
type CreatedResponse struct {
	ID string `json:"id"`
}

// RMAResponse solicitud de devolución.
type RMAResponse struct {
	ID                       string          `json:"id"`
	ReferenceCode            string          `json:"reference_code"`
	CustomerID               string          `json:"customer_id"`
	OriginatingTransactionID string          `json:"originating_transaction_id,omitempty"`
	VendorID                 string          `json:"vendor_id,omitempty"`
	Kind                     string          `json:"kind"`
	Status                   string          `json:"status"`
	Reason                   string          `json:"reason"`
	RequestedResolution      string          `json:"requested_resolution"`
	TotalAmount              decimal.Decimal `json:"total_amount"`
	RefundAmount             decimal.Decimal `json:"refund_amount"`
	RestockingFee            decimal.Decimal `json:"restocking_fee"`
	RequiresInspection       bool            `json:"requires_inspection"`
	CustomerNotes            string          `json:"customer_notes,omitempty"`
	InternalNotes            string          `json:"internal_notes,omitempty"`
	InspectionNotes          string          `json:"inspection_notes,omitempty"`
	ApprovedBy               string          `json:"approved_by,omitempty"`
	ProcessedBy              string          `json:"processed_by,omitempty"`
	RequestedAt              time.Time       `json:"requested_at"`
	ApprovedAt               *time.Time      `json:"approved_at,omitempty"`
	ReceivedAt               *time.Time      `json:"received_at,omitempty"`
	CompletedAt              *time.Time      `json:"completed_at,omitempty"`
}

// RMAItemResponse línea de una devolución.
type RMAItemResponse struct {
	ID                string          `json:"id"`
	SourceLineItemID  string          `json:"source_line_item_id,omitempty"`
	ProductID         string          `json:"product_id"`
	VariantID         string          `json:"variant_id,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	TotalPrice        decimal.Decimal `json:"total_price"`
	ConditionReceived string          `json:"condition_received,omitempty"`
	Disposition       string          `json:"disposition,omitempty"`
	Restocked         bool            `json:"restocked"`
	RestockedAt       *time.Time      `json:"restocked_at,omitempty"`
}

// StatusHistoryResponse entrada del historial.
type StatusHistoryResponse struct {
	OldStatus string    `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status"`
	ChangedBy string    `json:"changed_by,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// RMADetailResponse respuesta de GET /api/rmas/:id.
type RMADetailResponse struct {
	RMAResponse
	Items   []RMAItemResponse       `json:"items"`
	History []StatusHistoryResponse `json:"history"`
}

// RMAListResponse respuesta de GET /api/rmas.
type RMAListResponse struct {
	Items []RMAResponse `json:"items"`
	Page  PageResponse  `json:"page"`
}

// RMAStatsDTO respuesta de GET /api/rmas/stats.
type RMAStatsDTO struct {
	StartDate          string          `json:"start_date"`
	EndDate            string          `json:"end_date"`
	TotalRequests      int             `json:"total_requests"`
	Pending            int             `json:"pending"`
	Approved           int             `json:"approved"`
	Rejected           int             `json:"rejected"`
	Received           int             `json:"received"`
	Completed          int             `json:"completed"` // REFUNDED
	TotalAmount        decimal.Decimal `json:"total_amount"`
	RefundAmount       decimal.Decimal `json:"refund_amount"`
	RestockingFeeTotal decimal.Decimal `json:"restocking_fee_total"`
	TopReasons         []RMAReasonDTO  `json:"top_reasons"`
}

// RMAReasonDTO motivo de devolución con su frecuencia en el período.
type RMAReasonDTO struct {
	Reason string          `json:"reason"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}
