package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RMAStatus estado de una solicitud de devolución (RMA).
type RMAStatus string

// Estados del ciclo de vida. REJECTED y REFUNDED son terminales.
const (
	RMAStatusPending  RMAStatus = "PENDING"
	RMAStatusApproved RMAStatus = "APPROVED"
	RMAStatusRejected RMAStatus = "REJECTED"
	RMAStatusReceived RMAStatus = "RECEIVED"
	RMAStatusRefunded RMAStatus = "REFUNDED"
)

// rmaTransitions transiciones legales por estado; ningún paso se puede saltar.
var rmaTransitions = map[RMAStatus][]RMAStatus{
	RMAStatusPending:  {RMAStatusApproved, RMAStatusRejected},
	RMAStatusApproved: {RMAStatusReceived},
	RMAStatusReceived: {RMAStatusRefunded},
}

// CanTransitionTo indica si el paso s → next está permitido.
func (s RMAStatus) CanTransitionTo(next RMAStatus) bool {
	for _, allowed := range rmaTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal true para REJECTED y REFUNDED.
func (s RMAStatus) IsTerminal() bool {
	return len(rmaTransitions[s]) == 0
}

// Valid true si s es uno de los estados conocidos.
func (s RMAStatus) Valid() bool {
	switch s {
	case RMAStatusPending, RMAStatusApproved, RMAStatusRejected, RMAStatusReceived, RMAStatusRefunded:
		return true
	}
	return false
}

// RMAKind tipo de devolución.
type RMAKind string

const (
	RMAKindCustomerReturn RMAKind = "CUSTOMER_RETURN"
	RMAKindVendorReturn   RMAKind = "VENDOR_RETURN"
)

// Resolution resolución pedida por el cliente.
type Resolution string

const (
	ResolutionRefund      Resolution = "REFUND"
	ResolutionExchange    Resolution = "EXCHANGE"
	ResolutionStoreCredit Resolution = "STORE_CREDIT"
)

// Valid true si r es una resolución conocida.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionRefund, ResolutionExchange, ResolutionStoreCredit:
		return true
	}
	return false
}

// ItemCondition estado físico del ítem al recibirlo en bodega.
type ItemCondition string

const (
	ConditionUnopened     ItemCondition = "UNOPENED"
	ConditionOpenedUnused ItemCondition = "OPENED_UNUSED"
	ConditionUsedGood     ItemCondition = "USED_GOOD"
	ConditionUsedFair     ItemCondition = "USED_FAIR"
	ConditionDefective    ItemCondition = "DEFECTIVE"
	ConditionDamaged      ItemCondition = "DAMAGED"
)

// Valid true si c es una condición conocida.
func (c ItemCondition) Valid() bool {
	switch c {
	case ConditionUnopened, ConditionOpenedUnused, ConditionUsedGood,
		ConditionUsedFair, ConditionDefective, ConditionDamaged:
		return true
	}
	return false
}

// Disposition destino decidido para el ítem tras la inspección.
type Disposition string

const (
	DispositionRestock         Disposition = "RESTOCK"
	DispositionVendorReturn    Disposition = "VENDOR_RETURN"
	DispositionPendingDecision Disposition = "PENDING_DECISION"
)

// Valid true si d es una disposición conocida.
func (d Disposition) Valid() bool {
	switch d {
	case DispositionRestock, DispositionVendorReturn, DispositionPendingDecision:
		return true
	}
	return false
}

// RMARequest raíz del agregado de devolución.
// Invariante: RefundAmount + RestockingFee == TotalAmount desde la creación.
// Los campos string vacíos se persisten como NULL.
type RMARequest struct {
	ID                       string
	ReferenceCode            string // único, inmutable
	CustomerID               string
	OriginatingTransactionID string
	VendorID                 string // solo para VENDOR_RETURN
	Kind                     RMAKind
	Status                   RMAStatus
	Reason                   string
	RequestedResolution      Resolution
	TotalAmount              decimal.Decimal
	RefundAmount             decimal.Decimal
	RestockingFee            decimal.Decimal
	RequiresInspection       bool
	CustomerNotes            string
	InternalNotes            string
	InspectionNotes          string
	ApprovedBy               string
	ProcessedBy              string
	RequestedAt              time.Time
	ApprovedAt               *time.Time
	ReceivedAt               *time.Time
	CompletedAt              *time.Time
	UpdatedAt                time.Time
}

// RMAItem línea de una devolución; pertenece a una sola RMARequest.
// Invariante: Restocked implica Disposition == RESTOCK.
type RMAItem struct {
	ID                string
	RMARequestID      string
	SourceLineItemID  string
	ProductID         string
	VariantID         string
	Quantity          int
	UnitPrice         decimal.Decimal
	TotalPrice        decimal.Decimal // Quantity * UnitPrice, fijado al crear
	ConditionReceived ItemCondition   // vacío hasta la inspección
	Disposition       Disposition     // vacío hasta la inspección
	Restocked         bool
	RestockedAt       *time.Time
	CreatedAt         time.Time
}

// StatusHistoryEntry registro de auditoría (solo inserción).
type StatusHistoryEntry struct {
	ID           string
	RMARequestID string
	OldStatus    RMAStatus // vacío en la entrada inicial
	NewStatus    RMAStatus
	ChangedBy    string
	Notes        string
	ChangedAt    time.Time
}
