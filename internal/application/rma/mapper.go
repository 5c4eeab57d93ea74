package rma

import (
	"github.com/jhoicas/rma-api/internal/application/dto"
	"github.com/jhoicas/rma-api/internal/domain/entity"
)

// ToRMAResponse convierte la solicitud al DTO de respuesta.
func ToRMAResponse(r *entity.RMARequest) dto.RMAResponse {
	return dto.RMAResponse{
		ID:                       r.ID,
		ReferenceCode:            r.ReferenceCode,
		CustomerID:               r.CustomerID,
		OriginatingTransactionID: r.OriginatingTransactionID,
		VendorID:                 r.VendorID,
		Kind:                     string(r.Kind),
		Status:                   string(r.Status),
		Reason:                   r.Reason,
		RequestedResolution:      string(r.RequestedResolution),
		TotalAmount:              r.TotalAmount,
		RefundAmount:             r.RefundAmount,
		RestockingFee:            r.RestockingFee,
		RequiresInspection:       r.RequiresInspection,
		CustomerNotes:            r.CustomerNotes,
		InternalNotes:            r.InternalNotes,
		InspectionNotes:          r.InspectionNotes,
		ApprovedBy:               r.ApprovedBy,
		ProcessedBy:              r.ProcessedBy,
		RequestedAt:              r.RequestedAt,
		ApprovedAt:               r.ApprovedAt,
		ReceivedAt:               r.ReceivedAt,
		CompletedAt:              r.CompletedAt,
	}
}

// ToDetailResponse arma la respuesta de detalle con ítems e historial.
func ToDetailResponse(d *RMADetail) dto.RMADetailResponse {
	out := dto.RMADetailResponse{
		RMAResponse: ToRMAResponse(d.Request),
		Items:       make([]dto.RMAItemResponse, 0, len(d.Items)),
		History:     make([]dto.StatusHistoryResponse, 0, len(d.History)),
	}
	for _, it := range d.Items {
		out.Items = append(out.Items, dto.RMAItemResponse{
			ID:                it.ID,
			SourceLineItemID:  it.SourceLineItemID,
			ProductID:         it.ProductID,
			VariantID:         it.VariantID,
			Quantity:          it.Quantity,
			UnitPrice:         it.UnitPrice,
			TotalPrice:        it.TotalPrice,
			ConditionReceived: string(it.ConditionReceived),
			Disposition:       string(it.Disposition),
			Restocked:         it.Restocked,
			RestockedAt:       it.RestockedAt,
		})
	}
	for _, h := range d.History {
		out.History = append(out.History, dto.StatusHistoryResponse{
			OldStatus: string(h.OldStatus),
			NewStatus: string(h.NewStatus),
			ChangedBy: h.ChangedBy,
			Notes:     h.Notes,
			ChangedAt: h.ChangedAt,
		})
	}
	return out
}

// FromCreateRequest traduce el body HTTP a la entrada del caso de uso.
func FromCreateRequest(in dto.CreateRMARequest, actor string) CreateInput {
	out := CreateInput{
		CustomerID:               in.CustomerID,
		OriginatingTransactionID: in.OriginatingTransactionID,
		Reason:                   in.Reason,
		RequestedResolution:      entity.Resolution(in.RequestedResolution),
		RequiresInspection:       in.RequiresInspection,
		CustomerNotes:            in.CustomerNotes,
		PurchasedAt:              in.PurchasedAt,
		Items:                    make([]CreateItemInput, 0, len(in.Items)),
		Actor:                    actor,
	}
	for _, it := range in.Items {
		out.Items = append(out.Items, CreateItemInput{
			SourceLineItemID: it.SourceLineItemID,
			ProductID:        it.ProductID,
			VariantID:        it.VariantID,
			Quantity:         it.Quantity,
			UnitPrice:        it.UnitPrice,
		})
	}
	return out
}
