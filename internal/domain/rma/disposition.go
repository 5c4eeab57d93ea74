package rma

import "github.com/jhoicas/rma-api/internal/domain/entity"

// ResolveDisposition decide el destino de un ítem según la condición con que llegó.
// Función total: cualquier valor desconocido queda en PENDING_DECISION.
func ResolveDisposition(condition entity.ItemCondition) entity.Disposition {
	switch condition {
	case entity.ConditionUnopened, entity.ConditionOpenedUnused:
		return entity.DispositionRestock
	case entity.ConditionDefective, entity.ConditionDamaged:
		return entity.DispositionVendorReturn
	default:
		return entity.DispositionPendingDecision
	}
}
