package rma_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/rma"
)

func TestResolveDisposition_TablaCompleta(t *testing.T) {
	cases := map[entity.ItemCondition]entity.Disposition{
		entity.ConditionUnopened:       entity.DispositionRestock,
		entity.ConditionOpenedUnused:   entity.DispositionRestock,
		entity.ConditionDefective:      entity.DispositionVendorReturn,
		entity.ConditionDamaged:        entity.DispositionVendorReturn,
		entity.ConditionUsedGood:       entity.DispositionPendingDecision,
		entity.ConditionUsedFair:       entity.DispositionPendingDecision,
		entity.ItemCondition("MELTED"): entity.DispositionPendingDecision,
		entity.ItemCondition(""):       entity.DispositionPendingDecision,
	}
	for cond, want := range cases {
		assert.Equal(t, want, rma.ResolveDisposition(cond), "condición %q", cond)
	}
}

// La función es determinista: misma entrada, misma salida.
func TestResolveDisposition_Determinista(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, entity.DispositionRestock, rma.ResolveDisposition(entity.ConditionUnopened))
	}
}
