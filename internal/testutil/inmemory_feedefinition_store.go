package testutil

import (
	"context"

	"github.com/flexprice/feeledger/internal/domain/feedefinition"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/samber/lo"
)

// InMemoryFeeDefinitionStore implements feedefinition.Repository
type InMemoryFeeDefinitionStore struct {
	*InMemoryStore[*feedefinition.FeeDefinition]
}

func NewInMemoryFeeDefinitionStore() *InMemoryFeeDefinitionStore {
	return &InMemoryFeeDefinitionStore{
		InMemoryStore: NewInMemoryStore[*feedefinition.FeeDefinition](),
	}
}

func copyFeeDefinition(def *feedefinition.FeeDefinition) *feedefinition.FeeDefinition {
	if def == nil {
		return nil
	}
	cp := *def
	cp.Lines = lo.Map(def.Lines, func(l *feedefinition.FeeLineTemplate, _ int) *feedefinition.FeeLineTemplate {
		lc := *l
		return &lc
	})
	return &cp
}

// Create seeds a fee definition; billing itself never writes them
func (s *InMemoryFeeDefinitionStore) Create(ctx context.Context, def *feedefinition.FeeDefinition) error {
	return s.InMemoryStore.Create(ctx, def.ID, copyFeeDefinition(def))
}

func (s *InMemoryFeeDefinitionStore) Get(ctx context.Context, id string) (*feedefinition.FeeDefinition, error) {
	def, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Fee definition with ID %s was not found", id).
			WithReportableDetails(map[string]any{
				"fee_definition_id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return copyFeeDefinition(def), nil
}
