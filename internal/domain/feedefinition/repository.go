package feedefinition

import "context"

// Repository reads fee definitions
type Repository interface {
	// Get returns the definition with its line templates ordered by sort order
	Get(ctx context.Context, id string) (*FeeDefinition, error)
}
