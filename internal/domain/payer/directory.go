package payer

import "context"

// Directory answers whether a payer exists in the student registry.
// It is consulted on every invoice generation, in every environment.
type Directory interface {
	Exists(ctx context.Context, payerID string) (bool, error)
}
