// Package relationship provides the company relationship lookup consumed by
// the scope resolver for cross-company access.
package relationship

import (
	"context"

	"verdict/pkg/domain"
)

// Store is the read-only relationship lookup. The pair is unordered: an
// active relationship between (a, b) also covers (b, a).
type Store interface {
	RelationshipActive(ctx context.Context, a, b domain.CompanyID) (bool, error)
}

// pairKey builds an order-independent key for a company pair.
func pairKey(a, b domain.CompanyID) string {
	as, bs := a.String(), b.String()
	if bs < as {
		as, bs = bs, as
	}
	return as + ":" + bs
}
