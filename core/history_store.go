package core

import "context"

// HistoryStore persists processing results for later inspection. Stores
// read results only; they never mutate engine state. Short method names
// align with the other store interfaces.
type HistoryStore interface {
	Record(ctx context.Context, result ProcessingResult) error
	Recent(ctx context.Context, limit int) ([]ProcessingResult, error)
	// Search returns results whose concepts contain the query as a substring.
	Search(ctx context.Context, query string, limit int) ([]ProcessingResult, error)
	Delete(ctx context.Context, id string) error
}
