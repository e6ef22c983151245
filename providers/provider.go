package providers

import (
	"context"

	"scholar-metrics/models"
)

// Provider ist das Interface, das jede bibliografische Quelle (z.B. Scopus)
// implementieren muss.
type Provider interface {
	// FetchByAuthor ruft alle Publikationen einer Autoren-ID ab. Fehler werden
	// als Daten im FetchResult gemeldet und nie über die Batch-Grenze geworfen,
	// damit die übrigen IDs eines Batches weiterverarbeitet werden können.
	FetchByAuthor(ctx context.Context, authorID string) models.FetchResult

	// Name gibt den eindeutigen Namen des Providers zurück (z.B. "scopus").
	Name() string
}
