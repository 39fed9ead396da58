package domain

// FavoriteEntry is a persisted favorite. ID and Selection never change after
// creation; a refresh only rewrites Value, ReferenceMonth and QueriedAt.
type FavoriteEntry struct {
	ID string `json:"id"`
	Selection
	PriceQuote
	QueriedAt string `json:"consultadoEm"`
}

func NewFavoriteEntry(id string, current CurrentResult) FavoriteEntry {
	return FavoriteEntry{
		ID:         id,
		Selection:  current.Selection,
		PriceQuote: current.PriceQuote,
		QueriedAt:  current.QueriedAt,
	}
}
