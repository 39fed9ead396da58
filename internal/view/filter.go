package view

import (
	"strings"
	"unicode"

	"fipe/consulta/internal/domain"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s, strips accents and collapses whitespace so that
// "Caminhões" and "caminhoes" compare equal.
func Normalize(s string) string {
	s = strings.ToLower(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, _ = transform.String(t, s)

	return strings.Join(strings.Fields(s), " ")
}

// FilterOptions keeps the options whose label contains query. An empty query
// keeps everything.
func FilterOptions(options []domain.SelectableOption, query string) []domain.SelectableOption {
	q := Normalize(query)
	if q == "" {
		return options
	}

	filtered := make([]domain.SelectableOption, 0, len(options))
	for _, o := range options {
		if strings.Contains(Normalize(o.Label), q) {
			filtered = append(filtered, o)
		}
	}
	return filtered
}

// FilterFavorites matches query against brand, model, year and reference code.
func FilterFavorites(entries []domain.FavoriteEntry, query string) []domain.FavoriteEntry {
	q := Normalize(query)
	if q == "" {
		return entries
	}

	filtered := make([]domain.FavoriteEntry, 0, len(entries))
	for _, e := range entries {
		haystack := Normalize(strings.Join([]string{e.Brand, e.Model, e.ModelYear, e.FipeCode}, " "))
		if strings.Contains(haystack, q) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
