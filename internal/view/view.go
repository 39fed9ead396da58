// Package view turns application state into plain view descriptions. The
// functions here do no I/O; page.go renders the descriptions to HTML.
package view

import (
	"fipe/consulta/internal/cascade"
	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/notify"
)

const (
	ResultCaption      = "Preço médio FIPE"
	FavoritesEmptyText = "Nenhum favorito salvo ainda."
	FavoritesNoMatch   = "Nenhum favorito encontrado."
	categoryPrompt     = "Selecione o tipo de veículo"
)

type Option struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Selected bool   `json:"selected,omitempty"`
}

// Selector is one dropdown. Options always start with the placeholder entry,
// whose Value is empty.
type Selector struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Action   string   `json:"action"`
	Options  []Option `json:"options"`
	Disabled bool     `json:"disabled"`
	Loading  bool     `json:"loading,omitempty"`
	Failed   bool     `json:"failed,omitempty"`
}

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Result struct {
	Title     string  `json:"title"`
	Fields    []Field `json:"fields"`
	Value     string  `json:"value"`
	Caption   string  `json:"caption"`
	QueriedAt string  `json:"queriedAt"`
}

type Favorite struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Details   []Field `json:"details"`
	Value     string  `json:"value"`
	QueriedAt string  `json:"queriedAt"`
	Reference string  `json:"reference"`
}

// Favorites is the favorites panel. Empty switches the panel to its empty
// state message.
type Favorites struct {
	Empty        bool       `json:"empty"`
	EmptyMessage string     `json:"emptyMessage,omitempty"`
	Count        int        `json:"count"`
	Query        string     `json:"query,omitempty"`
	Items        []Favorite `json:"items"`
}

type Banner struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type Page struct {
	Category  Selector  `json:"category"`
	Brand     Selector  `json:"brand"`
	Model     Selector  `json:"model"`
	Year      Selector  `json:"year"`
	Quoting   bool      `json:"quoting"`
	Result    *Result   `json:"result,omitempty"`
	Banner    *Banner   `json:"banner,omitempty"`
	Favorites Favorites `json:"favorites"`
}

// State is everything a page is built from.
type State struct {
	Snapshot  cascade.Snapshot
	Favorites []domain.FavoriteEntry
	Banner    *notify.Notification
	Query     string
}

func BuildPage(s State) Page {
	return Page{
		Category:  CategorySelector(s.Snapshot.Category),
		Brand:     RenderSelector("marca", "Marca", "/consulta/marca", s.Snapshot.Brand),
		Model:     RenderSelector("modelo", "Modelo", "/consulta/modelo", s.Snapshot.Model),
		Year:      RenderSelector("ano", "Ano", "/consulta", s.Snapshot.Year),
		Quoting:   s.Snapshot.Quoting,
		Result:    RenderResult(s.Snapshot.Result),
		Banner:    RenderBanner(s.Banner),
		Favorites: RenderFavorites(FilterFavorites(s.Favorites, s.Query), s.Query),
	}
}

func CategorySelector(current domain.VehicleCategory) Selector {
	options := []Option{{Label: categoryPrompt}}
	for _, c := range domain.VehicleCategories {
		options = append(options, Option{
			Value:    c.String(),
			Label:    c.GetCategoryName(),
			Selected: c == current,
		})
	}
	return Selector{
		Name:    "tipoVeiculo",
		Label:   "Tipo de Veículo",
		Action:  "/consulta/tipo",
		Options: options,
	}
}

func RenderSelector(name, label, action string, s cascade.SelectorState) Selector {
	options := make([]Option, 0, len(s.Options)+1)
	options = append(options, Option{Label: s.Placeholder})
	for _, o := range s.Options {
		options = append(options, Option{
			Value:    o.Code,
			Label:    o.Label,
			Selected: o.Code == s.Selected,
		})
	}
	return Selector{
		Name:     name,
		Label:    label,
		Action:   action,
		Options:  options,
		Disabled: s.Disabled || s.Loading || s.Failed,
		Loading:  s.Loading,
		Failed:   s.Failed,
	}
}

// RenderResult returns nil when there is no current result, which hides the
// result panel.
func RenderResult(r *domain.CurrentResult) *Result {
	if r == nil {
		return nil
	}
	return &Result{
		Title: r.Brand + " " + r.Model,
		Fields: []Field{
			{Label: "Ano Modelo", Value: r.ModelYear},
			{Label: "Combustível", Value: r.Fuel},
			{Label: "Código FIPE", Value: r.FipeCode},
			{Label: "Mês Referência", Value: r.ReferenceMonth},
		},
		Value:     r.Value,
		Caption:   ResultCaption,
		QueriedAt: r.QueriedAt,
	}
}

func RenderFavorites(entries []domain.FavoriteEntry, query string) Favorites {
	if len(entries) == 0 {
		message := FavoritesEmptyText
		if query != "" {
			message = FavoritesNoMatch
		}
		return Favorites{
			Empty:        true,
			EmptyMessage: message,
			Query:        query,
			Items:        []Favorite{},
		}
	}

	items := make([]Favorite, 0, len(entries))
	for _, e := range entries {
		items = append(items, Favorite{
			ID:    e.ID,
			Title: e.Brand + " " + e.Model,
			Details: []Field{
				{Label: "Ano", Value: e.ModelYear},
				{Label: "Combustível", Value: e.Fuel},
			},
			Value:     e.Value,
			QueriedAt: e.QueriedAt,
			Reference: e.ReferenceMonth,
		})
	}
	return Favorites{Count: len(items), Query: query, Items: items}
}

// RenderReferencePrice describes a single-code lookup.
func RenderReferencePrice(code string, p *domain.ReferencePrice) *Result {
	if p == nil {
		return nil
	}
	return &Result{
		Title: p.Brand + " " + p.Model,
		Fields: []Field{
			{Label: "Ano", Value: p.Year},
			{Label: "Código FIPE", Value: code},
		},
		Value:   p.Price,
		Caption: ResultCaption,
	}
}

func RenderBanner(n *notify.Notification) *Banner {
	if n == nil {
		return nil
	}
	return &Banner{Severity: string(n.Severity), Message: n.Message}
}
