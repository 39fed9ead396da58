package domain

import "time"

// QueriedAtLayout renders timestamps the way a pt-BR locale string does.
const QueriedAtLayout = "02/01/2006, 15:04:05"

func FormatQueriedAt(t time.Time) string {
	return t.Format(QueriedAtLayout)
}

// PriceQuote is a fully resolved lookup. Value is provider-formatted currency
// text and is never parsed.
type PriceQuote struct {
	Brand          string `json:"Marca"`
	Model          string `json:"Modelo"`
	ModelYear      string `json:"AnoModelo"`
	Fuel           string `json:"Combustivel"`
	FipeCode       string `json:"CodigoFipe"`
	ReferenceMonth string `json:"MesReferencia"`
	Value          string `json:"Valor"`
	FuelAcronym    string `json:"SiglaCombustivel,omitempty"`
}

// Selection holds the codes that produced a quote.
type Selection struct {
	Category  VehicleCategory `json:"tipoVeiculo"`
	BrandCode string          `json:"marcaId"`
	ModelCode string          `json:"modeloId"`
	YearCode  string          `json:"anoId"`
}

func (s Selection) Complete() bool {
	return s.Category != "" && s.BrandCode != "" && s.ModelCode != "" && s.YearCode != ""
}

// CurrentResult is the last successful quote of the cascade.
type CurrentResult struct {
	PriceQuote
	Selection
	QueriedAt string `json:"consultadoEm"`
}

// ReferencePrice is returned by the single-code price provider.
type ReferencePrice struct {
	Price string `json:"preco"`
	Brand string `json:"marca"`
	Model string `json:"modelo"`
	Year  string `json:"ano"`
}
