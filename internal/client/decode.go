package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"fipe/consulta/internal/domain"
)

// wireText accepts a JSON string or number. The price table API returns
// numeric codes for models and numeric model years depending on the tier.
type wireText string

func (t *wireText) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = wireText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(b))
	}
	*t = wireText(n.String())
	return nil
}

type wireOption struct {
	Codigo wireText `json:"codigo"`
	Nome   string   `json:"nome"`
}

type wireQuote struct {
	Marca            string   `json:"Marca"`
	Modelo           string   `json:"Modelo"`
	AnoModelo        wireText `json:"AnoModelo"`
	Combustivel      string   `json:"Combustivel"`
	CodigoFipe       string   `json:"CodigoFipe"`
	MesReferencia    string   `json:"MesReferencia"`
	Valor            string   `json:"Valor"`
	SiglaCombustivel string   `json:"SiglaCombustivel"`
}

type wireReferencePrice struct {
	Preco  wireText `json:"preco"`
	Marca  string   `json:"marca"`
	Modelo string   `json:"modelo"`
	Ano    wireText `json:"ano"`
}

// DecodeOptions normalizes an option list that arrives either bare
// (`[{...}]`) or wrapped under field (`{"modelos": [{...}]}`).
func DecodeOptions(body []byte, field string) ([]domain.SelectableOption, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, fmt.Errorf("empty response body")
	}

	var raw []wireOption
	switch body[0] {
	case '[':
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode option list: %w", err)
		}
	case '{':
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode wrapped option list: %w", err)
		}
		list, ok := wrapped[field]
		if !ok {
			return nil, fmt.Errorf("response has no %q field", field)
		}
		if err := json.Unmarshal(list, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode %q list: %w", field, err)
		}
	default:
		return nil, fmt.Errorf("unexpected response shape starting with %q", body[0])
	}

	options := make([]domain.SelectableOption, 0, len(raw))
	for _, o := range raw {
		options = append(options, domain.SelectableOption{
			Code:  strings.TrimSpace(string(o.Codigo)),
			Label: o.Nome,
		})
	}
	return options, nil
}

func DecodeQuote(body []byte) (*domain.PriceQuote, error) {
	var w wireQuote
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}
	if w.CodigoFipe == "" {
		return nil, fmt.Errorf("quote has no CodigoFipe")
	}
	return &domain.PriceQuote{
		Brand:          w.Marca,
		Model:          w.Modelo,
		ModelYear:      string(w.AnoModelo),
		Fuel:           w.Combustivel,
		FipeCode:       w.CodigoFipe,
		ReferenceMonth: w.MesReferencia,
		Value:          w.Valor,
		FuelAcronym:    w.SiglaCombustivel,
	}, nil
}

func DecodeReferencePrice(body []byte) (*domain.ReferencePrice, error) {
	var w wireReferencePrice
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, fmt.Errorf("failed to decode reference price: %w", err)
	}
	return &domain.ReferencePrice{
		Price: string(w.Preco),
		Brand: w.Marca,
		Model: w.Modelo,
		Year:  string(w.Ano),
	}, nil
}
