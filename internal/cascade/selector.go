package cascade

import "fipe/consulta/internal/domain"

type Tier int

const (
	TierBrand Tier = iota
	TierModel
	TierYear
	tierCount
)

func (t Tier) String() string {
	switch t {
	case TierBrand:
		return "marca"
	case TierModel:
		return "modelo"
	case TierYear:
		return "ano"
	default:
		return "desconhecido"
	}
}

const (
	placeholderPickCategory = "Primeiro selecione o tipo de veículo"
	placeholderPickBrand    = "Primeiro selecione a marca"
	placeholderPickModel    = "Primeiro selecione o modelo"
	placeholderFailed       = "Erro ao carregar"
)

// SelectorState is what one dependent dropdown shows. Options never include
// the leading placeholder entry; renderers add it.
type SelectorState struct {
	Placeholder string                    `json:"placeholder"`
	Options     []domain.SelectableOption `json:"options"`
	Selected    string                    `json:"selected"`
	Disabled    bool                      `json:"disabled"`
	Loading     bool                      `json:"loading"`
	Failed      bool                      `json:"failed"`
}

func disabledSelector(placeholder string) SelectorState {
	return SelectorState{Placeholder: placeholder, Disabled: true}
}

func loadingSelector(placeholder string) SelectorState {
	return SelectorState{Placeholder: placeholder, Loading: true}
}

func failedSelector() SelectorState {
	return SelectorState{Placeholder: placeholderFailed, Failed: true}
}

func populatedSelector(placeholder string, options []domain.SelectableOption) SelectorState {
	return SelectorState{Placeholder: placeholder, Options: options}
}

// offers reports whether code can be picked: the selector is populated and
// lists it.
func (s SelectorState) offers(code string) bool {
	if code == "" || s.Disabled || s.Loading || s.Failed {
		return false
	}
	for _, o := range s.Options {
		if o.Code == code {
			return true
		}
	}
	return false
}

func (s SelectorState) clone() SelectorState {
	if s.Options != nil {
		s.Options = append([]domain.SelectableOption(nil), s.Options...)
	}
	return s
}

// tierText holds the user-facing strings of one tier.
type tierText struct {
	loading  string
	prompt   string
	failure  string
	disabled string
}

var tierTexts = [tierCount]tierText{
	TierBrand: {
		loading:  "Carregando marcas...",
		prompt:   "Selecione a marca",
		failure:  "Erro ao carregar marcas. Tente novamente.",
		disabled: placeholderPickCategory,
	},
	TierModel: {
		loading:  "Carregando modelos...",
		prompt:   "Selecione o modelo",
		failure:  "Erro ao carregar modelos. Tente novamente.",
		disabled: placeholderPickBrand,
	},
	TierYear: {
		loading:  "Carregando anos...",
		prompt:   "Selecione o ano",
		failure:  "Erro ao carregar anos. Tente novamente.",
		disabled: placeholderPickModel,
	},
}
