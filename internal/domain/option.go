package domain

// SelectableOption is one entry of a brand, model or year selector.
type SelectableOption struct {
	Code  string `json:"codigo"`
	Label string `json:"nome"`
}
