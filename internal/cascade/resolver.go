// Package cascade drives the dependent vehicle type -> brand -> model -> year
// -> price lookup and owns the state of each dependent selector.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fipe/consulta/internal/client"
	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/notify"

	log "github.com/sirupsen/logrus"
)

const (
	msgMissingFields = "Por favor, preencha todos os campos."
	msgQuoteFailed   = "Erro ao consultar veículo. Tente novamente."
	msgInvalidChoice = "Opção indisponível. Selecione novamente."
)

// ErrSuperseded is returned when a response arrives after a newer selection
// already reset its selector. The response is discarded.
var ErrSuperseded = errors.New("response superseded by a newer selection")

// Snapshot is an immutable copy of the resolver state.
type Snapshot struct {
	Category domain.VehicleCategory `json:"category"`
	Brand    SelectorState          `json:"brand"`
	Model    SelectorState          `json:"model"`
	Year     SelectorState          `json:"year"`
	Quoting  bool                   `json:"quoting"`
	Result   *domain.CurrentResult  `json:"result,omitempty"`
}

type Resolver struct {
	client   client.FipeClient
	notifier notify.Notifier
	now      func() time.Time

	mu         sync.Mutex
	category   domain.VehicleCategory
	selectors  [tierCount]SelectorState
	generation [tierCount]uint64
	quoteGen   uint64
	quoting    bool
	result     *domain.CurrentResult
}

func NewResolver(fipe client.FipeClient, notifier notify.Notifier) *Resolver {
	r := &Resolver{
		client:   fipe,
		notifier: notifier,
		now:      time.Now,
	}
	for t := TierBrand; t < tierCount; t++ {
		r.selectors[t] = disabledSelector(tierTexts[t].disabled)
	}
	return r
}

// SelectCategory loads the brands of category. An empty category is ignored.
func (r *Resolver) SelectCategory(ctx context.Context, category domain.VehicleCategory) error {
	if category == "" {
		return nil
	}

	r.mu.Lock()
	r.category = category
	gen := r.beginLoad(TierBrand)
	r.mu.Unlock()

	options, err := r.client.ListBrands(ctx, category)
	return r.finishLoad(TierBrand, gen, options, err)
}

// SelectBrand records brandCode and loads its models. An empty code is
// ignored. The code must be one of the brands currently listed.
func (r *Resolver) SelectBrand(ctx context.Context, brandCode string) error {
	if brandCode == "" {
		return nil
	}

	r.mu.Lock()
	category := r.category
	if err := r.checkChoice(TierBrand, brandCode); err != nil {
		r.mu.Unlock()
		return err
	}
	r.selectors[TierBrand].Selected = brandCode
	gen := r.beginLoad(TierModel)
	r.mu.Unlock()

	options, err := r.client.ListModels(ctx, category, brandCode)
	return r.finishLoad(TierModel, gen, options, err)
}

// SelectModel records modelCode and loads its years. An empty code is
// ignored. The code must be one of the models listed for the current brand.
func (r *Resolver) SelectModel(ctx context.Context, modelCode string) error {
	if modelCode == "" {
		return nil
	}

	r.mu.Lock()
	category := r.category
	brandCode := r.selectors[TierBrand].Selected
	if err := r.checkChoice(TierModel, modelCode); err != nil {
		r.mu.Unlock()
		return err
	}
	r.selectors[TierModel].Selected = modelCode
	gen := r.beginLoad(TierYear)
	r.mu.Unlock()

	options, err := r.client.ListYears(ctx, category, brandCode, modelCode)
	return r.finishLoad(TierYear, gen, options, err)
}

// Submit records yearCode and resolves the quote for the current selection.
// The year must be listed for the current model; a year picked before the
// model changed, or while its years are still loading, is rejected.
func (r *Resolver) Submit(ctx context.Context, yearCode string) (*domain.CurrentResult, error) {
	r.mu.Lock()
	if !r.selectors[TierYear].offers(yearCode) {
		r.mu.Unlock()
		r.notifier.Error(msgMissingFields)
		return nil, fmt.Errorf("%w: year %q is not available for the current model", domain.ErrValidation, yearCode)
	}
	r.selectors[TierYear].Selected = yearCode
	selection := domain.Selection{
		Category:  r.category,
		BrandCode: r.selectors[TierBrand].Selected,
		ModelCode: r.selectors[TierModel].Selected,
		YearCode:  yearCode,
	}
	r.mu.Unlock()

	return r.ResolveQuote(ctx, selection)
}

// ResolveQuote fetches the price of a complete selection and records it as
// the current result. Any previous result is cleared first.
func (r *Resolver) ResolveQuote(ctx context.Context, selection domain.Selection) (*domain.CurrentResult, error) {
	if !selection.Complete() {
		r.notifier.Error(msgMissingFields)
		return nil, fmt.Errorf("%w: all selections are required", domain.ErrValidation)
	}

	r.mu.Lock()
	r.quoteGen++
	gen := r.quoteGen
	r.result = nil
	r.quoting = true
	r.mu.Unlock()

	quote, err := r.client.GetQuote(ctx, selection)

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.quoteGen {
		log.Debugf("Dropping superseded quote response for %+v", selection)
		return nil, ErrSuperseded
	}
	r.quoting = false

	if err != nil {
		log.Errorf("Erro na consulta: %v", err)
		r.notifier.Error(msgQuoteFailed)
		return nil, err
	}

	r.result = &domain.CurrentResult{
		PriceQuote: *quote,
		Selection:  selection,
		QueriedAt:  domain.FormatQueriedAt(r.now()),
	}
	result := *r.result
	return &result, nil
}

// CurrentResult returns the last successful quote, or nil.
func (r *Resolver) CurrentResult() *domain.CurrentResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.result == nil {
		return nil
	}
	result := *r.result
	return &result
}

func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Category: r.category,
		Brand:    r.selectors[TierBrand].clone(),
		Model:    r.selectors[TierModel].clone(),
		Year:     r.selectors[TierYear].clone(),
		Quoting:  r.quoting,
	}
	if r.result != nil {
		result := *r.result
		s.Result = &result
	}
	return s
}

// checkChoice rejects code unless tier is populated and lists it. A tier
// that is still disabled reports what has to be picked first. Callers hold
// r.mu.
func (r *Resolver) checkChoice(tier Tier, code string) error {
	sel := r.selectors[tier]
	if sel.offers(code) {
		return nil
	}

	if sel.Disabled {
		r.notifier.Error(tierTexts[tier].disabled)
		return fmt.Errorf("%w: %s selector is not available yet", domain.ErrValidation, tier)
	}
	r.notifier.Error(msgInvalidChoice)
	return fmt.Errorf("%w: %s %q is not among the listed options", domain.ErrValidation, tier, code)
}

// beginLoad puts tier into its loading state and synchronously resets every
// tier below it together with the current result. An in-flight quote is
// superseded. Callers hold r.mu.
func (r *Resolver) beginLoad(tier Tier) uint64 {
	r.result = nil
	r.quoting = false
	r.quoteGen++

	r.selectors[tier] = loadingSelector(tierTexts[tier].loading)
	r.generation[tier]++
	for t := tier + 1; t < tierCount; t++ {
		r.selectors[t] = disabledSelector(tierTexts[t].disabled)
		r.generation[t]++
	}
	return r.generation[tier]
}

func (r *Resolver) finishLoad(tier Tier, gen uint64, options []domain.SelectableOption, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation[tier] {
		log.Debugf("Dropping superseded %s response", tier)
		return ErrSuperseded
	}

	if err != nil {
		log.Errorf("Erro ao carregar %s: %v", tier, err)
		r.selectors[tier] = failedSelector()
		r.notifier.Error(tierTexts[tier].failure)
		return err
	}

	r.selectors[tier] = populatedSelector(tierTexts[tier].prompt, options)
	log.Debugf("Populated %s selector with %d options", tier, len(options))
	return nil
}
