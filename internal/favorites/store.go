// Package favorites manages the persisted list of favorite vehicles. The
// store is the only reader and writer of the favorites slot.
package favorites

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/metrics"
	"fipe/consulta/internal/notify"
	"fipe/consulta/internal/repository"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	msgNoCurrent    = "Nenhum veículo consultado para adicionar aos favoritos."
	msgDuplicate    = "Este veículo já está nos favoritos."
	msgAdded        = "Veículo adicionado aos favoritos!"
	msgAddFailed    = "Erro ao adicionar aos favoritos."
	msgRemoved      = "Favorito removido!"
	msgRemoveFailed = "Erro ao remover favorito."
	msgNotFound     = "Favorito não encontrado."
	msgUpdated      = "Favorito atualizado!"
	msgUpdateFailed = "Erro ao atualizar favorito."
	msgCleared      = "Favoritos limpos!"
	msgClearFailed  = "Erro ao limpar favoritos."
	msgLoadFailed   = "Erro ao carregar favoritos."

	ClearPrompt = "Tem certeza que deseja limpar todos os favoritos?"
)

// QuoteFetcher resolves a price for stored selection codes.
type QuoteFetcher interface {
	GetQuote(ctx context.Context, selection domain.Selection) (*domain.PriceQuote, error)
}

// Confirmer is the blocking yes/no gate in front of Clear.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

type Store struct {
	slot     repository.SlotRepository
	quotes   QuoteFetcher
	notifier notify.Notifier
	newID    func() (string, error)
	now      func() time.Time

	// mu serializes every read-modify-write of the slot. It is never held
	// across a remote call.
	mu sync.Mutex
}

func NewStore(slot repository.SlotRepository, quotes QuoteFetcher, notifier notify.Notifier) *Store {
	return &Store{
		slot:     slot,
		quotes:   quotes,
		notifier: notifier,
		newID:    newEntryID,
		now:      time.Now,
	}
}

// newEntryID returns a UUIDv7, which is unique and ordered by creation time.
func newEntryID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// List returns the favorites in insertion order. An empty slice is a valid
// result.
func (s *Store) List(ctx context.Context) ([]domain.FavoriteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		log.Errorf("Erro ao carregar favoritos: %v", err)
		s.notifier.Error(msgLoadFailed)
		return nil, err
	}
	return entries, nil
}

// Add stores current as a new favorite unless its reference code is already
// present.
func (s *Store) Add(ctx context.Context, current *domain.CurrentResult) ([]domain.FavoriteEntry, error) {
	if current == nil {
		s.notifier.Error(msgNoCurrent)
		metrics.ObserveFavorites("add", "rejected")
		return nil, domain.ErrNoCurrentResult
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return nil, s.fail("add", msgAddFailed, err)
	}

	for _, e := range entries {
		if e.FipeCode == current.FipeCode {
			s.notifier.Error(msgDuplicate)
			metrics.ObserveFavorites("add", "duplicate")
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicate, current.FipeCode)
		}
	}

	id, err := s.newID()
	if err != nil {
		return nil, s.fail("add", msgAddFailed, fmt.Errorf("failed to generate favorite id: %w", err))
	}

	entries = append(entries, domain.NewFavoriteEntry(id, *current))
	reloaded, err := s.saveAndReload(ctx, entries)
	if err != nil {
		return nil, s.fail("add", msgAddFailed, err)
	}

	log.Infof("⭐ Added favorite %s (%s %s)", current.FipeCode, current.Brand, current.Model)
	s.notifier.Success(msgAdded)
	metrics.ObserveFavorites("add", "ok")
	return reloaded, nil
}

// Remove deletes the entry with id. An unknown id leaves the list as it was.
func (s *Store) Remove(ctx context.Context, id string) ([]domain.FavoriteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return nil, s.fail("remove", msgRemoveFailed, err)
	}

	kept := make([]domain.FavoriteEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}

	reloaded, err := s.saveAndReload(ctx, kept)
	if err != nil {
		return nil, s.fail("remove", msgRemoveFailed, err)
	}

	log.Infof("🗑️ Removed favorite %s", id)
	s.notifier.Success(msgRemoved)
	metrics.ObserveFavorites("remove", "ok")
	return reloaded, nil
}

// Refresh re-queries the price of entry id using its stored selection codes
// and rewrites only its value, reference month and query timestamp. The
// remote call runs without the store lock; the write re-reads the list so an
// entry removed in the meantime is reported as not found.
func (s *Store) Refresh(ctx context.Context, id string) ([]domain.FavoriteEntry, error) {
	selection, err := s.selectionOf(ctx, id)
	if err != nil {
		return nil, err
	}

	quote, err := s.quotes.GetQuote(ctx, selection)
	if err != nil {
		return nil, s.fail("refresh", msgUpdateFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return nil, s.fail("refresh", msgUpdateFailed, err)
	}

	idx := indexOf(entries, id)
	if idx < 0 {
		return nil, s.notFound(id)
	}

	entries[idx].Value = quote.Value
	entries[idx].ReferenceMonth = quote.ReferenceMonth
	entries[idx].QueriedAt = domain.FormatQueriedAt(s.now())

	reloaded, err := s.saveAndReload(ctx, entries)
	if err != nil {
		return nil, s.fail("refresh", msgUpdateFailed, err)
	}

	log.Infof("🔄 Refreshed favorite %s: %s (%s)", id, quote.Value, quote.ReferenceMonth)
	s.notifier.Success(msgUpdated)
	metrics.ObserveFavorites("refresh", "ok")
	return reloaded, nil
}

func (s *Store) selectionOf(ctx context.Context, id string) (domain.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return domain.Selection{}, s.fail("refresh", msgUpdateFailed, err)
	}

	idx := indexOf(entries, id)
	if idx < 0 {
		return domain.Selection{}, s.notFound(id)
	}
	return entries[idx].Selection, nil
}

func (s *Store) notFound(id string) error {
	s.notifier.Error(msgNotFound)
	metrics.ObserveFavorites("refresh", "not_found")
	return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func indexOf(entries []domain.FavoriteEntry, id string) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Clear empties the list once confirm agrees. A declined confirmation
// returns domain.ErrNotConfirmed and leaves the list untouched.
func (s *Store) Clear(ctx context.Context, confirm Confirmer) ([]domain.FavoriteEntry, error) {
	ok, err := confirm.Confirm(ctx, ClearPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm clear: %w", err)
	}
	if !ok {
		metrics.ObserveFavorites("clear", "declined")
		return nil, domain.ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reloaded, err := s.saveAndReload(ctx, []domain.FavoriteEntry{})
	if err != nil {
		return nil, s.fail("clear", msgClearFailed, err)
	}

	log.Info("🧹 Cleared favorites")
	s.notifier.Success(msgCleared)
	metrics.ObserveFavorites("clear", "ok")
	return reloaded, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.slot.Ping(ctx)
}

func (s *Store) fail(operation, message string, err error) error {
	log.Errorf("Erro em favoritos (%s): %v", operation, err)
	s.notifier.Error(message)
	metrics.ObserveFavorites(operation, "error")
	return err
}

// load reads the slot. A missing slot and a slot that does not hold a JSON
// array both read as an empty list. Unreadable entries inside a valid array
// are skipped one by one.
func (s *Store) load(ctx context.Context) ([]domain.FavoriteEntry, error) {
	data, err := s.slot.Load(ctx)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		metrics.FavoritesStored.Set(0)
		return []domain.FavoriteEntry{}, nil
	}

	entries, err := decodeEntries(data)
	if err != nil {
		log.Warnf("⚠️ Favorites slot is corrupted, treating it as empty: %v", err)
		entries = []domain.FavoriteEntry{}
	}

	metrics.FavoritesStored.Set(float64(len(entries)))
	return entries, nil
}

func (s *Store) saveAndReload(ctx context.Context, entries []domain.FavoriteEntry) ([]domain.FavoriteEntry, error) {
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode favorites: %w", err)
	}
	if err := s.slot.Save(ctx, data); err != nil {
		return nil, err
	}
	return s.load(ctx)
}

func decodeEntries(data []byte) ([]domain.FavoriteEntry, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}

	entries := make([]domain.FavoriteEntry, 0, len(raws))
	for i, raw := range raws {
		e, err := decodeEntry(raw)
		if err != nil {
			log.Warnf("⚠️ Skipping unreadable favorite #%d: %v", i, err)
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// decodeEntry reads one favorite. Numeric or boolean values in text fields,
// such as millisecond ids or numeric model years, are kept as their text.
func decodeEntry(raw json.RawMessage) (domain.FavoriteEntry, error) {
	var e domain.FavoriteEntry
	if err := json.Unmarshal(raw, &e); err == nil {
		return e, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return domain.FavoriteEntry{}, fmt.Errorf("failed to decode favorite: %w", err)
	}
	for k, v := range fields {
		switch v := v.(type) {
		case json.Number:
			fields[k] = v.String()
		case bool:
			fields[k] = strconv.FormatBool(v)
		}
	}

	normalized, err := json.Marshal(fields)
	if err != nil {
		return domain.FavoriteEntry{}, fmt.Errorf("failed to normalize favorite: %w", err)
	}
	e = domain.FavoriteEntry{}
	if err := json.Unmarshal(normalized, &e); err != nil {
		return domain.FavoriteEntry{}, fmt.Errorf("failed to decode favorite: %w", err)
	}
	return e, nil
}
