package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu        sync.Mutex
	errors    []string
	successes []string
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, message)
}

func (n *recordingNotifier) Success(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, message)
}

func (n *recordingNotifier) Info(message string) {}

type fakeQuotes struct {
	calls []domain.Selection
	quote *domain.PriceQuote
	err   error
}

func (f *fakeQuotes) GetQuote(ctx context.Context, s domain.Selection) (*domain.PriceQuote, error) {
	f.calls = append(f.calls, s)
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	return &q, nil
}

// memorySlot counts writes and can be told to fail.
type memorySlot struct {
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (m *memorySlot) Load(ctx context.Context) ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *memorySlot) Save(ctx context.Context, data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memorySlot) Ping(ctx context.Context) error { return nil }

func current(code, value string) *domain.CurrentResult {
	return &domain.CurrentResult{
		PriceQuote: domain.PriceQuote{
			Brand:          "Fiat",
			Model:          "Uno Mille 1.0",
			ModelYear:      "2010",
			Fuel:           "Gasolina",
			FipeCode:       code,
			ReferenceMonth: "junho de 2024",
			Value:          value,
		},
		Selection: domain.Selection{
			Category:  domain.CategoryCars,
			BrandCode: "21",
			ModelCode: "437",
			YearCode:  "2010-1",
		},
		QueriedAt: "01/06/2024, 10:00:00",
	}
}

func newTestStore(slot repository.SlotRepository, quotes *fakeQuotes) (*Store, *recordingNotifier) {
	n := &recordingNotifier{}
	s := NewStore(slot, quotes, n)
	seq := 0
	s.newID = func() (string, error) {
		seq++
		return fmt.Sprintf("fav-%d", seq), nil
	}
	s.now = func() time.Time { return time.Date(2024, 7, 2, 9, 30, 0, 0, time.UTC) }
	return s, n
}

func TestStore_ListMissingSlotIsEmpty(t *testing.T) {
	s, _ := newTestStore(&memorySlot{}, &fakeQuotes{})

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestStore_ListCorruptSlotIsEmpty(t *testing.T) {
	for _, raw := range []string{"{not json", `{"id":"x"}`, "null"} {
		s, _ := newTestStore(&memorySlot{data: []byte(raw)}, &fakeQuotes{})

		entries, err := s.List(context.Background())
		require.NoError(t, err, raw)
		assert.Empty(t, entries, raw)
	}
}

func TestStore_AddPersistsEntry(t *testing.T) {
	slot := &memorySlot{}
	s, n := newTestStore(slot, &fakeQuotes{})
	cur := current("001004-9", "R$ 15.000,00")

	entries, err := s.Add(context.Background(), cur)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, domain.NewFavoriteEntry("fav-1", *cur), entries[0])
	assert.Equal(t, []string{msgAdded}, n.successes)

	var stored []map[string]any
	require.NoError(t, json.Unmarshal(slot.data, &stored))
	require.Len(t, stored, 1)
	assert.Equal(t, "fav-1", stored[0]["id"])
	assert.Equal(t, "carros", stored[0]["tipoVeiculo"])
	assert.Equal(t, "001004-9", stored[0]["CodigoFipe"])
	assert.Equal(t, "01/06/2024, 10:00:00", stored[0]["consultadoEm"])
}

func TestStore_AddWithoutCurrentResult(t *testing.T) {
	slot := &memorySlot{}
	s, n := newTestStore(slot, &fakeQuotes{})

	_, err := s.Add(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNoCurrentResult)
	assert.Equal(t, []string{msgNoCurrent}, n.errors)
	assert.Zero(t, slot.saves)
}

func TestStore_AddDuplicateCodeIsRejected(t *testing.T) {
	slot := &memorySlot{}
	s, n := newTestStore(slot, &fakeQuotes{})
	ctx := context.Background()

	_, err := s.Add(ctx, current("001004-9", "R$ 15.000,00"))
	require.NoError(t, err)

	// same reference code, different value
	_, err = s.Add(ctx, current("001004-9", "R$ 16.000,00"))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.Equal(t, []string{msgDuplicate}, n.errors)
	assert.Equal(t, 1, slot.saves)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "R$ 15.000,00", entries[0].Value)
}

func TestStore_AddKeepsInsertionOrder(t *testing.T) {
	s, _ := newTestStore(&memorySlot{}, &fakeQuotes{})
	ctx := context.Background()

	for _, code := range []string{"001004-9", "005340-6", "025208-5"} {
		_, err := s.Add(ctx, current(code, "R$ 1,00"))
		require.NoError(t, err)
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	var codes []string
	for _, e := range entries {
		codes = append(codes, e.FipeCode)
	}
	assert.Equal(t, []string{"001004-9", "005340-6", "025208-5"}, codes)
}

func TestStore_Remove(t *testing.T) {
	s, n := newTestStore(&memorySlot{}, &fakeQuotes{})
	ctx := context.Background()

	_, err := s.Add(ctx, current("001004-9", "R$ 1,00"))
	require.NoError(t, err)
	_, err = s.Add(ctx, current("005340-6", "R$ 2,00"))
	require.NoError(t, err)

	entries, err := s.Remove(ctx, "fav-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fav-2", entries[0].ID)
	assert.Equal(t, msgRemoved, n.successes[len(n.successes)-1])
}

func TestStore_RemoveUnknownIDLeavesList(t *testing.T) {
	s, _ := newTestStore(&memorySlot{}, &fakeQuotes{})
	ctx := context.Background()

	before, err := s.Add(ctx, current("001004-9", "R$ 1,00"))
	require.NoError(t, err)

	after, err := s.Remove(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_RefreshOverwritesOnlyPriceFields(t *testing.T) {
	quotes := &fakeQuotes{quote: &domain.PriceQuote{
		Brand:          "Fiat (novo nome)",
		Model:          "Uno",
		FipeCode:       "999999-9",
		ReferenceMonth: "julho de 2024",
		Value:          "R$ 15.500,00",
	}}
	s, n := newTestStore(&memorySlot{}, quotes)
	ctx := context.Background()

	added, err := s.Add(ctx, current("001004-9", "R$ 15.000,00"))
	require.NoError(t, err)
	before := added[0]

	entries, err := s.Refresh(ctx, before.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Len(t, quotes.calls, 1)
	assert.Equal(t, before.Selection, quotes.calls[0])

	want := before
	want.Value = "R$ 15.500,00"
	want.ReferenceMonth = "julho de 2024"
	want.QueriedAt = "02/07/2024, 09:30:00"
	assert.Equal(t, want, entries[0])
	assert.Equal(t, msgUpdated, n.successes[len(n.successes)-1])
}

func TestStore_RefreshFailureLeavesEntry(t *testing.T) {
	slot := &memorySlot{}
	quotes := &fakeQuotes{err: fmt.Errorf("%w: HTTP 500", domain.ErrUpstream)}
	s, n := newTestStore(slot, quotes)
	ctx := context.Background()

	added, err := s.Add(ctx, current("001004-9", "R$ 15.000,00"))
	require.NoError(t, err)

	_, err = s.Refresh(ctx, added[0].ID)
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.Equal(t, []string{msgUpdateFailed}, n.errors)
	assert.Equal(t, 1, slot.saves)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, added, entries)
}

func TestStore_RefreshUnknownID(t *testing.T) {
	quotes := &fakeQuotes{}
	s, n := newTestStore(&memorySlot{}, quotes)

	_, err := s.Refresh(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{msgNotFound}, n.errors)
	assert.Empty(t, quotes.calls)
}

func TestStore_Clear(t *testing.T) {
	slot := &memorySlot{}
	s, n := newTestStore(slot, &fakeQuotes{})
	ctx := context.Background()

	_, err := s.Add(ctx, current("001004-9", "R$ 1,00"))
	require.NoError(t, err)

	var prompts []string
	yes := ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		prompts = append(prompts, prompt)
		return true, nil
	})

	entries, err := s.Clear(ctx, yes)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, []string{ClearPrompt}, prompts)
	assert.Equal(t, msgCleared, n.successes[len(n.successes)-1])
	assert.JSONEq(t, "[]", string(slot.data))
}

func TestStore_ClearDeclined(t *testing.T) {
	slot := &memorySlot{}
	s, _ := newTestStore(slot, &fakeQuotes{})
	ctx := context.Background()

	_, err := s.Add(ctx, current("001004-9", "R$ 1,00"))
	require.NoError(t, err)

	no := ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) { return false, nil })
	_, err = s.Clear(ctx, no)
	assert.ErrorIs(t, err, domain.ErrNotConfirmed)
	assert.Equal(t, 1, slot.saves)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_StorageFailures(t *testing.T) {
	boom := errors.New("storage unavailable")
	ctx := context.Background()

	s, n := newTestStore(&memorySlot{loadErr: boom}, &fakeQuotes{})
	_, err := s.List(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{msgLoadFailed}, n.errors)

	s, n = newTestStore(&memorySlot{saveErr: boom}, &fakeQuotes{})
	_, err = s.Add(ctx, current("001004-9", "R$ 1,00"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{msgAddFailed}, n.errors)
}

func TestStore_FileSlotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, _ := newTestStore(repository.NewFileSlot(dir, "fipeFavorites"), &fakeQuotes{})
	_, err := s.Add(ctx, current("001004-9", "R$ 1,00"))
	require.NoError(t, err)

	// a fresh store over the same directory sees the same list
	reopened, _ := newTestStore(repository.NewFileSlot(dir, "fipeFavorites"), &fakeQuotes{})
	entries, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "001004-9", entries[0].FipeCode)
}

func TestStore_GeneratedIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id, err := newEntryID()
		require.NoError(t, err)
		assert.False(t, seen[id], id)
		seen[id] = true
	}
}

// blockingQuotes parks every GetQuote call until release is closed.
type blockingQuotes struct {
	entered chan struct{}
	release chan struct{}
	quote   domain.PriceQuote
}

func (b *blockingQuotes) GetQuote(ctx context.Context, s domain.Selection) (*domain.PriceQuote, error) {
	b.entered <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	q := b.quote
	return &q, nil
}

func startBlockedRefresh(t *testing.T) (*Store, *recordingNotifier, *blockingQuotes, string, chan error) {
	t.Helper()

	quotes := &blockingQuotes{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		quote:   domain.PriceQuote{ReferenceMonth: "julho de 2024", Value: "R$ 15.500,00"},
	}
	n := &recordingNotifier{}
	s := NewStore(&memorySlot{}, quotes, n)
	ctx := context.Background()

	added, err := s.Add(ctx, current("001004-9", "R$ 15.000,00"))
	require.NoError(t, err)
	id := added[0].ID

	done := make(chan error, 1)
	go func() {
		_, err := s.Refresh(ctx, id)
		done <- err
	}()

	select {
	case <-quotes.entered:
	case <-time.After(time.Second):
		t.Fatal("refresh never reached the quote fetcher")
	}
	return s, n, quotes, id, done
}

func TestStore_ListCompletesWhileRefreshIsBlocked(t *testing.T) {
	s, _, quotes, id, done := startBlockedRefresh(t)

	listed := make(chan []domain.FavoriteEntry, 1)
	go func() {
		entries, err := s.List(context.Background())
		assert.NoError(t, err)
		listed <- entries
	}()

	select {
	case entries := <-listed:
		require.Len(t, entries, 1)
		assert.Equal(t, "R$ 15.000,00", entries[0].Value)
	case <-time.After(time.Second):
		t.Fatal("list waited for the remote quote")
	}

	close(quotes.release)
	require.NoError(t, <-done)

	entries, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, "R$ 15.500,00", entries[0].Value)
}

func TestStore_RefreshOfEntryRemovedMeanwhile(t *testing.T) {
	s, n, quotes, id, done := startBlockedRefresh(t)
	ctx := context.Background()

	entries, err := s.Remove(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, entries)

	close(quotes.release)
	assert.ErrorIs(t, <-done, domain.ErrNotFound)
	assert.Equal(t, []string{msgNotFound}, n.errors)

	entries, err = s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_ListSkipsUnreadableEntries(t *testing.T) {
	raw := `[
		{"id":1718000000000,"Marca":"Fiat","AnoModelo":2010,"CodigoFipe":"001004-9","Valor":"R$ 15.000,00","tipoVeiculo":"carros","marcaId":21,"modeloId":"437","anoId":"2010-1"},
		"garbage",
		{"id":"fav-2","Marca":"VW","AnoModelo":"2013","CodigoFipe":"005340-6","Valor":"R$ 30.000,00"},
		{"id":{"nested":true}}
	]`
	slot := &memorySlot{data: []byte(raw)}
	s, _ := newTestStore(slot, &fakeQuotes{})
	ctx := context.Background()

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	legacy := entries[0]
	assert.Equal(t, "1718000000000", legacy.ID)
	assert.Equal(t, "2010", legacy.ModelYear)
	assert.Equal(t, "21", legacy.BrandCode)
	assert.Equal(t, domain.CategoryCars, legacy.Category)
	assert.Equal(t, "fav-2", entries[1].ID)

	// A write keeps the readable entries.
	entries, err = s.Remove(ctx, "fav-2")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1718000000000", entries[0].ID)

	var stored []domain.FavoriteEntry
	require.NoError(t, json.Unmarshal(slot.data, &stored))
	assert.Equal(t, entries, stored)
}
