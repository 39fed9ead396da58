// Package app holds the application context shared by the web and CLI
// surfaces: one resolver, one favorites store, one banner and the
// single-code price client.
package app

import (
	"context"
	"time"

	"fipe/consulta/internal/cascade"
	"fipe/consulta/internal/client"
	"fipe/consulta/internal/domain"
	"fipe/consulta/internal/favorites"
	"fipe/consulta/internal/notify"
	"fipe/consulta/internal/repository"
	"fipe/consulta/internal/view"
)

type App struct {
	Resolver  *cascade.Resolver
	Favorites *favorites.Store
	Banner    *notify.Banner
	Prices    client.PriceClient
}

func New(fipe client.FipeClient, prices client.PriceClient, slot repository.SlotRepository, bannerTTL time.Duration) *App {
	banner := notify.NewBanner(bannerTTL)
	return &App{
		Resolver:  cascade.NewResolver(fipe, banner),
		Favorites: favorites.NewStore(slot, fipe, banner),
		Banner:    banner,
		Prices:    prices,
	}
}

// AddCurrentFavorite stores the resolver's current result as a favorite.
func (a *App) AddCurrentFavorite(ctx context.Context) ([]domain.FavoriteEntry, error) {
	return a.Favorites.Add(ctx, a.Resolver.CurrentResult())
}

// State collects what the page shows. A favorites load failure is already
// on the banner, so the page still renders with an empty list.
func (a *App) State(ctx context.Context, query string) view.State {
	entries, _ := a.Favorites.List(ctx)
	return view.State{
		Snapshot:  a.Resolver.Snapshot(),
		Favorites: entries,
		Banner:    a.Banner.Current(),
		Query:     query,
	}
}
