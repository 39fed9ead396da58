// Package repository persists the favorites slot: one named key holding the
// JSON-serialized favorites array.
package repository

import "context"

// SlotRepository reads and writes one named slot as a unit. Load returns
// (nil, nil) when the slot has never been written.
type SlotRepository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Ping(ctx context.Context) error
}
