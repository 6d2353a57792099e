// Package board keeps the server-side state of the dashboard page: the last
// rendered fragment of every region. Updates are pushed to connected browsers
// through the pub/sub broadcast topics.
package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/pubsub"
	"github.com/nfrund/applydash/internal/rendering"
)

const source = "board"

// Fragment is the current content of one region.
type Fragment struct {
	Region    domain.Region
	HTML      []byte
	Version   uint64
	UpdatedAt time.Time
}

// DataUpdate is the JSON message sent to data clients for every update.
type DataUpdate struct {
	Region  domain.Region `json:"region"`
	Version uint64        `json:"version"`
	Error   string        `json:"error,omitempty"`
	Data    any           `json:"data,omitempty"`
}

// Board stores region fragments. Concurrent updates of the same region are
// last-write-wins; every write bumps the region version.
type Board struct {
	mu        sync.RWMutex
	regions   map[domain.Region]Fragment
	renderer  rendering.Renderer
	publisher pubsub.Publisher
	now       func() time.Time
}

// New creates an empty Board. publisher may be nil when nothing listens.
func New(renderer rendering.Renderer, publisher pubsub.Publisher) *Board {
	return &Board{
		regions:   make(map[domain.Region]Fragment),
		renderer:  renderer,
		publisher: publisher,
		now:       time.Now,
	}
}

// Seed sets a region's initial content without broadcasting it.
func (b *Board) Seed(ctx context.Context, region domain.Region, component any) error {
	html, err := b.renderer.RenderComponent(ctx, component)
	if err != nil {
		return fmt.Errorf("render %s: %w", region, err)
	}
	b.store(region, html)
	return nil
}

// Update replaces a region with a rendered component and broadcasts it.
// model is the view model behind the fragment; it is sent to data clients.
func (b *Board) Update(ctx context.Context, region domain.Region, component any, model any) error {
	return b.update(ctx, region, component, DataUpdate{Data: model})
}

// Fail replaces a region with its error state and broadcasts it.
func (b *Board) Fail(ctx context.Context, region domain.Region, component any, cause error) error {
	return b.update(ctx, region, component, DataUpdate{Error: cause.Error()})
}

func (b *Board) update(ctx context.Context, region domain.Region, component any, data DataUpdate) error {
	html, err := b.renderer.RenderComponent(ctx, component)
	if err != nil {
		return fmt.Errorf("render %s: %w", region, err)
	}
	frag := b.store(region, html)

	if b.publisher == nil {
		return nil
	}

	meta := map[string]string{
		"region":  string(region),
		"version": strconv.FormatUint(frag.Version, 10),
	}
	if err := b.publisher.Publish(ctx, pubsub.Message{
		Topic:    pubsub.TopicHTMLBroadcast,
		Source:   source,
		Payload:  html,
		Metadata: meta,
	}); err != nil {
		return fmt.Errorf("broadcast %s: %w", region, err)
	}

	data.Region = region
	data.Version = frag.Version
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to encode region data", "region", region, "error", err)
		return nil
	}
	if err := b.publisher.Publish(ctx, pubsub.Message{
		Topic:    pubsub.TopicDataBroadcast,
		Source:   source,
		Payload:  payload,
		Metadata: meta,
	}); err != nil {
		return fmt.Errorf("broadcast %s data: %w", region, err)
	}
	return nil
}

func (b *Board) store(region domain.Region, html []byte) Fragment {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.regions[region]
	frag := Fragment{
		Region:    region,
		HTML:      html,
		Version:   prev.Version + 1,
		UpdatedAt: b.now(),
	}
	b.regions[region] = frag
	return frag
}

// Fragment returns the current content of region.
func (b *Board) Fragment(region domain.Region) (Fragment, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	frag, ok := b.regions[region]
	return frag, ok
}

// Fragments returns the HTML of the given regions in order, skipping regions
// that have no content yet.
func (b *Board) Fragments(regions ...domain.Region) [][]byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([][]byte, 0, len(regions))
	for _, r := range regions {
		if frag, ok := b.regions[r]; ok {
			out = append(out, frag.HTML)
		}
	}
	return out
}
