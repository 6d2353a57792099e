package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/nfrund/applydash/internal/domain"
	"github.com/nfrund/applydash/internal/pubsub"
	"github.com/nfrund/applydash/internal/rendering"
	"github.com/nfrund/applydash/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"
)

type recordingPublisher struct {
	mu       sync.Mutex
	messages []pubsub.Message
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) topic(topic string) []pubsub.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pubsub.Message
	for _, m := range p.messages {
		if m.Topic == topic {
			out = append(out, m)
		}
	}
	return out
}

func TestBoard_UpdateStoresAndBroadcasts(t *testing.T) {
	pub := &recordingPublisher{}
	b := New(rendering.NewUniversalRenderer(), pub)
	ctx := context.Background()

	stats := domain.DashboardStats{TotalApplications: 5}
	require.NoError(t, b.Update(ctx, domain.RegionStats, Div(ID("stats"), g.Text("5")), stats))

	frag, ok := b.Fragment(domain.RegionStats)
	require.True(t, ok)
	assert.Equal(t, `<div id="stats">5</div>`, string(frag.HTML))
	assert.Equal(t, uint64(1), frag.Version)

	html := pub.topic(pubsub.TopicHTMLBroadcast)
	require.Len(t, html, 1)
	assert.Equal(t, frag.HTML, html[0].Payload)
	assert.Equal(t, "stats", html[0].Metadata["region"])

	data := pub.topic(pubsub.TopicDataBroadcast)
	require.Len(t, data, 1)
	var update struct {
		Region  string                `json:"region"`
		Version uint64                `json:"version"`
		Data    domain.DashboardStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data[0].Payload, &update))
	assert.Equal(t, "stats", update.Region)
	assert.Equal(t, uint64(1), update.Version)
	assert.Equal(t, stats, update.Data)
}

func TestBoard_FailPublishesError(t *testing.T) {
	pub := &recordingPublisher{}
	b := New(rendering.NewUniversalRenderer(), pub)

	require.NoError(t, b.Fail(context.Background(), domain.RegionCampaigns, P(g.Text("failed")), errors.New("boom")))

	data := pub.topic(pubsub.TopicDataBroadcast)
	require.Len(t, data, 1)
	assert.Contains(t, string(data[0].Payload), `"error":"boom"`)
}

func TestBoard_SeedDoesNotBroadcast(t *testing.T) {
	pub := &recordingPublisher{}
	b := New(rendering.NewUniversalRenderer(), pub)

	require.NoError(t, b.Seed(context.Background(), domain.RegionStats, P(g.Text("Loading..."))))

	_, ok := b.Fragment(domain.RegionStats)
	assert.True(t, ok)
	assert.Empty(t, pub.topic(pubsub.TopicHTMLBroadcast))
}

func TestBoard_PublishFailureKeepsState(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("bus closed")}
	b := New(rendering.NewUniversalRenderer(), pub)

	err := b.Update(context.Background(), domain.RegionStats, P(g.Text("1")), nil)
	assert.ErrorContains(t, err, "bus closed")

	frag, ok := b.Fragment(domain.RegionStats)
	require.True(t, ok)
	assert.Equal(t, "<p>1</p>", string(frag.HTML))
}

func TestBoard_ConcurrentUpdatesAreLastWriteWins(t *testing.T) {
	b := New(rendering.NewUniversalRenderer(), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = b.Update(ctx, domain.RegionCampaigns, P(g.Text(fmt.Sprint(i))), nil)
		}(i)
	}
	wg.Wait()

	frag, ok := b.Fragment(domain.RegionCampaigns)
	require.True(t, ok)
	assert.Equal(t, uint64(50), frag.Version)
	assert.Regexp(t, `^<p>\d+</p>$`, string(frag.HTML))
}

func TestBoard_FragmentsInOrder(t *testing.T) {
	b := New(rendering.NewUniversalRenderer(), nil)
	ctx := context.Background()
	require.NoError(t, b.Seed(ctx, domain.RegionCampaigns, P(g.Text("c"))))
	require.NoError(t, b.Seed(ctx, domain.RegionStats, P(g.Text("s"))))

	got := b.Fragments(domain.RegionStats, domain.RegionApplications, domain.RegionCampaigns)
	require.Len(t, got, 2)
	assert.Equal(t, "<p>s</p>", string(got[0]))
	assert.Equal(t, "<p>c</p>", string(got[1]))
}

func TestPresenter_ShowsRegions(t *testing.T) {
	pub := &recordingPublisher{}
	b := New(rendering.NewUniversalRenderer(), pub)
	p := NewPresenter(b, view.NewFormatter("en-US"))
	ctx := context.Background()

	require.NoError(t, p.SeedPlaceholders(ctx))
	frag, _ := b.Fragment(domain.RegionStats)
	assert.Contains(t, string(frag.HTML), "Loading...")

	require.NoError(t, p.ShowCampaigns(ctx, []domain.Campaign{{Name: "Remote Go", Status: domain.CampaignActive}}))
	frag, _ = b.Fragment(domain.RegionCampaigns)
	assert.Contains(t, string(frag.HTML), "Remote Go")
	assert.Equal(t, uint64(2), frag.Version)

	require.NoError(t, p.ShowRegionError(ctx, domain.RegionStats, errors.New("HTTP error! status: 503")))
	frag, _ = b.Fragment(domain.RegionStats)
	assert.Contains(t, string(frag.HTML), "status: 503")
}
