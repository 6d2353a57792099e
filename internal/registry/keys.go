package registry

import (
	"github.com/nfrund/applydash/internal/board"
	"github.com/nfrund/applydash/internal/notify"
	"github.com/nfrund/applydash/internal/pubsub"
	"github.com/nfrund/applydash/internal/rendering"
	"github.com/nfrund/applydash/internal/websocket"
	"go.opentelemetry.io/otel/trace"
)

// Core services provided by the server before modules register.
var (
	PublisherKey  Key[pubsub.Publisher]   = "core.publisher"
	SubscriberKey Key[pubsub.Subscriber]  = "core.subscriber"
	RendererKey   Key[rendering.Renderer] = "core.renderer"
	TracerKey     Key[trace.Tracer]       = "core.tracer"
	BoardKey      Key[*board.Board]       = "core.board"
	BridgeKey     Key[*websocket.Bridge]  = "core.websocket.bridge"
	NotifierKey   Key[*notify.Center]     = "core.notifier"
)
