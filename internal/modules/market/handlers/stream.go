package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kquant/dashboard/internal/events"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	tickBuffer   = 16
	writeTimeout = 5 * time.Second
)

// PriceStream pushes PRICE_TICKED events for one symbol over a websocket.
// Ticks only flow while the market view shows that symbol.
type PriceStream struct {
	bus     *events.Bus
	origins []string
	log     zerolog.Logger
}

// NewPriceStream creates the websocket price stream. allowedOrigins are
// full origins ("http://localhost:3000"); same-host requests are always
// accepted.
func NewPriceStream(bus *events.Bus, allowedOrigins []string, log zerolog.Logger) *PriceStream {
	var patterns []string
	for _, o := range allowedOrigins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return &PriceStream{
		bus:     bus,
		origins: patterns,
		log:     log.With().Str("component", "price_stream").Logger(),
	}
}

// Tick is one pushed message
type Tick struct {
	Type   string                 `json:"type"`
	Symbol string                 `json:"symbol"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// ServeHTTP handles GET /api/market/{symbol}/ws
func (s *PriceStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")
	log := s.log.With().Str("symbol", symbol).Str("client_id", uuid.NewString()).Logger()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	// The browser never sends; CloseRead turns its close frame into ctx.Done
	ctx := conn.CloseRead(r.Context())

	ticks := make(chan map[string]interface{}, tickBuffer)
	unsubscribe := s.bus.Subscribe(events.PriceTicked, func(e *events.Event) {
		if e.Data["symbol"] != symbol {
			return
		}
		select {
		case ticks <- e.Data:
		default:
			log.Debug().Msg("Tick buffer full, dropping tick")
		}
	})
	defer unsubscribe()

	log.Info().Msg("Price stream opened")
	if err := s.write(ctx, conn, Tick{Type: "subscribed", Symbol: symbol}); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Price stream closed")
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case data := <-ticks:
			if err := s.write(ctx, conn, Tick{Type: "tick", Symbol: symbol, Data: data}); err != nil {
				log.Debug().Err(err).Msg("Price stream write failed")
				return
			}
		}
	}
}

func (s *PriceStream) write(ctx context.Context, conn *websocket.Conn, msg Tick) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, msg)
}
