package complaint

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/fairdesk-io/fairdesk/internal/auth"
	"github.com/fairdesk-io/fairdesk/internal/authz"
)

// Feed fans out write notifications to live subscribers. It carries no
// complaint data itself: each subscriber re-reads its own scoped list,
// so scope enforcement happens in exactly one place, the store query.
type Feed struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[chan struct{}]struct{})}
}

// Notify wakes every subscriber. Never blocks: a subscriber that already
// has a pending wake-up needs no second one, it re-reads the latest
// state either way.
func (f *Feed) Notify() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a wake-up channel. The returned cancel is
// idempotent and safe to call after the feed has moved on.
func (f *Feed) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, ch)
			f.mu.Unlock()
		})
	}
	return ch, cancel
}

// TokenValidator validates a raw JWT string and returns the identity.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Identity, error)
}

const watchWriteTimeout = 10 * time.Second

// WatchHandler streams a principal's scoped complaint list over a
// WebSocket, re-delivered on every underlying write.
type WatchHandler struct {
	feed   *Feed
	store  Repository
	tokens TokenValidator
}

func NewWatchHandler(feed *Feed, store Repository, tokens TokenValidator) *WatchHandler {
	return &WatchHandler{feed: feed, store: store, tokens: tokens}
}

func (h *WatchHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/complaints/watch", h.HandleWatch)
}

// HandleWatch upgrades to a WebSocket and pushes snapshots. Auth is via
// access_token query parameter since browsers cannot set headers on a
// WebSocket upgrade. The scope is computed once here; a role change only
// takes effect on a fresh session, exactly as for the REST surface.
func (h *WatchHandler) HandleWatch(w http.ResponseWriter, r *http.Request) {
	rawToken := r.URL.Query().Get("access_token")
	if rawToken == "" {
		http.Error(w, `{"error":"missing access_token"}`, http.StatusUnauthorized)
		return
	}

	identity, err := h.tokens.ValidateToken(rawToken)
	if err != nil || identity.TokenType != "access" {
		http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
		return
	}

	scope := authz.ScopeFor(identity.Principal())

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "")

	// CloseRead pumps incoming frames away and cancels the context when
	// the peer goes away.
	ctx := conn.CloseRead(r.Context())

	wake, cancel := h.feed.Subscribe()
	defer cancel()

	if err := h.push(ctx, conn, scope); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case <-wake:
			if err := h.push(ctx, conn, scope); err != nil {
				return
			}
		}
	}
}

func (h *WatchHandler) push(ctx context.Context, conn *websocket.Conn, scope authz.Scope) error {
	complaints, err := h.store.List(ctx, scope)
	if err != nil {
		return err
	}
	if complaints == nil {
		complaints = []Complaint{}
	}

	writeCtx, cancel := context.WithTimeout(ctx, watchWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, complaints)
}
