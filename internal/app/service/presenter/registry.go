package presenter

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/subloop/reconciler/pkg/config"
)

// Factory builds presenters with the configured routes, delay, and
// navigator wired in.
type Factory struct {
	nav    Navigator
	routes config.CheckoutRoutes
	delay  time.Duration
}

func NewFactory(cfg *config.Config, log *zap.SugaredLogger) *Factory {
	// Server-side navigation is an instruction to the polling user agent;
	// the log keeps an operator-visible trace of every fired redirect.
	nav := NavigatorFunc(func(route string, params map[string]string) {
		log.Infow("checkout_redirect", "route", route, "params", params)
	})
	return &Factory{nav: nav, routes: cfg.Routes, delay: cfg.RedirectDelay()}
}

func (f *Factory) New(orderID, planID string) *Presenter {
	return New(orderID, planID, f.nav, f.routes, f.delay)
}

// Registry tracks the live presenter per order so the checkout status
// endpoint can serve presentation state to the user agent.
type Registry struct {
	mu      sync.Mutex
	byOrder map[string]*Presenter
}

func NewRegistry() *Registry {
	return &Registry{byOrder: make(map[string]*Presenter)}
}

// Track registers p as the presenter for its order. A previously tracked
// presenter for the same order is torn down first: a fresh delivery owns
// the presentation from that point on.
func (r *Registry) Track(orderID string, p *Presenter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byOrder[orderID]; ok {
		old.Close()
	}
	r.byOrder[orderID] = p
}

// TrackProvisional installs p only while the order's presentation is still
// unclaimed or unresolved. Deliveries that failed the authenticity check
// call this instead of Track: a forged notification naming a real order
// must not tear down the checkout a verified delivery already resolved.
func (r *Registry) TrackProvisional(orderID string, p *Presenter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byOrder[orderID]; ok {
		if old.State() != StateProcessing {
			return false
		}
		old.Close()
	}
	r.byOrder[orderID] = p
	return true
}

func (r *Registry) Get(orderID string) *Presenter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byOrder[orderID]
}

// Remove tears down and forgets the presenter for an order.
func (r *Registry) Remove(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byOrder[orderID]; ok {
		p.Close()
		delete(r.byOrder, orderID)
	}
}
