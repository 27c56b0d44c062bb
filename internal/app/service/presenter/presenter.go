package presenter

import (
	"sync"
	"time"

	"github.com/subloop/reconciler/pkg/config"
	"github.com/subloop/reconciler/pkg/types"
)

// State of one checkout's presentation. Processing is the sole initial
// state; every other state is terminal for a notification instance.
type State string

const (
	StateProcessing  State = "processing"
	StateSuccess     State = "success"
	StatePending     State = "pending"
	StateCancelled   State = "cancelled"
	StateFailed      State = "failed"
	StateChargedBack State = "charged_back"
	StateUnknown     State = "unknown"
	StateError       State = "error"
)

// Navigator is the injected navigation capability. Implementations must
// tolerate being called from a timer goroutine.
type Navigator interface {
	NavigateTo(route string, params map[string]string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route string, params map[string]string)

func (f NavigatorFunc) NavigateTo(route string, params map[string]string) { f(route, params) }

// Snapshot is a point-in-time view of a presenter for status endpoints.
type Snapshot struct {
	OrderID string `json:"order_id"`
	State   State  `json:"state"`
	// Reason is a user-safe failure label, set only in the error state.
	Reason string `json:"reason,omitempty"`
	// Redirect target, set once a navigation has been scheduled.
	RedirectRoute  string            `json:"redirect_route,omitempty"`
	RedirectParams map[string]string `json:"redirect_params,omitempty"`
	RedirectFired  bool              `json:"redirect_fired"`
	// ReturnRoute is the manual way back for states that never
	// auto-navigate.
	ReturnRoute string `json:"return_route,omitempty"`
}

// Presenter drives the user-visible side of one notification: it holds the
// processing state and owns the single delayed navigation to a terminal
// route. It performs no retries and never calls back into the pipeline.
type Presenter struct {
	mu sync.Mutex

	orderID string
	planID  string
	nav     Navigator
	routes  config.CheckoutRoutes
	delay   time.Duration

	state  State
	reason string

	timer  *time.Timer
	route  string
	params map[string]string
	fired  bool
	closed bool
}

func New(orderID, planID string, nav Navigator, routes config.CheckoutRoutes, delay time.Duration) *Presenter {
	return &Presenter{
		orderID: orderID,
		planID:  planID,
		nav:     nav,
		routes:  routes,
		delay:   delay,
		state:   StateProcessing,
	}
}

// Resolve transitions out of Processing using the classified outcome.
// Success navigates to the success route; Cancelled and Failed share the
// retry route. Pending, ChargedBack, and Unknown are presented without a
// scheduled navigation since they are not settled, user-actionable end
// states. Calls after the first transition are ignored.
func (p *Presenter) Resolve(outcome types.PaymentOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateProcessing || p.closed {
		return
	}

	switch outcome {
	case types.PaymentOutcomeSuccess:
		p.state = StateSuccess
		p.scheduleLocked(p.routes.Success, map[string]string{
			"order_id": p.orderID,
			"plan_id":  p.planID,
		})
	case types.PaymentOutcomeCancelled:
		p.state = StateCancelled
		p.scheduleLocked(p.routes.Retry, map[string]string{"order_id": p.orderID})
	case types.PaymentOutcomeFailed:
		p.state = StateFailed
		p.scheduleLocked(p.routes.Retry, map[string]string{"order_id": p.orderID})
	case types.PaymentOutcomePending:
		p.state = StatePending
	case types.PaymentOutcomeChargedBack:
		p.state = StateChargedBack
	default:
		p.state = StateUnknown
	}
}

// Fail transitions to the error state. reason must already be user-safe:
// a failure label, never raw internal diagnostics.
func (p *Presenter) Fail(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateProcessing || p.closed {
		return
	}
	p.state = StateError
	p.reason = reason
	p.scheduleLocked(p.routes.Retry, map[string]string{"order_id": p.orderID})
}

// scheduleLocked arms the one-shot navigation timer. At most one timer ever
// exists per presenter.
func (p *Presenter) scheduleLocked(route string, params map[string]string) {
	if p.timer != nil {
		return
	}
	p.route = route
	p.params = params
	p.timer = time.AfterFunc(p.delay, p.fire)
}

func (p *Presenter) fire() {
	p.mu.Lock()
	if p.closed || p.fired {
		p.mu.Unlock()
		return
	}
	p.fired = true
	nav, route, params := p.nav, p.route, p.params
	p.mu.Unlock()

	if nav != nil {
		nav.NavigateTo(route, params)
	}
}

// Close tears the presenter down, cancelling any pending navigation. A
// closed presenter never navigates.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
	}
}

func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Presenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{
		OrderID:       p.orderID,
		State:         p.state,
		Reason:        p.reason,
		RedirectRoute: p.route,
		RedirectFired: p.fired,
	}
	if p.params != nil {
		s.RedirectParams = make(map[string]string, len(p.params))
		for k, v := range p.params {
			s.RedirectParams[k] = v
		}
	}
	switch p.state {
	case StatePending, StateChargedBack, StateUnknown:
		s.ReturnRoute = p.routes.Return
	}
	return s
}
