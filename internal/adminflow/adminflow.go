// AngelaMos | 2026
// adminflow.go

// Package adminflow gates the admin dashboard behind the bootstrap sequence:
// the backend admin role is not pre-provisioned, so the first authenticated
// caller can become the owner. The flow is an explicit tagged union with one
// handler per state instead of cascading boolean checks, which keeps the
// terminal/retry contract auditable.
package adminflow

import (
	"context"
	"errors"

	"github.com/caffeinepub/engineer-notes-shop/internal/actor"
	"github.com/caffeinepub/engineer-notes-shop/internal/query"
)

type Kind int

const (
	// Resting states. Unauthenticated also covers a session whose backend
	// binding has not resolved yet, so no premature access-denied is shown.
	Unauthenticated Kind = iota
	NotInitialized       // offer the initialize action
	Claimable            // offer the claim-ownership action
	AccessDenied         // terminal
	Ready                // terminal

	// Error states. Each offers a retry back to its originating check.
	InitCheckError
	RoleCheckError
	ProductsError

	// Transient states, visible only mid-advance.
	CheckingInit
	CheckingRole
	CheckingProducts
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case NotInitialized:
		return "not-initialized"
	case Claimable:
		return "claimable"
	case AccessDenied:
		return "access-denied"
	case Ready:
		return "ready"
	case InitCheckError:
		return "init-check-error"
	case RoleCheckError:
		return "role-check-error"
	case ProductsError:
		return "products-error"
	case CheckingInit:
		return "checking-init"
	case CheckingRole:
		return "checking-role"
	case CheckingProducts:
		return "checking-products"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can occur.
func (k Kind) Terminal() bool {
	return k == AccessDenied || k == Ready
}

// Retryable reports whether the state offers a retry transition.
func (k Kind) Retryable() bool {
	return k == InitCheckError || k == RoleCheckError || k == ProductsError
}

// State is the tagged union. Err is set only for the error kinds; Products
// only for Ready.
type State struct {
	Kind     Kind
	Err      error
	Products []actor.Product
}

// Machine drives the bootstrap checks against the query store. It is not
// safe for concurrent use; each session owns its machine.
type Machine struct {
	store *query.Store
	state State
}

func NewMachine(store *query.Store) *Machine {
	return &Machine{store: store, state: State{Kind: Unauthenticated}}
}

func (m *Machine) State() State {
	return m.state
}

// Advance runs handlers until the machine rests in an actionable, error or
// terminal state. An unauthenticated caller rests immediately: no backend
// role call is ever attempted without a session.
func (m *Machine) Advance(ctx context.Context) State {
	for {
		next, done := m.step(ctx)
		m.state = next
		if done {
			return m.state
		}
	}
}

// step is the single exhaustive handler dispatch.
func (m *Machine) step(ctx context.Context) (State, bool) {
	switch m.state.Kind {
	case Unauthenticated:
		return m.handleUnauthenticated(ctx)
	case CheckingInit:
		return m.handleCheckingInit(ctx)
	case CheckingRole:
		return m.handleCheckingRole(ctx)
	case CheckingProducts:
		return m.handleCheckingProducts(ctx)
	case NotInitialized, Claimable:
		return m.state, true
	case InitCheckError, RoleCheckError, ProductsError:
		return m.state, true
	case AccessDenied, Ready:
		return m.state, true
	default:
		return State{Kind: Unauthenticated}, true
	}
}

func (m *Machine) handleUnauthenticated(ctx context.Context) (State, bool) {
	if actor.IsAnonymous(ctx) || !m.store.Ready() {
		return State{Kind: Unauthenticated}, true
	}
	return State{Kind: CheckingInit}, false
}

func (m *Machine) handleCheckingInit(ctx context.Context) (State, bool) {
	initialized, err := m.store.AdminSystemInitialized(ctx)
	if err != nil {
		if errors.Is(err, query.ErrNotEligible) {
			return State{Kind: Unauthenticated}, true
		}
		return State{Kind: InitCheckError, Err: err}, true
	}

	if !initialized {
		return State{Kind: NotInitialized}, true
	}
	return State{Kind: CheckingRole}, false
}

func (m *Machine) handleCheckingRole(ctx context.Context) (State, bool) {
	isAdmin, err := m.store.CallerIsAdmin(ctx)
	if err != nil {
		if errors.Is(err, query.ErrNotEligible) {
			return State{Kind: Unauthenticated}, true
		}
		return State{Kind: RoleCheckError, Err: err}, true
	}

	if isAdmin {
		return State{Kind: CheckingProducts}, false
	}

	claimable, err := m.store.StoreClaimable(ctx)
	if err != nil {
		return State{Kind: RoleCheckError, Err: err}, true
	}

	if claimable {
		return State{Kind: Claimable}, true
	}
	return State{Kind: AccessDenied}, true
}

func (m *Machine) handleCheckingProducts(ctx context.Context) (State, bool) {
	products, err := m.store.AdminProducts(ctx)
	if err != nil {
		return State{Kind: ProductsError, Err: err}, true
	}
	return State{Kind: Ready, Products: products}, true
}

// Initialize performs the explicit initialize action from NotInitialized.
// The backend accepts exactly one owner: a second attempt fails and the
// failure surfaces as a handled error state, never a crash.
func (m *Machine) Initialize(ctx context.Context) (State, error) {
	if m.state.Kind != NotInitialized {
		return m.state, errInvalidTransition("initialize", m.state.Kind)
	}

	if err := m.store.InitializeStore(ctx); err != nil {
		// The failure usually means another session won the race; drop the
		// cached bootstrap answers so the retry observes the real state.
		m.invalidateBootstrapReads()
		m.state = State{Kind: InitCheckError, Err: err}
		return m.state, err
	}

	m.state = State{Kind: CheckingRole}
	return m.Advance(ctx), nil
}

// Claim performs the claim-ownership action from Claimable. The backend
// arbitrates: if the slot was taken meanwhile, the error state offers a
// retry of the role check.
func (m *Machine) Claim(ctx context.Context) (State, error) {
	if m.state.Kind != Claimable {
		return m.state, errInvalidTransition("claim", m.state.Kind)
	}

	if err := m.store.ClaimStoreOwnership(ctx); err != nil {
		m.invalidateBootstrapReads()
		m.state = State{Kind: RoleCheckError, Err: err}
		return m.state, err
	}

	m.state = State{Kind: CheckingRole}
	return m.Advance(ctx), nil
}

// Retry transitions an error state back to its originating check and
// re-advances.
func (m *Machine) Retry(ctx context.Context) (State, error) {
	switch m.state.Kind {
	case InitCheckError:
		m.state = State{Kind: CheckingInit}
	case RoleCheckError:
		m.state = State{Kind: CheckingRole}
	case ProductsError:
		m.state = State{Kind: CheckingProducts}
	default:
		return m.state, errInvalidTransition("retry", m.state.Kind)
	}
	return m.Advance(ctx), nil
}

func (m *Machine) invalidateBootstrapReads() {
	cache := m.store.Cache()
	cache.Invalidate(query.OpAdminSystemInitialized)
	cache.Invalidate(query.OpIsCallerAdmin)
	cache.Invalidate(query.OpStoreClaimable)
}

// Reset returns the machine to its initial state, e.g. after logout.
func (m *Machine) Reset() {
	m.state = State{Kind: Unauthenticated}
}

type transitionError struct {
	action string
	from   Kind
}

func (e *transitionError) Error() string {
	return "cannot " + e.action + " from state " + e.from.String()
}

func errInvalidTransition(action string, from Kind) error {
	return &transitionError{action: action, from: from}
}
