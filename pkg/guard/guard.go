package guard

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrReentrantCall = errors.New("reentrant call")
	ErrPaused        = errors.New("paused")
	ErrNotPaused     = errors.New("not paused")
)

// Reentrancy is a mutual-exclusion flag for operations that hand control to
// untrusted code mid-flight. Enter fails instead of blocking when the guard is
// already held, so a payout recipient calling back into a guarded operation is
// rejected rather than deadlocked.
type Reentrancy struct {
	mu      sync.Mutex
	entered bool
}

func (g *Reentrancy) Enter() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.entered {
		return ErrReentrantCall
	}
	g.entered = true
	return nil
}

// Exit must run on every path out of a guarded operation, including failures.
func (g *Reentrancy) Exit() {
	g.mu.Lock()
	g.entered = false
	g.mu.Unlock()
}

// Pauser is a resettable halt switch. It starts unpaused unless constructed
// with NewPausedPauser.
type Pauser struct {
	paused atomic.Bool
}

func NewPausedPauser() *Pauser {
	p := &Pauser{}
	p.paused.Store(true)
	return p
}

func (p *Pauser) Paused() bool { return p.paused.Load() }

func (p *Pauser) Pause() error {
	if !p.paused.CompareAndSwap(false, true) {
		return ErrPaused
	}
	return nil
}

func (p *Pauser) Unpause() error {
	if !p.paused.CompareAndSwap(true, false) {
		return ErrNotPaused
	}
	return nil
}

// RequireUnpaused is the whenNotPaused check for guarded entry points.
func (p *Pauser) RequireUnpaused() error {
	if p.paused.Load() {
		return ErrPaused
	}
	return nil
}

// RequirePaused is the whenPaused counterpart.
func (p *Pauser) RequirePaused() error {
	if !p.paused.Load() {
		return ErrNotPaused
	}
	return nil
}
