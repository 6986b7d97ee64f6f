package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/infoamous-source/kiosk-sub001/internal/model"
)

// loginOutcome records which source settled a pending login.
type loginOutcome string

const (
	outcomeEvent    loginOutcome = "event"
	outcomeTimeout  loginOutcome = "timeout"
	outcomeCanceled loginOutcome = "canceled"
)

// pendingLogin is a single-use future. The first of the SIGNED_IN handler,
// the timer or the caller's context settles it; later settles are no-ops.
type pendingLogin struct {
	once    sync.Once
	done    chan struct{}
	user    *model.AppUser
	outcome loginOutcome
}

func newPendingLogin() *pendingLogin {
	return &pendingLogin{done: make(chan struct{})}
}

// settle reports whether this call won.
func (p *pendingLogin) settle(outcome loginOutcome, user *model.AppUser) bool {
	won := false
	p.once.Do(func() {
		p.user = user
		p.outcome = outcome
		close(p.done)
		won = true
	})
	return won
}

// wait blocks until settled. A timeout settles with a nil user.
func (p *pendingLogin) wait(ctx context.Context, timeout time.Duration) (*model.AppUser, loginOutcome) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
	case <-timer.C:
		p.settle(outcomeTimeout, nil)
	case <-ctx.Done():
		p.settle(outcomeCanceled, nil)
	}
	<-p.done
	return p.user, p.outcome
}

// loginWaiters indexes pending logins by normalized email. The waiter is
// registered before sign-in starts so an early event cannot be missed.
type loginWaiters struct {
	mu      sync.Mutex
	pending map[string][]*pendingLogin
}

func newLoginWaiters() *loginWaiters {
	return &loginWaiters{pending: make(map[string][]*pendingLogin)}
}

func waiterKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// register returns the future and a release func that must be deferred.
func (w *loginWaiters) register(email string) (*pendingLogin, func()) {
	key := waiterKey(email)
	p := newPendingLogin()

	w.mu.Lock()
	w.pending[key] = append(w.pending[key], p)
	w.mu.Unlock()

	return p, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		list := w.pending[key]
		for i, q := range list {
			if q == p {
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(list) == 0 {
			delete(w.pending, key)
		} else {
			w.pending[key] = list
		}
	}
}

// resolve settles every pending login of email with user.
func (w *loginWaiters) resolve(email string, user *model.AppUser) int {
	key := waiterKey(email)
	w.mu.Lock()
	list := append([]*pendingLogin(nil), w.pending[key]...)
	w.mu.Unlock()

	n := 0
	for _, p := range list {
		if p.settle(outcomeEvent, user) {
			n++
		}
	}
	return n
}
