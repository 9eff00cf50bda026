package controller

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/legadomuebles/legado/internal/store"
	"github.com/legadomuebles/legado/internal/uistate"
)

// DefaultToastDuration is how long a toast stays up when no duration is given.
const DefaultToastDuration = 4 * time.Second

// Toast shows one short notification at a time.
type Toast struct {
	store    *store.Store
	dispatch Dispatch

	mu    sync.Mutex
	timer *time.Timer
}

func NewToast(s *store.Store, dispatch Dispatch) *Toast {
	return &Toast{store: s, dispatch: orInline(dispatch)}
}

// Show replaces the current toast and restarts the hide timer. An empty
// type means [uistate.ToastDefault] and a duration of zero or less means
// [DefaultToastDuration].
func (t *Toast) Show(message string, typ uistate.ToastType, duration time.Duration) *uistate.Toast {
	if typ == "" {
		typ = uistate.ToastDefault
	}
	if duration <= 0 {
		duration = DefaultToastDuration
	}

	toast := &uistate.Toast{ID: uuid.NewString(), Message: message, Type: typ}
	uistate.ActiveToast.Set(t.store, toast)

	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(duration, func() {
		t.dispatch(func() { t.hideIf(toast.ID) })
	})
	t.mu.Unlock()

	return toast
}

// Hide removes the current toast.
func (t *Toast) Hide() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.mu.Unlock()
	uistate.ActiveToast.Set(t.store, nil)
}

// Current returns the toast on screen, or nil.
func (t *Toast) Current() *uistate.Toast {
	return uistate.ActiveToast.Get(t.store)
}

// hideIf hides the toast only if it is still the one the timer was set for.
func (t *Toast) hideIf(id string) {
	if cur := t.Current(); cur != nil && cur.ID == id {
		uistate.ActiveToast.Set(t.store, nil)
	}
}
