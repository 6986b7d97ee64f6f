package kiosk

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/infoamous-source/kiosk-sub001/config"
	"github.com/infoamous-source/kiosk-sub001/pkg/metrics"
)

var ErrSessionNotFound = errors.New("kiosk session not found or expired")

// Action types accepted by Store.Apply.
const (
	ActionStart          = "start"
	ActionHome           = "home"
	ActionBack           = "back"
	ActionCategory       = "category"
	ActionSelectItem     = "select_item"
	ActionToggleOption   = "toggle_option"
	ActionResetOptions   = "reset_options"
	ActionCancelOptions  = "cancel_options"
	ActionAddToCart      = "add_to_cart"
	ActionRemoveLine     = "remove_line"
	ActionChangeQuantity = "change_quantity"
	ActionClearCart      = "clear_cart"
	ActionCheckout       = "checkout"
	ActionDineIn         = "dine_in"
	ActionPayment        = "payment"
	ActionInsertCard     = "insert_card"
	ActionPoints         = "points"
	ActionReceipt        = "receipt"
)

var ErrUnknownAction = errors.New("unknown kiosk action")

// Action is one touch on the simulator screen.
type Action struct {
	Type     string   `json:"type"      binding:"required"`
	ItemID   string   `json:"item_id"`
	OptionID string   `json:"option_id"`
	Category Category `json:"category"`
	Index    int      `json:"index"`
	Delta    int      `json:"delta"`
	Method   string   `json:"method"`
	// Yes answers dine-in, points and receipt prompts.
	Yes bool `json:"yes"`
}

// View is the rendered state of a session.
type View struct {
	ID               string     `json:"id"`
	Screen           Screen     `json:"screen"`
	Step             int        `json:"step"`
	TotalSteps       int        `json:"total_steps"`
	Category         Category   `json:"category"`
	Menu             []MenuItem `json:"menu,omitempty"`
	Selected         *MenuItem  `json:"selected,omitempty"`
	SelectedOptions  []Option   `json:"selected_options,omitempty"`
	Cart             []CartLine `json:"cart"`
	CartCount        int        `json:"cart_count"`
	CartTotal        int        `json:"cart_total"`
	SupplyAmount     int        `json:"supply_amount,omitempty"`
	Tax              int        `json:"tax,omitempty"`
	DineIn           *bool      `json:"dine_in,omitempty"`
	Payment          string     `json:"payment,omitempty"`
	RemainingSeconds int        `json:"remaining_seconds"`
	Completed        bool       `json:"completed"`
}

// Store keeps live simulator sessions in memory. Sessions are bounded in
// number and dropped after the idle timeout.
type Store struct {
	mu          sync.Mutex
	sessions    *expirable.LRU[string, *Session]
	live        atomic.Int64
	idleTimeout time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
}

// NewStore creates a Store. m may be nil.
func NewStore(cfg *config.KioskConfig, m *metrics.Metrics, logger *zap.Logger) *Store {
	idle := cfg.IdleTimeout
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	size := cfg.MaxSessions
	if size <= 0 {
		size = 1024
	}
	s := &Store{
		idleTimeout: idle,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	s.sessions = expirable.NewLRU[string, *Session](size, s.onEvict, idle)
	return s
}

// onEvict runs under the cache lock and must not call back into it.
func (s *Store) onEvict(id string, _ *Session) {
	s.logger.Debug("kiosk session dropped", zap.String("session_id", id))
	s.report(s.live.Add(-1))
}

func (s *Store) report(n int64) {
	if s.metrics != nil {
		s.metrics.KioskSessions.Set(float64(n))
	}
}

// Create starts a session at the welcome screen.
func (s *Store) Create() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := NewSession(s.newID(), s.idleTimeout, s.now())
	s.report(s.live.Add(1))
	s.sessions.Add(sess.ID, sess)
	return s.view(sess)
}

// Get renders a live session.
func (s *Store) Get(id string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

// Apply runs one action. Every accepted action restarts the idle timer.
// Rejected actions leave the session unchanged and return its current view.
func (s *Store) Apply(id string, a Action) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := dispatch(sess, a, s.now()); err != nil {
		return s.view(sess), err
	}
	// re-adding resets the expiry
	s.sessions.Add(sess.ID, sess)
	if sess.Screen == ScreenComplete {
		s.logger.Info("kiosk order completed",
			zap.String("session_id", sess.ID),
			zap.Int("items", sess.CartCount()),
			zap.Int("total", sess.CartTotal()),
		)
	}
	return s.view(sess), nil
}

// Delete ends a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Remove(id)
}

// Len is the number of live sessions.
func (s *Store) Len() int { return s.sessions.Len() }

func (s *Store) lookup(id string) (*Session, error) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.Expired(s.now()) {
		s.sessions.Remove(id)
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Store) view(sess *Session) *View {
	now := s.now()
	v := &View{
		ID:               sess.ID,
		Screen:           sess.Screen,
		Step:             sess.Step(),
		TotalSteps:       len(ScreenOrder),
		Category:         sess.Category,
		Selected:         sess.Selected,
		SelectedOptions:  append([]Option(nil), sess.Options...),
		Cart:             append([]CartLine{}, sess.Cart...),
		CartCount:        sess.CartCount(),
		CartTotal:        sess.CartTotal(),
		DineIn:           sess.DineIn,
		Payment:          sess.Payment,
		RemainingSeconds: int(sess.Remaining(now) / time.Second),
		Completed:        sess.Screen == ScreenComplete,
	}
	if sess.Screen == ScreenMenu {
		v.Menu = FilterMenu(sess.Category)
	}
	if v.Completed {
		v.SupplyAmount, v.Tax = SplitTax(v.CartTotal)
	}
	return v
}

func dispatch(sess *Session, a Action, now time.Time) error {
	switch a.Type {
	case ActionStart:
		return sess.Start(now)
	case ActionHome:
		sess.Home(now)
		return nil
	case ActionBack:
		return sess.Back(now)
	case ActionCategory:
		return sess.SelectCategory(a.Category, now)
	case ActionSelectItem:
		return sess.SelectItem(a.ItemID, now)
	case ActionToggleOption:
		return sess.ToggleOption(a.OptionID, now)
	case ActionResetOptions:
		return sess.ResetOptions(now)
	case ActionCancelOptions:
		return sess.CancelOptions(now)
	case ActionAddToCart:
		return sess.AddToCart(now)
	case ActionRemoveLine:
		return sess.RemoveLine(a.Index, now)
	case ActionChangeQuantity:
		return sess.ChangeQuantity(a.Index, a.Delta, now)
	case ActionClearCart:
		return sess.ClearCart(now)
	case ActionCheckout:
		return sess.Checkout(now)
	case ActionDineIn:
		return sess.ChooseDineIn(a.Yes, now)
	case ActionPayment:
		return sess.ChoosePayment(a.Method, now)
	case ActionInsertCard:
		return sess.InsertCard(now)
	case ActionPoints:
		return sess.Points(a.Yes, now)
	case ActionReceipt:
		return sess.Receipt(a.Yes, now)
	}
	return ErrUnknownAction
}
