package kiosk

import (
	"errors"
	"time"
)

// Screen is one step of the ordering flow.
type Screen string

const (
	ScreenWelcome      Screen = "welcome"
	ScreenMenu         Screen = "menu"
	ScreenOptions      Screen = "options"
	ScreenOrderConfirm Screen = "orderConfirm"
	ScreenPayment      Screen = "payment"
	ScreenCardPayment  Screen = "cardPayment"
	ScreenPoints       Screen = "points"
	ScreenReceipt      Screen = "receipt"
	ScreenComplete     Screen = "complete"
)

// ScreenOrder is the linear flow; progress is reported against it.
var ScreenOrder = []Screen{
	ScreenWelcome, ScreenMenu, ScreenOptions, ScreenOrderConfirm, ScreenPayment,
	ScreenCardPayment, ScreenPoints, ScreenReceipt, ScreenComplete,
}

// DefaultIdleTimeout is the inactivity timer shown on the cart bar.
const DefaultIdleTimeout = 120 * time.Second

var (
	ErrWrongScreen        = errors.New("action not available on this screen")
	ErrUnknownItem        = errors.New("unknown menu item")
	ErrUnknownOption      = errors.New("unknown option")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownPayment     = errors.New("unknown payment method")
	ErrPaymentUnavailable = errors.New("payment method not available in practice")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrCartIndex          = errors.New("cart line out of range")
	ErrNoItemSelected     = errors.New("no item selected")
)

// CartLine is one item with its options. UnitPrice includes the options.
type CartLine struct {
	Item      MenuItem `json:"item"`
	Options   []Option `json:"options"`
	Quantity  int      `json:"quantity"`
	UnitPrice int      `json:"unit_price"`
}

// Total is UnitPrice times Quantity.
func (l CartLine) Total() int { return l.UnitPrice * l.Quantity }

// Session is one run through the simulator. It is not safe for concurrent
// use; Store serializes access.
type Session struct {
	ID           string
	Screen       Screen
	Category     Category
	Cart         []CartLine
	Selected     *MenuItem
	Options      []Option
	DineIn       *bool
	Payment      string
	SavedPoints  bool
	PrintReceipt bool

	idleTimeout time.Duration
	lastAction  time.Time
}

// NewSession starts at the welcome screen.
func NewSession(id string, idleTimeout time.Duration, now time.Time) *Session {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Session{
		ID:          id,
		Screen:      ScreenWelcome,
		Category:    CategoryAll,
		Cart:        []CartLine{},
		idleTimeout: idleTimeout,
		lastAction:  now,
	}
}

// touch restarts the inactivity timer.
func (s *Session) touch(now time.Time) { s.lastAction = now }

// Remaining is the time left on the inactivity timer, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	left := s.idleTimeout - now.Sub(s.lastAction)
	if left < 0 {
		return 0
	}
	return left
}

// Expired reports whether the inactivity timer ran out.
func (s *Session) Expired(now time.Time) bool { return s.Remaining(now) == 0 }

// Step is the 1-based position of the current screen in ScreenOrder.
func (s *Session) Step() int {
	for i, sc := range ScreenOrder {
		if sc == s.Screen {
			return i + 1
		}
	}
	return 0
}

// CartTotal sums every line.
func (s *Session) CartTotal() int {
	total := 0
	for _, l := range s.Cart {
		total += l.Total()
	}
	return total
}

// CartCount sums quantities.
func (s *Session) CartCount() int {
	n := 0
	for _, l := range s.Cart {
		n += l.Quantity
	}
	return n
}

func (s *Session) expect(screens ...Screen) error {
	for _, sc := range screens {
		if s.Screen == sc {
			return nil
		}
	}
	return ErrWrongScreen
}

func (s *Session) clearSelection() {
	s.Selected = nil
	s.Options = nil
}

// Start leaves the welcome screen.
func (s *Session) Start(now time.Time) error {
	if err := s.expect(ScreenWelcome); err != nil {
		return err
	}
	s.touch(now)
	s.Screen = ScreenMenu
	return nil
}

// Home returns to the welcome screen and empties the cart.
func (s *Session) Home(now time.Time) {
	s.touch(now)
	s.Screen = ScreenWelcome
	s.Cart = []CartLine{}
	s.Category = CategoryAll
	s.DineIn = nil
	s.Payment = ""
	s.SavedPoints = false
	s.PrintReceipt = false
	s.clearSelection()
}

// SelectCategory filters the menu.
func (s *Session) SelectCategory(c Category, now time.Time) error {
	if err := s.expect(ScreenMenu); err != nil {
		return err
	}
	known := false
	for _, k := range Categories {
		if k == c {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownCategory
	}
	s.touch(now)
	s.Category = c
	return nil
}

// SelectItem opens the options screen. Recommended items can also be
// picked from the order confirmation screen.
func (s *Session) SelectItem(itemID string, now time.Time) error {
	if err := s.expect(ScreenMenu, ScreenOrderConfirm); err != nil {
		return err
	}
	item, ok := FindItem(itemID)
	if !ok {
		return ErrUnknownItem
	}
	s.touch(now)
	s.Selected = &item
	s.Options = nil
	s.Screen = ScreenOptions
	return nil
}

// ToggleOption selects or deselects an option. Selecting replaces any other
// option of the same group.
func (s *Session) ToggleOption(optionID string, now time.Time) error {
	if err := s.expect(ScreenOptions); err != nil {
		return err
	}
	opt, group, ok := FindOption(optionID)
	if !ok {
		return ErrUnknownOption
	}
	s.touch(now)

	kept := make([]Option, 0, len(s.Options)+1)
	selected := false
	for _, o := range s.Options {
		if o.ID == opt.ID {
			selected = true
			continue
		}
		if _, g, _ := FindOption(o.ID); g == group {
			continue
		}
		kept = append(kept, o)
	}
	if !selected {
		kept = append(kept, opt)
	}
	s.Options = kept
	return nil
}

// ResetOptions clears the chosen options.
func (s *Session) ResetOptions(now time.Time) error {
	if err := s.expect(ScreenOptions); err != nil {
		return err
	}
	s.touch(now)
	s.Options = nil
	return nil
}

// CancelOptions drops the selection and goes back to the menu.
func (s *Session) CancelOptions(now time.Time) error {
	if err := s.expect(ScreenOptions); err != nil {
		return err
	}
	s.touch(now)
	s.clearSelection()
	s.Screen = ScreenMenu
	return nil
}

// AddToCart adds the selection. A line with the same item and options gets
// its quantity bumped instead.
func (s *Session) AddToCart(now time.Time) error {
	if err := s.expect(ScreenOptions); err != nil {
		return err
	}
	if s.Selected == nil {
		return ErrNoItemSelected
	}
	s.touch(now)

	key := optionKey(s.Options)
	for i := range s.Cart {
		if s.Cart[i].Item.ID == s.Selected.ID && optionKey(s.Cart[i].Options) == key {
			s.Cart[i].Quantity++
			s.clearSelection()
			s.Screen = ScreenMenu
			return nil
		}
	}
	opts := append([]Option{}, s.Options...)
	s.Cart = append(s.Cart, CartLine{
		Item:      *s.Selected,
		Options:   opts,
		Quantity:  1,
		UnitPrice: ItemPrice(*s.Selected, opts),
	})
	s.clearSelection()
	s.Screen = ScreenMenu
	return nil
}

// RemoveLine deletes a cart line.
func (s *Session) RemoveLine(index int, now time.Time) error {
	if err := s.expect(ScreenMenu); err != nil {
		return err
	}
	if index < 0 || index >= len(s.Cart) {
		return ErrCartIndex
	}
	s.touch(now)
	s.Cart = append(s.Cart[:index], s.Cart[index+1:]...)
	return nil
}

// ChangeQuantity adds delta to a line. Quantities never drop below one.
func (s *Session) ChangeQuantity(index, delta int, now time.Time) error {
	if err := s.expect(ScreenMenu); err != nil {
		return err
	}
	if index < 0 || index >= len(s.Cart) {
		return ErrCartIndex
	}
	s.touch(now)
	if q := s.Cart[index].Quantity + delta; q > 0 {
		s.Cart[index].Quantity = q
	}
	return nil
}

// ClearCart empties the cart.
func (s *Session) ClearCart(now time.Time) error {
	if err := s.expect(ScreenMenu); err != nil {
		return err
	}
	s.touch(now)
	s.Cart = []CartLine{}
	return nil
}

// Checkout moves to order confirmation.
func (s *Session) Checkout(now time.Time) error {
	if err := s.expect(ScreenMenu); err != nil {
		return err
	}
	if len(s.Cart) == 0 {
		return ErrEmptyCart
	}
	s.touch(now)
	s.Screen = ScreenOrderConfirm
	return nil
}

// ChooseDineIn records eat-in or take-out and moves to payment.
func (s *Session) ChooseDineIn(dineIn bool, now time.Time) error {
	if err := s.expect(ScreenOrderConfirm); err != nil {
		return err
	}
	s.touch(now)
	s.DineIn = &dineIn
	s.Screen = ScreenPayment
	return nil
}

// ChoosePayment only advances for enabled methods.
func (s *Session) ChoosePayment(methodID string, now time.Time) error {
	if err := s.expect(ScreenPayment); err != nil {
		return err
	}
	for _, m := range PaymentMethods {
		if m.ID != methodID {
			continue
		}
		s.touch(now)
		if !m.Enabled {
			return ErrPaymentUnavailable
		}
		s.Payment = m.ID
		s.Screen = ScreenCardPayment
		return nil
	}
	return ErrUnknownPayment
}

// InsertCard completes the card payment.
func (s *Session) InsertCard(now time.Time) error {
	if err := s.expect(ScreenCardPayment); err != nil {
		return err
	}
	s.touch(now)
	s.Screen = ScreenPoints
	return nil
}

// Points saves or skips loyalty points.
func (s *Session) Points(save bool, now time.Time) error {
	if err := s.expect(ScreenPoints); err != nil {
		return err
	}
	s.touch(now)
	s.SavedPoints = save
	s.Screen = ScreenReceipt
	return nil
}

// Receipt prints or skips the receipt and finishes the order.
func (s *Session) Receipt(printed bool, now time.Time) error {
	if err := s.expect(ScreenReceipt); err != nil {
		return err
	}
	s.touch(now)
	s.PrintReceipt = printed
	s.Screen = ScreenComplete
	return nil
}

// Back goes one screen back where the flow offers it.
func (s *Session) Back(now time.Time) error {
	var prev Screen
	switch s.Screen {
	case ScreenOptions:
		s.clearSelection()
		prev = ScreenMenu
	case ScreenOrderConfirm:
		prev = ScreenMenu
	case ScreenPayment:
		prev = ScreenOrderConfirm
	case ScreenCardPayment:
		prev = ScreenPayment
	default:
		return ErrWrongScreen
	}
	s.touch(now)
	s.Screen = prev
	return nil
}
