package kiosk

import "sort"

// Category groups menu items on the menu screen.
type Category string

const (
	CategoryAll      Category = "all"
	CategoryCoffee   Category = "coffee"
	CategoryDecaf    Category = "decaf"
	CategorySmoothie Category = "smoothie"
	CategoryTea      Category = "tea"
	CategoryDessert  Category = "dessert"
)

// Categories in display order.
var Categories = []Category{
	CategoryAll, CategoryCoffee, CategoryDecaf, CategorySmoothie, CategoryTea, CategoryDessert,
}

// MenuItem is a product of the practice cafe. Prices are in won.
type MenuItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Emoji    string   `json:"emoji"`
	Price    int      `json:"price"`
	Category Category `json:"category"`
}

// Option is an add-on of an option group.
type Option struct {
	ID       string `json:"id"`
	NameKey  string `json:"name_key"`
	Emoji    string `json:"emoji"`
	PriceAdd int    `json:"price_add"`
}

// OptionGroup allows at most one of its options per cart line.
type OptionGroup struct {
	ID       string   `json:"id"`
	TitleKey string   `json:"title_key"`
	Options  []Option `json:"options"`
}

// PaymentMethod is a button on the payment screen.
type PaymentMethod struct {
	ID      string `json:"id"`
	NameKey string `json:"name_key"`
	Emoji   string `json:"emoji"`
	// Enabled methods advance to the card screen. The others are shown
	// but do nothing.
	Enabled bool `json:"enabled"`
}

// Menu is the practice cafe menu.
var Menu = []MenuItem{
	{ID: "americano-ice", Name: "아메리카노 (ICE)", Emoji: "🧊☕", Price: 4000, Category: CategoryCoffee},
	{ID: "hazelnut-ice", Name: "헤이즐넛 아메리카노 (ICE)", Emoji: "🌰☕", Price: 6000, Category: CategoryCoffee},
	{ID: "vanilla-ice", Name: "바닐라 아메리카노 (ICE)", Emoji: "🍦☕", Price: 6000, Category: CategoryCoffee},
	{ID: "espresso-s", Name: "에스프레소(소)", Emoji: "☕", Price: 6000, Category: CategoryCoffee},
	{ID: "espresso-m", Name: "에스프레소(중)", Emoji: "☕☕", Price: 7000, Category: CategoryCoffee},
	{ID: "hazelnut-hot", Name: "헤이즐넛 아메리카노 (HOT)", Emoji: "🔥🌰", Price: 8000, Category: CategoryCoffee},
	{ID: "decaf-americano", Name: "디카페인 아메리카노", Emoji: "💚☕", Price: 4500, Category: CategoryDecaf},
	{ID: "decaf-latte", Name: "디카페인 카페라떼", Emoji: "💚🥛", Price: 5500, Category: CategoryDecaf},
	{ID: "strawberry-smoothie", Name: "딸기 스무디", Emoji: "🍓", Price: 8000, Category: CategorySmoothie},
	{ID: "pear-smoothie", Name: "배꿀 스무디", Emoji: "🍐🍯", Price: 8000, Category: CategorySmoothie},
	{ID: "green-tea", Name: "그린티 라떼", Emoji: "🍵", Price: 5500, Category: CategoryTea},
	{ID: "chamomile", Name: "캐모마일 티", Emoji: "🌼", Price: 5000, Category: CategoryTea},
	{ID: "macaron", Name: "딸기크림 바사삭 마카롱", Emoji: "🧁", Price: 6000, Category: CategoryDessert},
	{ID: "cookie", Name: "초코칩 쿠키", Emoji: "🍪", Price: 3500, Category: CategoryDessert},
}

// OptionGroups are offered for every item.
var OptionGroups = []OptionGroup{
	{
		ID:       "tumbler",
		TitleKey: "kiosk.screens.options.tumbler",
		Options: []Option{
			{ID: "personal-cup", NameKey: "kiosk.screens.options.personalCup", Emoji: "🥤", PriceAdd: 0},
		},
	},
	{
		ID:       "shot",
		TitleKey: "kiosk.screens.options.shot",
		Options: []Option{
			{ID: "extra-shot", NameKey: "kiosk.screens.options.addShot", Emoji: "☕", PriceAdd: 500},
			{ID: "double-shot", NameKey: "kiosk.screens.options.addDoubleShot", Emoji: "☕☕", PriceAdd: 1000},
		},
	},
	{
		ID:       "sweetness",
		TitleKey: "kiosk.screens.options.sweetness",
		Options: []Option{
			{ID: "vanilla-syrup", NameKey: "kiosk.screens.options.vanillaSyrup", Emoji: "🍶", PriceAdd: 700},
			{ID: "caramel-syrup", NameKey: "kiosk.screens.options.caramelSyrup", Emoji: "🍮", PriceAdd: 700},
			{ID: "hazelnut-syrup", NameKey: "kiosk.screens.options.hazelnutSyrup", Emoji: "🌰", PriceAdd: 700},
		},
	},
}

// PaymentMethods in display order.
var PaymentMethods = []PaymentMethod{
	{ID: "card", NameKey: "kiosk.screens.payment.card", Emoji: "💳", Enabled: true},
	{ID: "app-card", NameKey: "kiosk.screens.payment.appCard", Emoji: "📱"},
	{ID: "kakao-pay", NameKey: "kiosk.screens.payment.kakaoPay", Emoji: "💛"},
	{ID: "naver-pay", NameKey: "kiosk.screens.payment.naverPay", Emoji: "💚"},
}

// Recommended items shown on the order confirmation screen.
var Recommended = []string{"macaron", "strawberry-smoothie"}

// FindItem looks up a menu item by id.
func FindItem(id string) (MenuItem, bool) {
	for _, m := range Menu {
		if m.ID == id {
			return m, true
		}
	}
	return MenuItem{}, false
}

// FindOption returns the option and the id of its group.
func FindOption(id string) (Option, string, bool) {
	for _, g := range OptionGroups {
		for _, o := range g.Options {
			if o.ID == id {
				return o, g.ID, true
			}
		}
	}
	return Option{}, "", false
}

// FilterMenu returns the items of a category. CategoryAll returns the whole menu.
func FilterMenu(c Category) []MenuItem {
	if c == CategoryAll || c == "" {
		return Menu
	}
	out := make([]MenuItem, 0, len(Menu))
	for _, m := range Menu {
		if m.Category == c {
			out = append(out, m)
		}
	}
	return out
}

// ItemPrice is the base price plus every option.
func ItemPrice(item MenuItem, options []Option) int {
	total := item.Price
	for _, o := range options {
		total += o.PriceAdd
	}
	return total
}

// SplitTax splits a VAT-inclusive total into supply amount and tax (1/11).
func SplitTax(total int) (amount, tax int) {
	tax = (total*2 + 11) / 22
	return total - tax, tax
}

func optionKey(options []Option) string {
	ids := make([]string, len(options))
	for i, o := range options {
		ids[i] = o.ID
	}
	sort.Strings(ids)
	key := ""
	for _, id := range ids {
		key += id + ","
	}
	return key
}
