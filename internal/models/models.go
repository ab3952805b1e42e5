package models

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Design is a single catalogue entry. The ID and timestamps are assigned by
// the backend; the client never sets them.
type Design struct {
	ID          int      `json:"id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency"`
	ImageURL    string   `json:"image_url,omitempty"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// User as returned inside an auth response. Role is informational only;
// admin gating is done purely on token presence.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Categories the admin form offers. Filtering and display treat category as
// an open string, so this set only constrains new submissions.
var Categories = []string{
	"suits",
	"traditional",
	"custom",
	"shirts",
	"trousers",
	"jackets",
	"wedding",
}

var Currencies = []string{"KES", "USD", "EUR"}

const DefaultCurrency = "KES"

var pricePrinter = message.NewPrinter(language.English)

// PriceLabel renders a display price: the currency code followed by a
// grouped whole-number amount, or "Price on Request" when no price is set.
// A zero price counts as unset.
func PriceLabel(price *float64, currency string) string {
	if price == nil || *price == 0 {
		return "Price on Request"
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return pricePrinter.Sprintf("%s %d", currency, int64(math.Round(*price)))
}

// PriceLabel is the method form used by templates.
func (d Design) PriceLabel() string {
	return PriceLabel(d.Price, d.Currency)
}
