package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestPriceLabel(t *testing.T) {
	tests := []struct {
		name     string
		price    *float64
		currency string
		want     string
	}{
		{"no price", nil, "KES", "Price on Request"},
		{"zero price counts as unset", ptr(0), "KES", "Price on Request"},
		{"currency without price", nil, "USD", "Price on Request"},
		{"grouped KES", ptr(45000), "KES", "KES 45,000"},
		{"grouped USD", ptr(1250000), "USD", "USD 1,250,000"},
		{"fraction rounded away", ptr(1234.49), "EUR", "EUR 1,234"},
		{"small amount ungrouped", ptr(800), "KES", "KES 800"},
		{"missing currency defaults to KES", ptr(500), "", "KES 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PriceLabel(tt.price, tt.currency))
		})
	}
}

func TestDesignPriceLabel(t *testing.T) {
	d := Design{Title: "Classic Navy Suit", Price: ptr(45000), Currency: "KES"}
	assert.Equal(t, "KES 45,000", d.PriceLabel())
}
