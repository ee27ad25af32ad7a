package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestProduct_InStock(t *testing.T) {
	assert.True(t, Product{Stock: 4}.InStock())
	assert.False(t, Product{Stock: 0}.InStock())
	assert.False(t, Product{Stock: -1}.InStock())
}

func TestFormat_Label(t *testing.T) {
	tests := []struct {
		volume string
		want   string
	}{
		{"1", "1L"},
		{"5", "5L"},
		{"20", "20L"},
		{"0.5", "0.5L"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			f := Format{Volume: decimal.RequireFromString(tt.volume)}
			assert.Equal(t, tt.want, f.Label())
		})
	}
}
