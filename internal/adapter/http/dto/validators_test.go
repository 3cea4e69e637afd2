package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEthAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"lowercase", "0x1111111111111111111111111111111111111111", true},
		{"checksummed", "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", true},
		{"missing prefix", "1111111111111111111111111111111111111111", false},
		{"too short", "0x1111", false},
		{"too long", "0x11111111111111111111111111111111111111111", false},
		{"non-hex", "0xZZ11111111111111111111111111111111111111", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEthAddress(tt.input))
		})
	}
}

func TestIsEthHash(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", true},
		{"address length", "0x1111111111111111111111111111111111111111", false},
		{"missing prefix", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEthHash(tt.input))
		})
	}
}
