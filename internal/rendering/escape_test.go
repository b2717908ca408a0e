package rendering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "cv"},
		{"plain", "Ada Lovelace", "ada-lovelace-cv"},
		{"accents", "José Núñez", "jose-nunez-cv"},
		{"punctuation runs", "  O'Brien,  Pat!! ", "o-brien-pat-cv"},
		{"no ascii letters", "李雷", "cv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.in))
		})
	}
}
