package metis_test

import (
	"testing"

	"github.com/fwojciec/metis"
	"github.com/stretchr/testify/assert"
)

func TestIsEnglish(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"Hello world", true},
		{"你好 world", false},
		{"こんにちは world", false},
		{"", false},
		{"12345 !!!", false},
		{"The quick brown fox jumps over the lazy dog 狐", true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, metis.IsEnglish(tt.text))
		})
	}
}
