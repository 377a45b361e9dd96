package simplesite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "photo.png", want: "photo.png"},
		{in: "My Photo (1).PNG", want: "my-photo-1-.png"},
		{in: `C:\Users\me\kitchen.jpg`, want: "kitchen.jpg"},
		{in: "../../etc/passwd", want: "passwd"},
		{in: "---", want: "image"},
		{in: "", want: "image"},
		{in: "résumé.jpg", want: "r-sum-.jpg"},
		{in: strings.Repeat("a", 150) + ".png", want: strings.Repeat("a", 96) + ".png"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFilename(tt.in))
		})
	}
}

func TestValidateObjectKey(t *testing.T) {
	assert.NoError(t, validateObjectKey("images/abc-photo.png"))
	for _, key := range []string{"", "images/", "images/./a.png", "images/../a.png", "images/a/b.png", "a.png", "/images/a.png"} {
		assert.ErrorIs(t, validateObjectKey(key), ErrImageNotFound, key)
	}
}
