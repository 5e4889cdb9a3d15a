package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "Whole Foods", sanitizeText("Whole\x00 Foods"))
	assert.Equal(t, "ab", sanitizeText("a\xffb"))
	assert.Equal(t, "line1\nline2\tx", sanitizeText("line1\r\nline2\tx\f"))
	assert.Equal(t, "Café", sanitizeText("Café"))
}
