package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPrefersPrefixedKey(t *testing.T) {
	t.Setenv("STOREFRONT_LOG_FORMAT", "console")
	t.Setenv("LOG_FORMAT", "json")
	assert.Equal(t, "console", Get("LOG_FORMAT", "text"))
}

func TestGetFallsBackToBareKey(t *testing.T) {
	t.Setenv("STOREFRONT_PORT", "")
	t.Setenv("PORT", "9000")
	assert.Equal(t, "9000", Get("PORT", "8080"))
}

func TestGetDefault(t *testing.T) {
	t.Setenv("STOREFRONT_LOG_FORMAT", " ")
	t.Setenv("LOG_FORMAT", "")
	assert.Equal(t, "json", Get("LOG_FORMAT", "json"))
}
