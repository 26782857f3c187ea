package handler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kart-io/bloggy/internal/bloggy/handler"
)

func TestSessionRegistryRegisterAndUnregister(t *testing.T) {
	registry := handler.NewSessionRegistry()
	assert.Equal(t, 0, registry.Count())

	registry.Register("client-1", nil)
	registry.Register("client-2", nil)
	assert.Equal(t, 2, registry.Count())

	registry.Unregister("client-1")
	assert.Equal(t, 1, registry.Count())
}

func TestSessionRegistryUnregisterIsIdempotent(t *testing.T) {
	registry := handler.NewSessionRegistry()

	registry.Register("client-1", nil)
	registry.Unregister("client-1")
	registry.Unregister("client-1")
	registry.Unregister("never-registered")

	assert.Equal(t, 0, registry.Count())
}

func TestSessionRegistryReplacesExistingSession(t *testing.T) {
	registry := handler.NewSessionRegistry()

	registry.Register("client-1", nil)
	registry.Register("client-1", nil)

	assert.Equal(t, 1, registry.Count())
}
