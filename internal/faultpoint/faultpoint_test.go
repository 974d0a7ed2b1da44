package faultpoint

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Recurse-ML/logfire-example/internal/domain"
)

func TestHit_ArmedPointPanics(t *testing.T) {
	reg := NewRegistry([]string{"login.access-token"})

	defer func() {
		rec := recover()
		require.NotNil(t, rec, "armed fault point must panic")
		f, ok := rec.(*Fault)
		require.True(t, ok, "panic value must be *Fault, got %T", rec)
		assert.Equal(t, "login.access-token", f.Point)
		assert.True(t, errors.Is(f, domain.ErrIntentionalFault))
	}()
	reg.Hit("login.access-token")
}

func TestHit_DisarmedPointIsFree(t *testing.T) {
	reg := NewRegistry([]string{"login.access-token"})

	assert.NotPanics(t, func() { reg.Hit("items.create") })
}

func TestHit_EmptyRegistry(t *testing.T) {
	reg := NewRegistry(nil)

	assert.False(t, reg.Armed("login.access-token"))
	assert.NotPanics(t, func() { reg.Hit("login.access-token") })
}

func TestHit_NilRegistry(t *testing.T) {
	var reg *Registry

	assert.NotPanics(t, func() { reg.Hit("anything") })
}

func TestFault_ErrorNamesThePoint(t *testing.T) {
	f := &Fault{Point: "login.access-token"}

	assert.Contains(t, f.Error(), "login.access-token")
	assert.Contains(t, f.Error(), "intentional fault")
}
