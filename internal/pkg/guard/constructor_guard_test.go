package guard_test

import (
	"errors"
	"testing"

	"expedition/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("dock assignment must be created via its constructor")

	t.Run("constructed_guard_passes", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// Then
		require.NoError(t, g.Validate(errNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_returns_supplied_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(errNotConstructed)

		// Then
		require.Error(t, err)
		assert.Equal(t, errNotConstructed, err)
	})

	t.Run("zero_value_falls_back_to_default_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValue(t *testing.T) {
	errDockNotConstructed := errors.New("Dock must be created via newDock")

	type dock struct {
		code  string
		guard guard.ConstructorGuard
	}

	newDock := func(code string) (dock, error) {
		if code == "" {
			return dock{}, errors.New("dock code is required")
		}
		return dock{code: code, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("built_through_constructor", func(t *testing.T) {
		d, err := newDock("B07")

		require.NoError(t, err)
		require.NoError(t, d.guard.Validate(errDockNotConstructed))
		assert.Equal(t, "B07", d.code)
	})

	t.Run("copied_value_keeps_its_mark", func(t *testing.T) {
		d, _ := newDock("B07")
		cp := d

		require.NoError(t, cp.guard.Validate(errDockNotConstructed))
	})

	t.Run("zero_value_is_rejected", func(t *testing.T) {
		var d dock

		assert.Equal(t, errDockNotConstructed, d.guard.Validate(errDockNotConstructed))
	})
}

func TestConstructorGuardConcurrency(t *testing.T) {
	g := guard.NewConstructorGuard()
	validationError := errors.New("not constructed")

	done := make(chan struct{})
	for range 50 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 500 {
				assert.NoError(t, g.Validate(validationError))
			}
		}()
	}

	for range 50 {
		<-done
	}
}

func BenchmarkConstructorGuard_Validate(b *testing.B) {
	g := guard.NewConstructorGuard()
	err := errors.New("not constructed")
	b.ResetTimer()
	for range b.N {
		_ = g.Validate(err)
	}
}
