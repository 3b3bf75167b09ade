package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMem(t *testing.T) {
	t.Run("set and get", func(t *testing.T) {
		m := New(time.Minute)

		m.Set(t.Context(), "profile:uplay:foo", []byte(`[{"profileId":"1"}]`), 0)
		got, ok := m.Get(t.Context(), "profile:uplay:foo")

		require.True(t, ok)
		require.Equal(t, `[{"profileId":"1"}]`, string(got))
	})

	t.Run("miss", func(t *testing.T) {
		m := New(time.Minute)

		_, ok := m.Get(t.Context(), "absent")

		require.False(t, ok)
	})

	t.Run("delete", func(t *testing.T) {
		m := New(time.Minute)
		m.Set(t.Context(), "k", []byte("v"), 0)

		m.Delete(t.Context(), "k")

		_, ok := m.Get(t.Context(), "k")
		require.False(t, ok)
	})

	t.Run("expired value is gone", func(t *testing.T) {
		m := New(time.Minute)
		m.Set(t.Context(), "k", []byte("v"), time.Millisecond)

		require.Eventually(t, func() bool {
			_, ok := m.Get(t.Context(), "k")
			return !ok
		}, time.Second, 5*time.Millisecond)
	})
}
