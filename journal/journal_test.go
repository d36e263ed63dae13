package journal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomic(t *testing.T) {

	errFailed := errors.New("failed")

	t.Run("commit keeps changes and clears the log", func(t *testing.T) {
		j := New()
		value := 1
		err := j.Atomic(func() error {
			Assign(j, &value, 2)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, value)
		assert.Equal(t, 0, j.Len())
	})

	t.Run("failure reverts in reverse order", func(t *testing.T) {
		j := New()
		value := 1
		err := j.Atomic(func() error {
			Assign(j, &value, 2)
			Assign(j, &value, 3)
			return errFailed
		})
		assert.ErrorIs(t, err, errFailed)
		assert.Equal(t, 1, value)
		assert.Equal(t, 0, j.Len())
	})

	t.Run("nested failure only reverts inner changes", func(t *testing.T) {
		j := New()
		outer, inner := 0, 0
		err := j.Atomic(func() error {
			Assign(j, &outer, 1)
			innerErr := j.Atomic(func() error {
				Assign(j, &inner, 1)
				return errFailed
			})
			assert.ErrorIs(t, innerErr, errFailed)
			assert.Equal(t, 1, j.Len())
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, outer)
		assert.Equal(t, 0, inner)
	})

	t.Run("outer failure reverts committed inner changes", func(t *testing.T) {
		j := New()
		inner := 0
		err := j.Atomic(func() error {
			require.NoError(t, j.Atomic(func() error {
				Assign(j, &inner, 5)
				return nil
			}))
			return errFailed
		})
		assert.ErrorIs(t, err, errFailed)
		assert.Equal(t, 0, inner)
	})
}
