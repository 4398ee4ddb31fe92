package counter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	c := New()
	require.Equal(t, uint64(0), c.Value())
}

func TestIncrement(t *testing.T) {
	c := New()
	for i := 0; i < 5; i++ {
		c.Increment()
	}
	require.Equal(t, uint64(5), c.Value())
}

func TestReset(t *testing.T) {
	c := New()
	c.Increment()
	c.Reset()
	require.Equal(t, uint64(0), c.Value())
}

func TestString(t *testing.T) {
	c := New()
	c.Increment()
	require.Equal(t, "1", c.String())
}
