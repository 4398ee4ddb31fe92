package netio

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendAndReceiveRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := Bind(ctx, []int{0}, nil, nil)
	require.NoError(t, err)
	defer a.Close()
	b, err := Bind(ctx, []int{0}, nil, nil)
	require.NoError(t, err)
	defer b.Close()

	bPort := b.output.LocalAddr().(*net.UDPAddr).Port
	require.NoError(t, a.Send(bPort, []byte("hello")))

	select {
	case <-b.Notify():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notify")
	}

	got := b.Drain()
	require.Len(t, got, 1)
	require.Equal(t, "hello", string(got[0].Payload))
}

func TestBindFailsOnEmptyPortList(t *testing.T) {
	_, err := Bind(context.Background(), nil, nil, nil)
	require.Error(t, err)
}

func TestSendFailsAfterClose(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := Bind(ctx, []int{0}, nil, nil)
	require.NoError(t, err)
	l.Close()

	// A send after close must fail rather than hang.
	require.Error(t, l.Send(1, []byte("x")))
}
