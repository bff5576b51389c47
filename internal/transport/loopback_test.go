package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoopbackReceiveAndSend(t *testing.T) {
	lb := NewLoopback()
	lb.Push(1, []byte("hello"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	packet, session, err := lb.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, SessionRef(1), session)
	require.Equal(t, []byte("hello"), packet)

	require.NoError(t, lb.Send(1, []byte("reply")))
	require.Equal(t, [][]byte{[]byte("reply")}, lb.Sent(1))
}

func TestLoopbackSendAfterCloseFails(t *testing.T) {
	lb := NewLoopback()
	lb.CloseSession(2)
	require.True(t, lb.Closed(2))

	err := lb.Send(2, []byte("x"))
	require.Error(t, err)
}

func TestLoopbackReceiveRespectsContextCancellation(t *testing.T) {
	lb := NewLoopback()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := lb.Receive(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
