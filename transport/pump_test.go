package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPumpPollDeliversFrames(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()

	server := NewConn(serverConn)
	client := NewConn(clientConn)
	pump := NewPump(client)
	defer pump.Close()

	require.NoError(t, server.Send(context.Background(), []byte("ping")))

	require.Eventually(t, func() bool {
		frame, status, err := pump.Poll()
		if status == StatusFrame {
			require.NoError(t, err)
			require.Equal(t, "ping", string(frame))
			return true
		}
		return false
	}, time.Second, time.Millisecond)
}

func TestPumpPollIdleWhenNothingReady(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer serverConn.Close()
	defer clientConn.Close()

	client := NewConn(clientConn)
	pump := NewPump(client)
	defer pump.Close()

	_, status, err := pump.Poll()
	require.NoError(t, err)
	require.Equal(t, StatusIdle, status)
}

func TestPumpPollReportsConnectBreak(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	client := NewConn(clientConn)
	pump := NewPump(client)
	defer pump.Close()

	serverConn.Close()
	clientConn.Close()

	require.Eventually(t, func() bool {
		_, status, _ := pump.Poll()
		return status == StatusConnectBreak
	}, time.Second, time.Millisecond)

	// Stays latched on subsequent polls.
	_, status, err := pump.Poll()
	require.Equal(t, StatusConnectBreak, status)
	require.Error(t, err)
}
