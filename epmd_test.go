package epmd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-epmd/pkg/client"
	"github.com/dep2p/go-epmd/pkg/types"
)

func newTestDaemon(t *testing.T, opts ...Option) *Daemon {
	t.Helper()
	base := []Option{WithAddress("127.0.0.1"), WithPort(0)}
	d, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return d
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)

	GitCommit = "0123456789abcdef"
	defer func() { GitCommit = "" }()
	assert.Contains(t, VersionInfo(), "(01234567)")
}

func TestNew_InvalidOption(t *testing.T) {
	_, err := New(WithPacketTimeout(0))
	require.Error(t, err)

	_, err = New(WithConfig(nil))
	require.Error(t, err)

	_, err = New(WithMetricsAddr("no-port"))
	require.Error(t, err)
}

func TestDaemon_StartStop(t *testing.T) {
	d := newTestDaemon(t, WithExitOnKill(false))
	ctx := context.Background()

	require.NoError(t, d.Start(ctx))
	assert.ErrorIs(t, d.Start(ctx), ErrAlreadyStarted)
	assert.NotZero(t, d.Port())
	assert.NotEmpty(t, d.Addrs())
	assert.NotNil(t, d.Metrics())

	c := client.NewLocal(d.Port())
	reg, err := c.Register(ctx, types.NodeRecord{
		Name:        "alpha",
		Port:        5000,
		NodeType:    types.NodeTypeR6,
		HighVersion: 6,
		LowVersion:  5,
	})
	require.NoError(t, err)
	defer reg.Close()

	nodes, err := d.Nodes(ctx)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "alpha", nodes[0].Name)

	st, err := d.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Nodes)
	assert.Equal(t, 1, st.KeepConnections)

	require.NoError(t, d.Stop(ctx))
	require.NoError(t, d.Stop(ctx))
	assert.ErrorIs(t, d.Start(ctx), ErrServerClosed)

	select {
	case <-d.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestDaemon_RunUntilCancel(t *testing.T) {
	d := newTestDaemon(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	require.Eventually(t, func() bool {
		_, err := d.Stats(context.Background())
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestDaemon_RunKilled(t *testing.T) {
	d := newTestDaemon(t, WithExitOnKill(true))

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(context.Background()) }()

	require.Eventually(t, func() bool {
		_, err := d.Stats(context.Background())
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	ok, err := client.NewLocal(d.Port()).Kill(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, ErrKilled), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after kill")
	}
}
