package main

import (
	"bytes"
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-epmd"
	"github.com/dep2p/go-epmd/pkg/client"
	"github.com/dep2p/go-epmd/pkg/types"
)

func startDaemon(t *testing.T, opts ...epmd.Option) *epmd.Daemon {
	t.Helper()
	base := []epmd.Option{epmd.WithAddress("127.0.0.1"), epmd.WithPort(0)}
	d, err := epmd.New(append(base, opts...)...)
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = d.Stop(ctx)
	})
	return d
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr, envFrom(nil))
	return code, stdout.String(), stderr.String()
}

func TestRun_Version(t *testing.T) {
	code, out, _ := runCLI(t, "-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, epmd.Version)
}

func TestRun_Help(t *testing.T) {
	code, _, errOut := runCLI(t, "-h")
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "ERL_EPMD_PORT")
}

func TestRun_BadFlag(t *testing.T) {
	code, _, _ := runCLI(t, "-no-such-flag")
	assert.Equal(t, 1, code)
}

func TestRun_BadConfig(t *testing.T) {
	code, _, errOut := runCLI(t, "-config", "/nonexistent/epmd.json", "-names")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "epmd:")
}

func TestRun_Commands(t *testing.T) {
	d := startDaemon(t, epmd.WithExitOnKill(false))
	port := strconv.Itoa(int(d.Port()))

	reg, err := client.NewLocal(d.Port()).Register(context.Background(), types.NodeRecord{
		Name:        "node1",
		Port:        9999,
		NodeType:    types.NodeTypeR3Normal,
		HighVersion: 5,
		LowVersion:  5,
	})
	require.NoError(t, err)
	defer reg.Close()

	code, out, _ := runCLI(t, "-port", port, "-names")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "up and running on port "+port)
	assert.Contains(t, out, "name node1 at port 9999\n")

	code, out, _ = runCLI(t, "-port", port, "-dump")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "name node1 at port 9999, creation ")
	assert.Contains(t, out, ", active\n")

	code, out, _ = runCLI(t, "-port", port, "-port2", "node1")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "name node1 at port 9999")

	code, out, _ = runCLI(t, "-port", port, "-port2", "ghost")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "no such node: ghost")

	code, out, _ = runCLI(t, "-port", port, "-kill")
	require.Equal(t, 0, code)
	assert.Equal(t, "Killing not allowed - living nodes in database.\n", out)

	code, out, _ = runCLI(t, "-port", port, "-stop", "ghost")
	require.Equal(t, 0, code)
	assert.Equal(t, "NOEXIST\n", out)

	code, out, _ = runCLI(t, "-port", port, "-stop", "node1")
	require.Equal(t, 0, code)
	assert.Equal(t, "STOPPED\n", out)

	code, out, _ = runCLI(t, "-port", port, "-kill")
	require.Equal(t, 0, code)
	assert.Equal(t, "Killed\n", out)
}

func TestRun_CommandNoDaemon(t *testing.T) {
	d := startDaemon(t)
	port := strconv.Itoa(int(d.Port()))
	require.NoError(t, d.Stop(context.Background()))

	code, _, errOut := runCLI(t, "-port", port, "-names")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "Cannot connect to local epmd")
}

func TestServe_PortInUse(t *testing.T) {
	d := startDaemon(t)

	f := mustParse(t, "-address", "127.0.0.1", "-port", strconv.Itoa(int(d.Port())))
	cfg, err := loadConfig(f, envFrom(nil))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = serve(ctx, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, epmd.ErrNoListeners)
}
