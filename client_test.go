package sysprops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danmuck/sysprops/internal/propmsg"
	"github.com/danmuck/sysprops/internal/testutil/propsvc"
	"github.com/danmuck/sysprops/internal/testutil/testlog"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	testlog.Start(t)
	if cfg.SocketPath == "" {
		// Point at nothing so the transport fails fast instead of
		// touching the host's real property socket.
		cfg.SocketPath = filepath.Join(t.TempDir(), "no-service.sock")
	}
	if cfg.BuildPropPath == "" {
		cfg.BuildPropPath = filepath.Join(t.TempDir(), "no-build.prop")
	}
	if cfg.CmdlinePath == "" {
		cfg.CmdlinePath = filepath.Join(t.TempDir(), "no-cmdline")
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGetRejectsOversizedKeyBeforeIO(t *testing.T) {
	c := newTestClient(t, Config{})
	_, err := c.Get(context.Background(), strings.Repeat("k", NameMax), "def")
	require.ErrorIs(t, err, ErrNameTooLong)
}

func TestSetRejectsOversizedInputsBeforeIO(t *testing.T) {
	svc := propsvc.Start(t, propsvc.Options{})
	c := newTestClient(t, Config{SocketPath: svc.SocketPath()})

	err := c.Set(context.Background(), strings.Repeat("k", NameMax), "v")
	require.ErrorIs(t, err, ErrNameTooLong)
	err = c.Set(context.Background(), "ro.k", strings.Repeat("v", ValueMax))
	require.ErrorIs(t, err, ErrValueTooLong)

	// Neither call may have reached the socket.
	require.Empty(t, svc.Received())
}

func TestSetThenGetRoundTrip(t *testing.T) {
	svc := propsvc.Start(t, propsvc.Options{})
	c := newTestClient(t, Config{SocketPath: svc.SocketPath()})

	require.NoError(t, c.Set(context.Background(), "ro.test", "42"))

	value, err := c.Get(context.Background(), "ro.test", "fallback")
	require.NoError(t, err)
	require.Equal(t, "42", value)
}

func TestSetSucceedsAgainstSilentService(t *testing.T) {
	svc := propsvc.Start(t, propsvc.Options{Mute: true})
	c := newTestClient(t, Config{SocketPath: svc.SocketPath()})

	require.NoError(t, c.Set(context.Background(), "ro.silent", "ok"))
	received := svc.Received()
	require.Len(t, received, 1)
	require.Equal(t, propmsg.CmdSet, received[0].Cmd)
}

func TestSetFailsWhenServiceUnreachable(t *testing.T) {
	c := newTestClient(t, Config{})
	require.Error(t, c.Set(context.Background(), "ro.test", "42"))
}

func TestGetEmptyServiceValueUsesDefault(t *testing.T) {
	svc := propsvc.Start(t, propsvc.Options{})
	c := newTestClient(t, Config{SocketPath: svc.SocketPath()})

	value, err := c.Get(context.Background(), "ro.unset", "def")
	require.NoError(t, err)
	require.Equal(t, "def", value)

	value, err = c.Get(context.Background(), "ro.unset", "")
	require.NoError(t, err)
	require.Equal(t, "", value)
}

func TestGetFallsBackToBuildProp(t *testing.T) {
	c := newTestClient(t, Config{
		BuildPropPath: writeFile(t, "build.prop", "ro.foo=bar\nro.baz=qux\n"),
	})

	value, err := c.Get(context.Background(), "ro.foo", "")
	require.NoError(t, err)
	require.Equal(t, "bar", value)
}

func TestGetFallsBackToKernelCmdline(t *testing.T) {
	c := newTestClient(t, Config{
		BuildPropPath: writeFile(t, "build.prop", "ro.other=x\n"),
		CmdlinePath:   writeFile(t, "cmdline", "console=ttyS0 androidboot.hardware=myboard"),
	})

	value, err := c.Get(context.Background(), "ro.hardware", "")
	require.NoError(t, err)
	require.Equal(t, "myboard", value)
}

func TestGetFileBeatsCmdline(t *testing.T) {
	c := newTestClient(t, Config{
		BuildPropPath: writeFile(t, "build.prop", "ro.hardware=fromfile\n"),
		CmdlinePath:   writeFile(t, "cmdline", "androidboot.hardware=fromcmdline"),
	})

	value, err := c.Get(context.Background(), "ro.hardware", "")
	require.NoError(t, err)
	require.Equal(t, "fromfile", value)
}

func TestGetUnresolvedReturnsDefault(t *testing.T) {
	c := newTestClient(t, Config{})

	value, err := c.Get(context.Background(), "ro.nowhere", "exact-default")
	require.NoError(t, err)
	require.Equal(t, "exact-default", value)

	value, err = c.Get(context.Background(), "ro.nowhere", "")
	require.NoError(t, err)
	require.Zero(t, len(value))
}

func TestGetSilentServiceFallsBack(t *testing.T) {
	svc := propsvc.Start(t, propsvc.Options{Mute: true})
	c := newTestClient(t, Config{
		SocketPath:    svc.SocketPath(),
		BuildPropPath: writeFile(t, "build.prop", "ro.foo=bar\n"),
	})

	// The service accepts the GET but never replies; an unconfirmed
	// read is not trustworthy, so the chain advances to the file.
	value, err := c.Get(context.Background(), "ro.foo", "")
	require.NoError(t, err)
	require.Equal(t, "bar", value)
}

func TestListVisitsEveryEntryInOrder(t *testing.T) {
	entries := []propmsg.Message{
		{Name: "ro.a", Value: "1"},
		{Name: "ro.b", Value: "2"},
		{Name: "ro.c", Value: "3"},
	}
	svc := propsvc.Start(t, propsvc.Options{ListEntries: entries})
	c := newTestClient(t, Config{SocketPath: svc.SocketPath()})

	var got []string
	require.NoError(t, c.List(context.Background(), func(name, value string) {
		got = append(got, name+"="+value)
	}))
	require.Equal(t, []string{"ro.a=1", "ro.b=2", "ro.c=3"}, got)
}

func TestListUnreachableServiceFailsWithoutVisits(t *testing.T) {
	c := newTestClient(t, Config{})

	visited := 0
	err := c.List(context.Background(), func(string, string) { visited++ })
	require.Error(t, err)
	require.Zero(t, visited)
}

func TestListSilentServiceFails(t *testing.T) {
	svc := propsvc.Start(t, propsvc.Options{Mute: true})
	c := newTestClient(t, Config{SocketPath: svc.SocketPath()})

	err := c.List(context.Background(), func(string, string) {})
	require.ErrorIs(t, err, ErrNoReply)
}

func TestConcurrentSetsDoNotInterleave(t *testing.T) {
	svc := propsvc.Start(t, propsvc.Options{Mute: true})
	c := newTestClient(t, Config{SocketPath: svc.SocketPath()})

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Set(context.Background(), fmt.Sprintf("ro.conc.%d", i), fmt.Sprintf("v%d", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "set %d", i)
	}

	received := svc.Received()
	require.Len(t, received, n)
	for _, msg := range received {
		require.Equal(t, propmsg.CmdSet, msg.Cmd)
		var i int
		_, err := fmt.Sscanf(msg.Name, "ro.conc.%d", &i)
		require.NoError(t, err, "corrupt record name %q", msg.Name)
		require.Equal(t, fmt.Sprintf("v%d", i), msg.Value, "corrupt record for %s", msg.Name)
	}
}
