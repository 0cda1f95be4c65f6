package extensions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	singleton "github.com/pumped-fn/singleton-go"
)

func TestDebugExtension_OnError(t *testing.T) {
	var buf bytes.Buffer
	ext := NewDebugExtension(NewHumanHandler(&buf, slog.LevelError))

	reg := singleton.NewRegistry(singleton.WithRegistryExtension(ext))
	defer reg.Dispose()

	_, err := singleton.Register(reg, serviceFactory(), 1, singleton.WithName("storage"))
	require.NoError(t, err)

	_, err = singleton.Register(reg, func(int) (*service, error) {
		return nil, errors.New("storage not ready")
	}, 2, singleton.WithName("users"))
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "[Debug] Construction Error")
	assert.Contains(t, out, "Singleton: users")
	assert.Contains(t, out, "Error: storage not ready")
	assert.Contains(t, out, "Operation: create (attempt 1)")
	assert.Contains(t, out, "storage ✓ (inits=1)")
	assert.Contains(t, out, "users ❌")
}

func TestDebugExtension_Render(t *testing.T) {
	ext := NewDebugExtension(NewSilentHandler())

	m, err := singleton.Create(serviceFactory(), 1,
		singleton.WithName("svc"),
		singleton.WithExtension(ext),
	)
	require.NoError(t, err)

	assert.Contains(t, ext.Render(), "svc ✓ (inits=1)")

	m.DestroyInstance()
	assert.Contains(t, ext.Render(), "svc ○ (inits=1)")
}

func TestHumanHandler_DefaultFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHumanHandler(&buf, slog.LevelInfo))

	logger.Debug("hidden")
	logger.Info("instance destroyed", "singleton", "svc")

	assert.Equal(t, "[INFO] instance destroyed\n  singleton: svc\n", buf.String())
}

func TestSilentHandler(t *testing.T) {
	h := NewSilentHandler()
	assert.False(t, h.Enabled(context.Background(), slog.LevelError))
	assert.False(t, h.WithGroup("g").Enabled(context.Background(), slog.LevelError))
	assert.False(t, h.WithAttrs([]slog.Attr{slog.String("k", "v")}).Enabled(context.Background(), slog.LevelError))
}

func TestDebugExtension_SharedAcrossGuardedManagers(t *testing.T) {
	ext := NewDebugExtension(NewSilentHandler())
	reg := singleton.NewRegistry(singleton.WithRegistryExtension(ext))
	defer reg.Dispose()

	busy, err := singleton.RegisterGuarded(reg, serviceFactory(), 1, singleton.WithName("busy"))
	require.NoError(t, err)

	var fail atomic.Bool
	flaky, err := singleton.RegisterGuarded(reg, func(id int) (*service, error) {
		if fail.Load() {
			return nil, errors.New("flaky down")
		}
		return &service{id: id}, nil
	}, 2, singleton.WithName("flaky"))
	require.NoError(t, err)
	fail.Store(true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				busy.DestroyInstance()
				_, _ = busy.GetInstance()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = flaky.ResetInstance()
				_ = ext.Render()
			}
		}()
	}
	wg.Wait()

	out := ext.Render()
	assert.Contains(t, out, fmt.Sprintf("busy ✓ (inits=%d)", busy.InitCount()))
	assert.Contains(t, out, "flaky ❌ (inits=1, error: flaky down)")
}

func TestDebugExtension_FailedResetKeepsSnapshot(t *testing.T) {
	ext := NewDebugExtension(NewSilentHandler())

	fail := false
	m, err := singleton.Create(func(id int) (*service, error) {
		if fail {
			return nil, errors.New("no")
		}
		return &service{id: id}, nil
	}, 1, singleton.WithName("svc"), singleton.WithExtension(ext))
	require.NoError(t, err)
	_, err = m.ResetInstance()
	require.NoError(t, err)

	fail = true
	_, err = m.ResetInstance()
	require.Error(t, err)

	assert.Contains(t, ext.Render(), "svc ❌ (inits=2, error: no)")
	assert.True(t, m.Present())
	assert.Equal(t, 2, m.InitCount())
}

func TestRenderRegistry(t *testing.T) {
	reg := singleton.NewRegistry()

	_, err := singleton.Register(reg, serviceFactory(), 1, singleton.WithName("alpha"))
	require.NoError(t, err)
	beta, err := singleton.Register(reg, serviceFactory(), 2, singleton.WithName("beta"))
	require.NoError(t, err)
	_, err = beta.ResetInstance()
	require.NoError(t, err)
	beta.DestroyInstance()

	out := RenderRegistry(reg)
	assert.Contains(t, out, "registry")
	assert.Contains(t, out, "alpha ✓ (inits=1)")
	assert.Contains(t, out, "beta ○ (inits=2)")
}

func TestRenderRegistry_Empty(t *testing.T) {
	assert.Contains(t, RenderRegistry(singleton.NewRegistry()), "(empty)")
}
