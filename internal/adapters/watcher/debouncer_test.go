package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/droidnet/internal/adapters/watcher"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) record(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, paths)
}

func (r *recorder) get() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestDebouncer_Add_Coalesces(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/ws/dotnet/Library/Logger.cs")
		d.Add("/ws/dotnet/Library/Library.csproj")
		d.Add("/ws/dotnet/Library/Logger.cs")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, rec.get(), 1)
		assert.Equal(t, []string{"/ws/dotnet/Library/Library.csproj", "/ws/dotnet/Library/Logger.cs"}, rec.get()[0])
	})
}

func TestDebouncer_Add_TimerReset(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/ws/a.cs")
		time.Sleep(80 * time.Millisecond)
		d.Add("/ws/b.cs")
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, rec.get())

		time.Sleep(30 * time.Millisecond)
		synctest.Wait()
		require.Len(t, rec.get(), 1)
		assert.Equal(t, []string{"/ws/a.cs", "/ws/b.cs"}, rec.get()[0])
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(time.Hour, rec.record)

		d.Flush()
		assert.Empty(t, rec.get())

		d.Add("/ws/a.cs")
		d.Flush()
		require.Len(t, rec.get(), 1)

		time.Sleep(2 * time.Hour)
		synctest.Wait()
		assert.Len(t, rec.get(), 1)
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/ws/a.cs")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}

func TestDebouncer_MaxWait(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var rec recorder
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record, watcher.WithMaxWait(250*time.Millisecond))

		// A change every 60ms never leaves a quiet window.
		for range 5 {
			d.Add("/ws/dotnet/Library/Logger.cs")
			time.Sleep(60 * time.Millisecond)
		}
		synctest.Wait()
		require.Len(t, rec.get(), 1)

		d.Add("/ws/dotnet/Library/Library.csproj")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		require.Len(t, rec.get(), 2)
		assert.Equal(t, []string{"/ws/dotnet/Library/Library.csproj"}, rec.get()[1])
	})
}
