package telemetry_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/adapters/telemetry"
)

type chunks struct {
	mu  sync.Mutex
	got []string
}

func (c *chunks) add(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.got = append(c.got, string(data))
}

func (c *chunks) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.got
}

func TestLogBatcher_FlushesOnSize(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c chunks
		b := telemetry.NewLogBatcher(8, time.Hour, c.add)
		defer b.Close()

		_, err := b.Write([]byte("1234"))
		require.NoError(t, err)
		assert.Empty(t, c.all())

		_, err = b.Write([]byte("5678"))
		require.NoError(t, err)
		assert.Equal(t, []string{"12345678"}, c.all())
	})
}

func TestLogBatcher_FlushesOnInterval(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c chunks
		b := telemetry.NewLogBatcher(0, 0, c.add)
		defer b.Close()

		_, err := b.Write([]byte("compiling main.less\n"))
		require.NoError(t, err)

		time.Sleep(telemetry.DefaultTimeLimit + time.Millisecond)
		synctest.Wait()
		assert.Equal(t, []string{"compiling main.less\n"}, c.all())
	})
}

func TestLogBatcher_CloseFlushes(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var c chunks
		b := telemetry.NewLogBatcher(0, time.Hour, c.add)

		_, err := b.Write([]byte("tail"))
		require.NoError(t, err)
		require.NoError(t, b.Close())
		require.NoError(t, b.Close())
		assert.Equal(t, []string{"tail"}, c.all())

		_, err = b.Write([]byte("late"))
		require.Error(t, err)
		b.Flush()
		assert.Len(t, c.all(), 1)
	})
}
