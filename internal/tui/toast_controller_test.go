package tui

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/tabula/internal/core/notify"
)

func TestToastController_Push(t *testing.T) {
	c := NewToastController()

	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "saved"})

	require.True(t, c.HasToasts())
	assert.Equal(t, "saved", c.Toasts()[0].notification.Message)
	assert.Equal(t, defaultToastTTL, c.Toasts()[0].remaining)
}

func TestToastController_Push_errors_linger(t *testing.T) {
	c := NewToastController()
	c.Push(notify.Notification{Level: notify.LevelError, Message: "boom"})
	assert.Equal(t, errorToastTTL, c.Toasts()[0].remaining)
}

func TestToastController_Push_evicts_oldest_at_max(t *testing.T) {
	c := NewToastController()

	for i := range defaultMaxToasts + 2 {
		c.Push(notify.Notification{Level: notify.LevelInfo, Message: fmt.Sprintf("msg %d", i)})
	}

	assert.Len(t, c.Toasts(), defaultMaxToasts)
	assert.Equal(t, "msg 2", c.Toasts()[0].notification.Message)
}

func TestToastController_Push_collapses_repeats(t *testing.T) {
	c := NewToastController()

	c.Push(notify.Notification{Level: notify.LevelWarning, Message: "changed on disk"})
	c.Tick(time.Second)
	c.Push(notify.Notification{Level: notify.LevelWarning, Message: "changed on disk"})

	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, 1, c.Toasts()[0].repeats)
	assert.Equal(t, defaultToastTTL, c.Toasts()[0].remaining, "repeat refreshes the TTL")

	c.Push(notify.Notification{Level: notify.LevelError, Message: "changed on disk"})
	assert.Len(t, c.Toasts(), 2, "different level stacks")
}

func TestToastController_Tick(t *testing.T) {
	c := NewToastController()
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "expires"})
	c.Push(notify.Notification{Level: notify.LevelError, Message: "survives"})

	c.Tick(defaultToastTTL)

	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, "survives", c.Toasts()[0].notification.Message)
	assert.Equal(t, errorToastTTL-defaultToastTTL, c.Toasts()[0].remaining)
}

func TestToastController_Dismiss(t *testing.T) {
	c := NewToastController()
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "first"})
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "second"})

	c.Dismiss()
	require.Len(t, c.Toasts(), 1)
	assert.Equal(t, "first", c.Toasts()[0].notification.Message)

	c.Dismiss()
	c.Dismiss()
	assert.False(t, c.HasToasts())
}

func TestToastView_View(t *testing.T) {
	c := NewToastController()
	v := NewToastView(c)
	assert.Empty(t, v.View())

	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "saved people.csv"})
	c.Push(notify.Notification{Level: notify.LevelInfo, Message: "saved people.csv"})

	out := v.View()
	assert.Contains(t, out, "saved people.csv (x2)")
}
