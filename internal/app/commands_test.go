package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/uniswap-dashboard-tui/internal/services"
)

func TestCommands_Tick(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.Tick(time.Millisecond) == nil {
		t.Error("Tick returned nil")
	}
	if cmds.DefaultTick() == nil {
		t.Error("DefaultTick returned nil")
	}
}

func TestCommands_Notifications(t *testing.T) {
	cmds := NewCommands(nil)

	tests := []struct {
		fn       func(string) tea.Cmd
		name     string
		want     NotificationType
		duration time.Duration
	}{
		{cmds.NotifySuccess, "Success", NotificationSuccess, DefaultNotificationDuration},
		{cmds.NotifyError, "Error", NotificationError, LongNotificationDuration},
		{cmds.NotifyWarning, "Warning", NotificationWarning, DefaultNotificationDuration},
		{cmds.NotifyInfo, "Info", NotificationInfo, QuickNotificationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.fn("msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration != tt.duration {
				t.Errorf("Duration = %v, want %v", addMsg.Duration, tt.duration)
			}
		})
	}
}

func TestCommands_ClearNotification(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.ClearNotification("id", time.Millisecond) == nil {
		t.Error("ClearNotification returned nil")
	}
}

func TestCommands_Quit(t *testing.T) {
	cmds := NewCommands(nil)
	msg := cmds.Quit()()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("Expected QuitMsg, got %T", msg)
	}
}

func TestCommands_Batch(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.Batch(cmds.Quit(), cmds.NotifyInfo("test")) == nil {
		t.Error("Batch returned nil")
	}
}

func TestWaitForServiceEventCmd_ClosedChannel(t *testing.T) {
	events := make(chan services.ServiceEvent)
	close(events)

	if msg := waitForServiceEventCmd(events)(); msg != nil {
		t.Errorf("closed channel should yield nil, got %T", msg)
	}
}

func TestWaitForServiceEventCmd_WrapsEvent(t *testing.T) {
	events := make(chan services.ServiceEvent, 1)
	events <- services.RefreshingEvent{}

	msg, ok := waitForServiceEventCmd(events)().(ServiceEventMsg)
	if !ok {
		t.Fatal("expected ServiceEventMsg")
	}
	if _, ok := msg.Event.(services.RefreshingEvent); !ok {
		t.Errorf("Event = %T, want RefreshingEvent", msg.Event)
	}
}
