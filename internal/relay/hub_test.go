package relay

import (
	"testing"
	"time"
)

func addClient(h *Hub, screenID string) *Client {
	c := &Client{Hub: h, Send: make(chan []byte, 1), ScreenID: screenID}
	if h.Screens[screenID] == nil {
		h.Screens[screenID] = make(map[*Client]bool)
	}
	h.Screens[screenID][c] = true
	return c
}

func TestTargetsAddressedScreen(t *testing.T) {
	h := NewHub()
	a := addClient(h, "screen-a")
	addClient(h, "screen-b")

	got := h.targets(&Event{Type: EVT_COLLAGE_READY, ScreenID: "screen-a"})
	if len(got) != 1 || got[0] != a {
		t.Errorf("addressed event reached %d clients, want just screen-a's", len(got))
	}
}

func TestTargetsBroadcastReachesAllScreens(t *testing.T) {
	h := NewHub()
	addClient(h, "screen-a")
	addClient(h, "screen-a")
	addClient(h, "screen-b")

	got := h.targets(&Event{Type: EVT_IMAGE_READY})
	if len(got) != 3 {
		t.Errorf("broadcast reached %d clients, want 3", len(got))
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	h := NewHub()
	go h.Run()

	c := &Client{Hub: h, Send: make(chan []byte, 1), ScreenID: "screen-a"}
	h.Register <- c

	deadline := time.After(time.Second)
	for {
		h.Mu.RLock()
		n := len(h.Screens["screen-a"])
		h.Mu.RUnlock()
		if n == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("client never registered")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	h.Unregister <- c
	for {
		h.Mu.RLock()
		_, ok := h.Screens["screen-a"]
		h.Mu.RUnlock()
		if !ok {
			break
		}
		select {
		case <-deadline:
			t.Fatal("client never unregistered")
		default:
			time.Sleep(time.Millisecond)
		}
	}
}
