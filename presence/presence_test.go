package presence

import (
	"fmt"
	"slices"
	"sync"
	"testing"
)

func TestTracker(t *testing.T) {
	tr := NewTracker()

	if tr.IsOnline("u1") {
		t.Error("u1 online before connect")
	}

	tr.Connect("u1")
	if !tr.IsOnline("u1") {
		t.Error("u1 offline after connect")
	}

	tr.Connect("u2")
	got := tr.OnlineUsers()
	slices.Sort(got)
	if want := []string{"u1", "u2"}; !slices.Equal(got, want) {
		t.Errorf("online users = %v, want %v", got, want)
	}

	tr.Disconnect("u1")
	if tr.IsOnline("u1") {
		t.Error("u1 online after disconnect")
	}
	if !tr.IsOnline("u2") {
		t.Error("u2 went offline with u1's disconnect")
	}
}

func TestTracker_DisconnectAbsent(t *testing.T) {
	tr := NewTracker()

	// Must not panic or affect anyone else.
	tr.Disconnect("ghost")

	tr.Connect("u1")
	tr.Disconnect("ghost")
	if !tr.IsOnline("u1") {
		t.Error("u1 offline after unrelated disconnect")
	}
}

func TestTracker_ConcurrentLifecycle(t *testing.T) {
	tr := NewTracker()

	const users = 64
	const rounds = 100

	var wg sync.WaitGroup
	for i := range users {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			for range rounds {
				tr.Connect(userID)
				if !tr.IsOnline(userID) {
					t.Errorf("%s offline between connect and disconnect", userID)
					return
				}
				tr.Disconnect(userID)
				if tr.IsOnline(userID) {
					t.Errorf("%s online after disconnect", userID)
					return
				}
			}
		}(fmt.Sprintf("user-%d", i))
	}
	wg.Wait()

	if n := tr.OnlineCount(); n != 0 {
		t.Errorf("online count = %d after all disconnects, want 0", n)
	}
}
