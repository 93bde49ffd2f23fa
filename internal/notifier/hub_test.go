package notifier

import (
	"sync"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHub_DeliversInSubscriptionOrder(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	var mu sync.Mutex
	var order []string

	hub.Subscribe(func(c Change) {
		mu.Lock()
		order = append(order, "first")
		mu.Unlock()
	})
	hub.Subscribe(func(c Change) {
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
	})
	hub.Subscribe(func(c Change) {
		mu.Lock()
		order = append(order, "third")
		mu.Unlock()
	})

	hub.Publish(Change{Seq: 1, Kind: ChangeRegistered})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	want := []string{"first", "second", "third"}
	for i, name := range want {
		if order[i] != name {
			t.Errorf("delivery %d: expected %s, got %s", i, name, order[i])
		}
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	var mu sync.Mutex
	var got []int64

	token := hub.Subscribe(func(c Change) {
		mu.Lock()
		got = append(got, c.Seq)
		mu.Unlock()
	})

	hub.Publish(Change{Seq: 1, Kind: ChangeRegistered})
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	})

	hub.Unsubscribe(token)
	hub.Publish(Change{Seq: 2, Kind: ChangeRegistered})

	// Give the dispatcher a moment; the second change must not arrive.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("expected only seq 1 delivered, got %v", got)
	}
}

func TestHub_PanickingSubscriberIsIsolated(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	delivered := make(chan int64, 1)

	hub.Subscribe(func(c Change) {
		panic("subscriber blew up")
	})
	hub.Subscribe(func(c Change) {
		delivered <- c.Seq
	})

	hub.Publish(Change{Seq: 7, Kind: ChangeCheckedIn})

	select {
	case seq := <-delivered:
		if seq != 7 {
			t.Errorf("expected seq 7, got %d", seq)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second subscriber never ran after first panicked")
	}
}

func TestHub_PublishDoesNotWaitForSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	gate := make(chan struct{})
	done := make(chan struct{})

	hub.Subscribe(func(c Change) {
		<-gate
		close(done)
	})

	// Publish must return while the subscriber is still blocked.
	hub.Publish(Change{Seq: 1, Kind: ChangeRegistered})

	select {
	case <-done:
		t.Fatal("subscriber completed before gate opened")
	default:
	}

	close(gate)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber never ran")
	}
}

func TestHub_CloseDrainsQueue(t *testing.T) {
	hub := NewHub()

	var mu sync.Mutex
	count := 0
	hub.Subscribe(func(c Change) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 1; i <= 10; i++ {
		hub.Publish(Change{Seq: int64(i), Kind: ChangeNotesUpdated})
	}
	hub.Close()

	mu.Lock()
	defer mu.Unlock()
	if count != 10 {
		t.Errorf("expected 10 deliveries after Close, got %d", count)
	}

	// Publishing after Close is a no-op, not a panic.
	hub.Publish(Change{Seq: 11, Kind: ChangeNotesUpdated})
}

func TestHub_PublishDuringClose(t *testing.T) {
	// However Publish interleaves with Close, a losing publish is dropped,
	// never a send on the closed queue.
	for round := 0; round < 200; round++ {
		hub := NewHub()
		hub.Subscribe(func(Change) {})

		var wg sync.WaitGroup
		start := make(chan struct{})
		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for seq := 1; seq <= 20; seq++ {
					hub.Publish(Change{Seq: int64(seq), Kind: ChangeRegistered})
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			hub.Close()
		}()

		close(start)
		wg.Wait()
	}
}
