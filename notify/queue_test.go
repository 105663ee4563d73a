package notify_test

import (
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive

	"email-designer/notify"
)

func TestNotifyVisible(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(time.Hour)

	q.Notify("saved")

	n := q.Current()
	g.Expect(n.Visible).To(BeTrue())
	g.Expect(n.Message).To(Equal("saved"))
	g.Expect(n.Level).To(Equal(notify.LevelSuccess))
}

func TestNewNotificationPreemptsOld(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(time.Hour)

	var mu sync.Mutex
	var seen []string
	q.Subscribe(func(n notify.Notification) {
		mu.Lock()
		defer mu.Unlock()
		if n.Visible {
			seen = append(seen, n.Message)
		}
	})

	q.Notify("A")
	q.Notify("B")

	g.Expect(q.Current().Message).To(Equal("B"))
	g.Expect(q.Current().Visible).To(BeTrue())
	mu.Lock()
	defer mu.Unlock()
	g.Expect(seen).To(Equal([]string{"A", "B"}), "A must never be shown after B")
}

func TestAutoHide(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(30 * time.Millisecond)

	q.Notify("bye")
	g.Expect(q.Current().Visible).To(BeTrue())
	g.Eventually(func() bool { return q.Current().Visible }).
		WithTimeout(time.Second).WithPolling(5 * time.Millisecond).
		Should(BeFalse())
	g.Expect(q.Current().Message).To(Equal("bye"))
}

func TestRestartTimerOnNewNotification(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(80 * time.Millisecond)

	q.Notify("A")
	time.Sleep(50 * time.Millisecond)
	q.Notify("B")

	// A's timer would have fired around now; B must still be showing.
	g.Consistently(func() string {
		n := q.Current()
		if !n.Visible {
			return ""
		}
		return n.Message
	}).WithTimeout(50 * time.Millisecond).WithPolling(5 * time.Millisecond).
		Should(Equal("B"))

	g.Eventually(func() bool { return q.Current().Visible }).
		WithTimeout(time.Second).Should(BeFalse())
}

func TestDismiss(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(time.Hour)

	hides := 0
	q.Subscribe(func(n notify.Notification) {
		if !n.Visible {
			hides++
		}
	})

	q.Notify("x")
	q.Dismiss()
	g.Expect(q.Current().Visible).To(BeFalse())

	// Dismissing an already hidden slot is a no-op.
	q.Dismiss()
	g.Expect(hides).To(Equal(1))
}

func TestDismissCancelsTimer(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(20 * time.Millisecond)

	events := make(chan notify.Notification, 10)
	q.Subscribe(func(n notify.Notification) { events <- n })

	q.Notify("x")
	q.Dismiss()
	<-events // show
	<-events // hide

	g.Consistently(events).WithTimeout(60 * time.Millisecond).ShouldNot(Receive())
}

func TestIDsIncrease(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(time.Hour)
	q.Notify("a")
	first := q.Current().ID
	q.Notify("a")
	g.Expect(q.Current().ID).To(BeNumerically(">", first))
}

func TestUnsubscribe(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(time.Hour)
	calls := 0
	cancel := q.Subscribe(func(notify.Notification) { calls++ })
	q.Notify("a")
	cancel()
	q.Notify("b")
	g.Expect(calls).To(Equal(1))
}

func TestDefaultTTL(t *testing.T) {
	g := NewWithT(t)
	g.Expect(notify.DefaultTTL).To(Equal(3 * time.Second))
}

func TestNotifyLevel(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(time.Hour)
	q.NotifyLevel(notify.LevelError, "storage failed")
	g.Expect(q.Current()).To(And(
		HaveField("Level", notify.LevelError),
		HaveField("Message", "storage failed"),
		HaveField("Visible", true),
	))
}

func TestSlowObserverSeesChangesInOrder(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(20 * time.Millisecond)

	var mu sync.Mutex
	var events []notify.Notification
	deliveringA := make(chan struct{})
	q.Subscribe(func(n notify.Notification) {
		if n.Visible && n.Message == "A" {
			close(deliveringA)
			// A's timer fires while A is still being delivered.
			time.Sleep(50 * time.Millisecond)
		}
		mu.Lock()
		defer mu.Unlock()
		events = append(events, n)
	})
	snapshot := func() []notify.Notification {
		mu.Lock()
		defer mu.Unlock()
		return append([]notify.Notification(nil), events...)
	}

	go q.Notify("A")
	<-deliveringA
	q.Notify("B")
	b := q.Current()
	g.Expect(b.Message).To(Equal("B"))

	// B's own timer hides it last.
	g.Eventually(func() notify.Notification {
		got := snapshot()
		if len(got) == 0 {
			return notify.Notification{}
		}
		return got[len(got)-1]
	}).Should(And(HaveField("ID", b.ID), HaveField("Visible", false)))

	var shown []string
	afterB := false
	for _, n := range snapshot() {
		if n.Visible {
			shown = append(shown, n.Message)
		}
		if n.ID == b.ID && n.Visible {
			afterB = true
			continue
		}
		if afterB {
			g.Expect(n.ID).To(Equal(b.ID), "event for %q delivered after B", n.Message)
		}
	}
	g.Expect(shown).To(Equal([]string{"A", "B"}), "A must never be shown after B")
}

func TestDeliveryFollowsCurrent(t *testing.T) {
	g := NewWithT(t)
	q := notify.NewQueue(time.Hour)

	var mu sync.Mutex
	var last notify.Notification
	q.Subscribe(func(n notify.Notification) {
		if n.Message == "slow" {
			time.Sleep(5 * time.Millisecond)
		}
		mu.Lock()
		defer mu.Unlock()
		last = n
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				q.Notify("slow")
			} else {
				q.Notify("fast")
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	g.Expect(last).To(Equal(q.Current()), "observer's last view must match the slot")
}
