package notify

import (
	"sync"
	"time"
)

const defaultBuffer = 16

type Kind string

const (
	KindTrialEnded     Kind = "trial_ended"
	KindSessionExpired Kind = "session_expired"
	KindCaptureFailed  Kind = "capture_failed"
)

type Remediation string

const (
	RemediationNone                Remediation = ""
	RemediationOpenPrivacySettings Remediation = "open_privacy_settings"
)

// Notice is a user-facing message raised by a background component.
type Notice struct {
	Kind        Kind
	Message     string
	Remediation Remediation
	Err         error
	At          time.Time
}

// Bus fans notices out to every subscriber. Publish never blocks: a
// subscriber whose buffer is full misses the notice.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]chan Notice
	nextID      int
	buffer      int
	now         func() time.Time
}

func NewBus() *Bus {
	return &Bus{
		subscribers: map[int]chan Notice{},
		buffer:      defaultBuffer,
		now:         time.Now,
	}
}

// Subscribe returns a receive channel and a cancel func that closes it.
func (b *Bus) Subscribe() (<-chan Notice, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	channel := make(chan Notice, b.buffer)
	b.subscribers[id] = channel

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers, id)
			close(channel)
		})
	}

	return channel, cancel
}

func (b *Bus) Publish(notice Notice) {
	if b == nil {
		return
	}
	if notice.At.IsZero() {
		notice.At = b.now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, channel := range b.subscribers {
		select {
		case channel <- notice:
		default:
		}
	}
}
