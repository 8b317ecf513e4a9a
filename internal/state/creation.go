package state

import "sync"

// CreationPhase is the lifecycle of an asynchronous create flow.
// Only a create call moves it out of idle; Succeeded and Failed are
// terminal until the next create or an explicit Reset.
type CreationPhase int

const (
	CreationIdle CreationPhase = iota
	CreationInProgress
	CreationSucceeded
	CreationFailed
)

func (p CreationPhase) String() string {
	switch p {
	case CreationIdle:
		return "idle"
	case CreationInProgress:
		return "in progress"
	case CreationSucceeded:
		return "succeeded"
	case CreationFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Creation tracks one create flow for UI feedback. The same type is
// shared by link creation, domain creation and registration; nothing
// but the UI layer inspects it.
type Creation struct {
	mu      sync.Mutex
	phase   CreationPhase
	message string
}

// Phase returns the current lifecycle phase.
func (c *Creation) Phase() CreationPhase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Message returns the failure message recorded by the last failed
// create, or "".
func (c *Creation) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Reset returns the machine to idle. The UI calls this when a
// creation dialog opens or closes so stale banners do not reappear.
func (c *Creation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = CreationIdle
	c.message = ""
}

func (c *Creation) begin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = CreationInProgress
	c.message = ""
}

func (c *Creation) succeed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = CreationSucceeded
}

func (c *Creation) fail(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phase = CreationFailed
	c.message = message
}
