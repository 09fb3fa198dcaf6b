package notify

// Publisher is the fire-and-forget notification boundary. Implementations
// must never block the caller or surface delivery failures; settlement
// correctness does not depend on a notification going out.
type Publisher interface {
	Publish(topic string, payload any)
}

// NopPublisher drops everything. Used where no transport is attached.
type NopPublisher struct{}

func (NopPublisher) Publish(topic string, payload any) {}
