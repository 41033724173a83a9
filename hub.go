package eeg

// BroadcastHub is the interface the websocket-framing sink posts binary
// frames and meta_update messages to. internal/broadcast.Hub implements
// it; tests can substitute a fake to observe published frames directly.
type BroadcastHub interface {
	Publish(topic string, frame []byte)
	Subscribe(topic string, buffer int) <-chan []byte
	Unsubscribe(topic string, ch <-chan []byte)
}
