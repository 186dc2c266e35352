package mqtt

// Message is one message received from the broker.
type Message struct {
	Topic   string
	Payload []byte
}

// Handler consumes received messages. Handlers run on the client's network
// goroutine and must not block.
type Handler func(Message)

// Client is the broker surface the telemetry layer depends on.
type Client interface {
	// Publish sends the payload to the topic.
	Publish(topic string, qos byte, retained bool, payload []byte) error

	// Subscribe registers a handler for the topic filter. The subscription
	// survives reconnects.
	Subscribe(topic string, qos byte, h Handler) error

	// Unsubscribe removes the topic filters.
	Unsubscribe(topics ...string) error

	// Disconnect gracefully closes the connection.
	Disconnect()
}
