package mqtt

import (
	"fmt"
	"strings"
	"sync"

	coremqtt "github.com/shipmind-ai/shipmind/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockClient is an in-memory broker substitute for tests. Publish delivers
// synchronously to subscribers whose filter matches the topic.
type MockClient struct {
	mu         sync.Mutex
	subs       map[string]subscription
	published  []coremqtt.Message
	failTopics map[string]bool
	connected  bool
}

// NewMockClient creates a connected MockClient.
func NewMockClient() *MockClient {
	return &MockClient{
		subs:       make(map[string]subscription),
		failTopics: make(map[string]bool),
		connected:  true,
	}
}

// FailTopic makes future publishes to the topic return an error.
func (m *MockClient) FailTopic(topic string) {
	m.mu.Lock()
	m.failTopics[topic] = true
	m.mu.Unlock()
}

// Published returns a copy of every message published so far.
func (m *MockClient) Published() []coremqtt.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]coremqtt.Message(nil), m.published...)
}

func (m *MockClient) Publish(topic string, _ byte, _ bool, payload []byte) error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return coremqtt.ErrNotConnected
	}
	if m.failTopics[topic] {
		m.mu.Unlock()
		return fmt.Errorf("publish to %s failed", topic)
	}
	msg := coremqtt.Message{Topic: topic, Payload: append([]byte(nil), payload...)}
	m.published = append(m.published, msg)
	var handlers []coremqtt.Handler
	for filter, sub := range m.subs {
		if TopicMatches(filter, topic) {
			handlers = append(handlers, sub.handler)
		}
	}
	m.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (m *MockClient) Subscribe(topic string, qos byte, h coremqtt.Handler) error {
	if h == nil {
		return fmt.Errorf("mqtt: nil handler for %s", topic)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return coremqtt.ErrNotConnected
	}
	m.subs[topic] = subscription{qos: qos, handler: h}
	return nil
}

func (m *MockClient) Unsubscribe(topics ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range topics {
		delete(m.subs, t)
	}
	return nil
}

func (m *MockClient) Disconnect() {
	m.mu.Lock()
	m.connected = false
	m.mu.Unlock()
}

// TopicMatches reports whether an MQTT topic filter matches a concrete topic.
// It supports the single-level + wildcard and a trailing multi-level #.
func TopicMatches(filter, topic string) bool {
	fparts := strings.Split(filter, "/")
	tparts := strings.Split(topic, "/")
	for i, part := range fparts {
		if part == "#" {
			return i == len(fparts)-1
		}
		if i >= len(tparts) {
			return false
		}
		if part != "+" && part != tparts[i] {
			return false
		}
	}
	return len(fparts) == len(tparts)
}
