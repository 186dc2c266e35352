package mqtt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/shipmind-ai/shipmind/core/mqtt"
	coremon "github.com/shipmind-ai/shipmind/core/monitoring"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func withFake(t *testing.T) *fakePaho {
	t.Helper()
	fc := &fakePaho{connected: true}
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { fc.opts = o; return fc }
	t.Cleanup(func() {
		newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) }
	})
	return fc
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestLoadTLSConfigMissingFiles(t *testing.T) {
	cfg := Config{UseTLS: true}
	if _, err := cfg.LoadTLSConfig(); err == nil {
		t.Fatalf("expected error without cert paths")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestLWTConfigured(t *testing.T) {
	fc := withFake(t)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !fc.opts.WillEnabled {
		t.Fatalf("will not enabled")
	}
	if fc.opts.WillTopic != "lwt" || string(fc.opts.WillPayload) != "bye" {
		t.Fatalf("will options incorrect")
	}
	cli.Disconnect()
	if len(fc.published) != 0 {
		t.Fatalf("unexpected publish on disconnect")
	}
}

func TestPublishRetries(t *testing.T) {
	fc := withFake(t)
	fc.publishErrs = []error{fmt.Errorf("net fail"), nil}
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Publish("fleet/reports", 1, false, []byte("x")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(fc.published) != 2 {
		t.Fatalf("expected a retry, got %d attempts", len(fc.published))
	}
	if fc.published[0].qos != 1 {
		t.Fatalf("publish qos not applied")
	}
}

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Flush(time.Duration) {}

func TestPublishFailureCaptured(t *testing.T) {
	fc := withFake(t)
	fc.publishErrs = []error{fmt.Errorf("net fail"), fmt.Errorf("net fail")}
	mon := &recordMonitor{}
	coremon.Init(mon)
	defer coremon.Init(coremon.NopMonitor{})

	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Publish("fleet/reports", 0, false, []byte("x")); err == nil {
		t.Fatalf("expected error")
	}
	if mon.err == nil {
		t.Fatalf("error not captured")
	}
	if mon.tags["module"] != "mqtt" || mon.tags["topic"] != "fleet/reports" {
		t.Fatalf("tags not set: %v", mon.tags)
	}
}

func TestSubscribeResubscribesOnReconnect(t *testing.T) {
	fc := withFake(t)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id"}
	cli, err := NewPahoClient(cfg)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Subscribe("fleet/+/telemetry", 1, func(coremqtt.Message) {}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if len(fc.subscribed) != 1 || fc.subscribed[0].topic != "fleet/+/telemetry" || fc.subscribed[0].qos != 1 {
		t.Fatalf("subscription not forwarded: %+v", fc.subscribed)
	}

	// Simulate a reconnect: the tracked subscription must be restored.
	fc.opts.OnConnect(fc)
	if len(fc.subscribed) != 2 || fc.subscribed[1].topic != "fleet/+/telemetry" {
		t.Fatalf("subscription not restored: %+v", fc.subscribed)
	}
}

func TestUnsubscribeDropsFromReconnectSet(t *testing.T) {
	fc := withFake(t)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if err := cli.Subscribe("fleet/health/request", 0, func(coremqtt.Message) {}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := cli.Unsubscribe("fleet/health/request"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	before := len(fc.subscribed)
	fc.opts.OnConnect(fc)
	if len(fc.subscribed) != before {
		t.Fatalf("unsubscribed topic restored on reconnect")
	}
}

func TestSubscribedHandlerReceivesMessages(t *testing.T) {
	fc := withFake(t)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	var got coremqtt.Message
	if err := cli.Subscribe("fleet/mv-a/telemetry", 0, func(m coremqtt.Message) { got = m }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	fc.deliver("fleet/mv-a/telemetry", []byte(`{"speed":12}`))
	if got.Topic != "fleet/mv-a/telemetry" || string(got.Payload) != `{"speed":12}` {
		t.Fatalf("handler not routed: %+v", got)
	}
}

func TestOperationsRequireConnection(t *testing.T) {
	fc := withFake(t)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id"})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	fc.connected = false
	if err := cli.Publish("t", 0, false, nil); !errors.Is(err, coremqtt.ErrNotConnected) {
		t.Fatalf("publish: %v", err)
	}
	if err := cli.Subscribe("t", 0, func(coremqtt.Message) {}); !errors.Is(err, coremqtt.ErrNotConnected) {
		t.Fatalf("subscribe: %v", err)
	}
	if err := cli.Unsubscribe("t"); !errors.Is(err, coremqtt.ErrNotConnected) {
		t.Fatalf("unsubscribe: %v", err)
	}
}

// fakePaho implements pahoClient for tests
type fakePaho struct {
	opts       *paho.ClientOptions
	connected  bool
	subscribed []struct {
		topic string
		qos   byte
	}
	published []struct {
		topic string
		qos   byte
	}
	publishErrs []error
	handlers    map[string]paho.MessageHandler
}

func (m *fakePaho) IsConnected() bool { return m.connected }
func (m *fakePaho) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *fakePaho) Disconnect(uint) {}
func (m *fakePaho) Publish(topic string, qos byte, _ bool, _ interface{}) paho.Token {
	m.published = append(m.published, struct {
		topic string
		qos   byte
	}{topic, qos})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *fakePaho) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	m.subscribed = append(m.subscribed, struct {
		topic string
		qos   byte
	}{topic, qos})
	if m.handlers == nil {
		m.handlers = make(map[string]paho.MessageHandler)
	}
	m.handlers[topic] = cb
	return &dummyToken{}
}
func (m *fakePaho) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *fakePaho) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *fakePaho) AddRoute(string, paho.MessageHandler)    {}
func (m *fakePaho) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *fakePaho) IsConnectionOpen() bool                  { return m.connected }

func (m *fakePaho) deliver(topic string, payload []byte) {
	if cb, ok := m.handlers[topic]; ok {
		cb(m, fakeMessage{topic: topic, p: payload})
	}
}

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }

type fakeMessage struct {
	topic string
	p     []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 0 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 0 }
func (m fakeMessage) Payload() []byte   { return m.p }
func (m fakeMessage) Ack()              {}
