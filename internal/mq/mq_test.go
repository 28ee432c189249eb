package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/techmaa/portal/config"
)

func TestOpenWithoutBroker(t *testing.T) {
	for _, backend := range []string{"", "log", "SMTP"} {
		cfg := config.Config{Notify: config.NotifyConfig{Backend: backend}}
		b, err := Open(context.Background(), cfg)
		if err != nil || b != nil {
			t.Fatalf("Open(%q) = %v, %v; want nil, nil", backend, b, err)
		}
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	cfg := config.Config{Notify: config.NotifyConfig{Backend: "carrier-pigeon"}}
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("Open() error = nil, want error")
	}
}

func TestOpenRequiresBrokerSettings(t *testing.T) {
	cfg := config.Config{Notify: config.NotifyConfig{Backend: "rabbitmq"}}
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("Open(rabbitmq without url) error = nil, want error")
	}
	cfg = config.Config{Notify: config.NotifyConfig{Backend: "pubsub"}}
	if _, err := Open(context.Background(), cfg); err == nil {
		t.Fatalf("Open(pubsub without project) error = nil, want error")
	}
}

func TestTableToAttributes(t *testing.T) {
	attrs := tableToAttributes(amqp.Table{
		"kind":    "otp",
		"raw":     []byte("bytes"),
		"attempt": int32(2),
	})
	if attrs["kind"] != "otp" || attrs["raw"] != "bytes" || attrs["attempt"] != "2" {
		t.Fatalf("tableToAttributes() = %v", attrs)
	}
	if tableToAttributes(nil) != nil {
		t.Fatalf("tableToAttributes(nil) != nil")
	}
}
