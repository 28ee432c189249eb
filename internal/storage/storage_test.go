package storage

import (
	"context"
	"testing"

	"github.com/techmaa/portal/config"
)

func TestOpenDisabled(t *testing.T) {
	backend, err := Open(context.Background(), config.Config{})
	if err != nil || backend != nil {
		t.Fatalf("Open(disabled) = %v, %v; want nil, nil", backend, err)
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), config.Config{ExportStorage: "ftp"}); err == nil {
		t.Fatalf("Open(ftp) error = nil, want error")
	}
}

func TestNewMinioClientValidation(t *testing.T) {
	tests := map[string]config.MinioConfig{
		"endpoint": {AccessKey: "a", SecretKey: "b", Bucket: "c"},
		"keys":     {Endpoint: "localhost:9000", Bucket: "c"},
		"bucket":   {Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"},
	}
	for name, cfg := range tests {
		if _, err := NewMinioClient(cfg); err == nil {
			t.Fatalf("NewMinioClient(missing %s) error = nil, want error", name)
		}
	}
}

func TestNewGCSClientRequiresBucket(t *testing.T) {
	if _, err := NewGCSClient(context.Background(), config.GCSConfig{}); err == nil {
		t.Fatalf("NewGCSClient() error = nil, want error")
	}
}
