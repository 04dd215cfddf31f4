package storage

import (
	"testing"

	"github.com/nurpe/snowops-contracts/internal/config"
)

func TestObjectKey(t *testing.T) {
	got := ObjectKey("tenant", "contract", 3)
	if got != "tenant/contract/v3.pdf" {
		t.Fatalf("ObjectKey() = %q", got)
	}
}

func TestNewMinioStore(t *testing.T) {
	store, err := NewMinioStore(config.StorageConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio123",
		Bucket:    "contracts",
	})
	if err != nil {
		t.Fatalf("NewMinioStore() error = %v", err)
	}
	if store.expiry.Hours() != 24 {
		t.Fatalf("default expiry = %s", store.expiry)
	}
	if store.bucket != "contracts" {
		t.Fatalf("bucket = %q", store.bucket)
	}
}
