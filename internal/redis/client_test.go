package redis

import (
	"os"
	"testing"
)

func TestNewClient_BadURL(t *testing.T) {
	if _, err := NewClient("not-a-redis-url"); err == nil {
		t.Error("NewClient() error = nil, want parse error")
	}
}

func TestNewClient(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("skip: TEST_REDIS_URL not set")
	}
	c, err := NewClient(url)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer c.Close()
}
