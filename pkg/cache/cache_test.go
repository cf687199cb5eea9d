package cache

import (
	"context"
	"testing"
	"time"
)

func TestFileCache_SetGet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Get returned miss after Set")
	}
	if string(data) != "value" {
		t.Errorf("Get = %q, want %q", data, "value")
	}
}

func TestFileCache_Miss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}

	_, ok, err := c.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Get of absent key returned a hit")
	}
}

func TestFileCache_Expiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Get returned expired entry")
	}
}

func TestFileCache_Delete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("Get returned a hit after Delete")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("NullCache returned a hit")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestIndexKey_Stable(t *testing.T) {
	a := IndexKey("http://deb.debian.org/debian/dists/stable/main/binary-amd64/Packages.gz")
	b := IndexKey("http://deb.debian.org/debian/dists/stable/main/binary-amd64/Packages.gz")
	other := IndexKey("http://archive.ubuntu.com/ubuntu/dists/noble/main/binary-amd64/Packages.gz")

	if a != b {
		t.Error("IndexKey is not deterministic")
	}
	if a == other {
		t.Error("IndexKey collides for different locations")
	}
}
