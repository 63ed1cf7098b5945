package queue

import (
	"context"
	"testing"
	"time"
)

func TestInMemoryRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	if err := q.Publish(ctx, NewCleanup(TypeDeleteImage, "img-1")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	msgs, err := q.Consume(ctx)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	select {
	case msg := <-msgs:
		if msg.Type != TypeDeleteImage {
			t.Errorf("type = %q", msg.Type)
		}
		job, err := ParseCleanup(msg)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if job.Ref != "img-1" {
			t.Errorf("ref = %q", job.Ref)
		}
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}
}

func TestInMemoryPublishHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewInMemory(0)
	if err := q.Publish(ctx, NewCleanup(TypeDeleteIdentity, "user-1")); err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseCleanupRejectsGarbage(t *testing.T) {
	if _, err := ParseCleanup(Message{Type: TypeDeleteImage, Body: []byte("{")}); err == nil {
		t.Fatal("expected decode error")
	}
}
