package httpmiddleware

import "testing"

func TestTokenBucketExhaustion(t *testing.T) {
	l := NewSimpleTokenBucket(3, 60)
	for i := 0; i < 3; i++ {
		if !l.allow("1.2.3.4") {
			t.Fatalf("request %d denied within capacity", i)
		}
	}
	if l.allow("1.2.3.4") {
		t.Error("request beyond capacity allowed")
	}
	// A different client has its own bucket.
	if !l.allow("5.6.7.8") {
		t.Error("fresh client denied")
	}
}

func TestTokenBucketDefaultsCapacity(t *testing.T) {
	l := NewSimpleTokenBucket(0, 2)
	if l.capacity != 2 {
		t.Errorf("capacity = %d, want rate fallback 2", l.capacity)
	}
}
