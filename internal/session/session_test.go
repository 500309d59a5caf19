package session

import (
	"testing"
	"time"
)

func TestCreateAssignsMonotonicSSID(t *testing.T) {
	r := NewRegistry()
	s1 := r.Create(1, Login)
	s2 := r.Create(2, Login)
	if s1.SSID != 1 || s2.SSID != 2 {
		t.Fatalf("got ssids %d, %d, want 1, 2", s1.SSID, s2.SSID)
	}
}

func TestGetAndRemove(t *testing.T) {
	r := NewRegistry()
	s := r.Create(42, Login)

	got, ok := r.Get(s.SSID)
	if !ok || got.UID != 42 {
		t.Fatalf("Get returned %v, %v", got, ok)
	}

	r.Remove(s.SSID)
	if _, ok := r.Get(s.SSID); ok {
		t.Fatalf("expected session to be gone after Remove")
	}

	// Remove must be idempotent.
	r.Remove(s.SSID)
}

func TestSetExpireNoneToForeverIsNoop(t *testing.T) {
	r := NewRegistry()
	s := r.Create(1, Login)
	r.SetExpire(s.SSID, Forever)

	if _, ok := r.Get(s.SSID); !ok {
		t.Fatalf("session must still exist")
	}
}

func TestSetExpireNoneToFiniteRemovesOnFire(t *testing.T) {
	r := NewRegistry()
	s := r.Create(1, Login)
	r.SetExpire(s.SSID, 20*time.Millisecond)

	time.Sleep(80 * time.Millisecond)

	if _, ok := r.Get(s.SSID); ok {
		t.Fatalf("expected session to expire")
	}
}

func TestSetExpirePresentToForeverSurvives(t *testing.T) {
	r := NewRegistry()
	s := r.Create(1, Login)
	r.SetExpire(s.SSID, 10*time.Millisecond)
	r.SetExpire(s.SSID, Forever)

	time.Sleep(100 * time.Millisecond)

	if _, ok := r.Get(s.SSID); !ok {
		t.Fatalf("property: session set to Forever must remain retrievable regardless of the prior timer's firing")
	}
}

func TestSetExpirePresentToFiniteRearms(t *testing.T) {
	r := NewRegistry()
	s := r.Create(1, Login)
	r.SetExpire(s.SSID, time.Hour)
	r.SetExpire(s.SSID, 20*time.Millisecond)

	time.Sleep(120 * time.Millisecond)

	if _, ok := r.Get(s.SSID); ok {
		t.Fatalf("expected the re-armed finite timer to remove the session")
	}
}
