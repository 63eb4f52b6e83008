package logging

import "testing"

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New("chatty", "forum")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if ce := log.Check(-1, "debug"); ce != nil {
		t.Fatal("expected debug to be disabled")
	}
	if ce := log.Check(0, "info"); ce == nil {
		t.Fatal("expected info to be enabled")
	}
}

func TestNew_Debug(t *testing.T) {
	log, err := New(" DEBUG ", "")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if ce := log.Check(-1, "debug"); ce == nil {
		t.Fatal("expected debug to be enabled")
	}
}
