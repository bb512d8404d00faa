package ids

import "testing"

func TestNewEntryUUID_Empty(t *testing.T) {
	if _, err := NewEntryUUID(""); err != ErrEmptyIdentifier {
		t.Fatalf("got err %v, want ErrEmptyIdentifier", err)
	}
}

func TestNewEntryUUID_Valid(t *testing.T) {
	u, err := NewEntryUUID("u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.String() != "u1" {
		t.Errorf("got %q, want %q", u.String(), "u1")
	}
}

func TestNewSessionID_Empty(t *testing.T) {
	if _, err := NewSessionID(""); err != ErrEmptyIdentifier {
		t.Fatalf("got err %v, want ErrEmptyIdentifier", err)
	}
}

func TestNewAgentID_Empty(t *testing.T) {
	if _, err := NewAgentID(""); err != ErrEmptyIdentifier {
		t.Fatalf("got err %v, want ErrEmptyIdentifier", err)
	}
}

func TestNewToolUseID_Empty(t *testing.T) {
	if _, err := NewToolUseID(""); err != ErrEmptyIdentifier {
		t.Fatalf("got err %v, want ErrEmptyIdentifier", err)
	}
}

func TestUnknownSessionID(t *testing.T) {
	if UnknownSessionID.String() != "unknown-session" {
		t.Errorf("got %q, want %q", UnknownSessionID.String(), "unknown-session")
	}
}
