package main

import "testing"

func TestRunVersionFlagExitsZero(t *testing.T) {
	if got := run([]string{"--version"}, nil); got != 0 {
		t.Fatalf("got exit code %d, want 0", got)
	}
}

func TestRunTooManyArgsIsUsageError(t *testing.T) {
	if got := run([]string{"a.jsonl", "b.jsonl"}, nil); got != 2 {
		t.Fatalf("got exit code %d, want 2", got)
	}
}

func TestRunUnknownFlagIsUsageError(t *testing.T) {
	if got := run([]string{"--not-a-flag"}, nil); got != 2 {
		t.Fatalf("got exit code %d, want 2", got)
	}
}
