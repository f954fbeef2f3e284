package errors

import "testing"

func TestWrap(t *testing.T) {
	err := Wrap(errWrapped, "Hello, Wrapped!")
	if err.Error() != "Hello, Wrapped!, err: wrapped error" {
		t.Fatalf("error mismatch: %+v", err)
	}
}

func TestWrapNilStaysNil(t *testing.T) {
	if err := Wrap(nil, "ignored"); err != nil {
		t.Fatalf("wrapped nil is not nil: %v", err)
	}
}

func TestWrapEmptyTextPassesThrough(t *testing.T) {
	if err := Wrap(errWrapped, ""); err != errWrapped {
		t.Fatalf("empty wrap changed the error: %v", err)
	}
}

func TestIsSeesThroughWrapping(t *testing.T) {
	err := Wrap(Wrap(errWrapped, "inner"), "outer")
	if !Is(err, errWrapped) {
		t.Fatalf("wrapped sentinel not matched: %v", err)
	}
	if Is(err, New("other")) {
		t.Fatalf("unrelated error matched")
	}
}
