package env

import "testing"

func TestGetTrimsAndFallsBack(t *testing.T) {
	t.Setenv("CRUISEGUIDE_TEST_FORMAT", "  console ")
	if got := Get("CRUISEGUIDE_TEST_FORMAT", "json"); got != "console" {
		t.Fatalf("expected console, got %q", got)
	}

	t.Setenv("CRUISEGUIDE_TEST_FORMAT", "   ")
	if got := Get("CRUISEGUIDE_TEST_FORMAT", "json"); got != "json" {
		t.Fatalf("blank value should fall back, got %q", got)
	}
}

func TestFirstChecksKeysInOrder(t *testing.T) {
	t.Setenv("CRUISEGUIDE_TEST_A", "")
	t.Setenv("CRUISEGUIDE_TEST_B", "b")
	t.Setenv("CRUISEGUIDE_TEST_C", "c")
	if got := First("none", "CRUISEGUIDE_TEST_A", "CRUISEGUIDE_TEST_B", "CRUISEGUIDE_TEST_C"); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := First("none"); got != "none" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
