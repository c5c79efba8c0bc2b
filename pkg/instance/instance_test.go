package instance

import "testing"

func TestGetIDPrefersExplicitID(t *testing.T) {
	t.Setenv("CRUISEGUIDE_INSTANCE_ID", "cron-1")
	t.Setenv("HOSTNAME", "pod-abc")
	if got := GetID(); got != "cron-1" {
		t.Fatalf("expected cron-1, got %q", got)
	}
}

func TestGetIDFallsBack(t *testing.T) {
	t.Setenv("CRUISEGUIDE_INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	t.Setenv("HOSTNAME", "pod-abc")
	if got := GetID(); got != "pod-abc" {
		t.Fatalf("expected pod-abc, got %q", got)
	}

	t.Setenv("HOSTNAME", "")
	if got := GetID(); got != "local" {
		t.Fatalf("expected local, got %q", got)
	}
}
