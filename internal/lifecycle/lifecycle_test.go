package lifecycle

import "testing"

func TestShuttingDown(t *testing.T) {
	Reset()
	if IsShuttingDown() {
		t.Fatal("IsShuttingDown() = true after Reset")
	}
	SetShuttingDown(true)
	defer Reset()
	if !IsShuttingDown() {
		t.Error("IsShuttingDown() = false after SetShuttingDown(true)")
	}
}

func TestReadiness(t *testing.T) {
	Reset()
	defer Reset()

	if ok, states := Readiness(); !ok || len(states) != 0 {
		t.Errorf("Readiness() with no components = %v, %v; want true, empty", ok, states)
	}

	SetReady("symptom_model", true)
	SetReady("cache", false)
	ok, states := Readiness()
	if ok {
		t.Error("Readiness() = true with a component not ready")
	}
	if !states["symptom_model"] || states["cache"] {
		t.Errorf("states = %v", states)
	}
	if IsReady("unknown") {
		t.Error("IsReady(unknown) = true")
	}

	SetReady("cache", true)
	if ok, _ := Readiness(); !ok {
		t.Error("Readiness() = false with all components ready")
	}
}
