package assetkit

import (
	"context"
	"testing"
	"time"

	"github.com/kestrelworks/assetkit/engine"
	"github.com/kestrelworks/assetkit/notify"
)

func TestFacade_Load(t *testing.T) {
	eng := engine.NewSim()
	defer eng.Close()
	eng.AddText("ui/banner", "welcome")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go eng.Pump(ctx, time.Millisecond)

	h := Load[*engine.Text](eng, "ui/banner")
	defer h.Release()

	text, err := h.Await(ctx)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if text.Body != "welcome" {
		t.Fatalf("unexpected body: %q", text.Body)
	}
}

func TestFacade_Instantiate(t *testing.T) {
	eng := engine.NewSim()
	defer eng.Close()
	eng.AddPrefab("props/crate",
		engine.ComponentSpec{Type: "transform"},
		engine.ComponentSpec{Type: "collider", Params: map[string]any{"radius": 1.5}},
	)

	h := Instantiate[*engine.Collider](eng, "props/crate", At(engine.Vec3{X: 4}))
	eng.StepN(2)

	spawned, err := h.Future().Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spawned.Component.Radius != 1.5 {
		t.Fatalf("unexpected radius: %v", spawned.Component.Radius)
	}
	if err := h.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if eng.LiveInstances() != 0 {
		t.Fatal("release should destroy the spawned instance")
	}
}

func TestGroup_Release(t *testing.T) {
	eng := engine.NewSim()
	defer eng.Close()
	eng.AddText("a", "1")
	eng.AddText("b", "2")

	var g Group
	g.Add(Load[*engine.Text](eng, "a"), Load[*engine.Text](eng, "b"))
	if g.Len() != 2 {
		t.Fatalf("expected 2 handles, got %d", g.Len())
	}

	eng.Step()
	if eng.Refs("a") != 1 || eng.Refs("b") != 1 {
		t.Fatal("both loads should hold references")
	}

	if err := g.Release(); err != nil {
		t.Fatalf("group Release failed: %v", err)
	}
	if eng.Refs("a") != 0 || eng.Refs("b") != 0 {
		t.Fatal("group release should return every reference")
	}
	if g.Len() != 0 {
		t.Fatal("group should be empty after release")
	}
}

func TestGroup_ReleasePendingCancels(t *testing.T) {
	eng := engine.NewSim()
	defer eng.Close()
	eng.AddText("a", "1")

	h := Load[*engine.Text](eng, "a")
	var g Group
	g.Add(h)

	if err := g.Release(); err != nil {
		t.Fatalf("group Release failed: %v", err)
	}
	if h.Future().State() != notify.Canceled {
		t.Fatal("pending handle in a released group should be canceled")
	}
}
