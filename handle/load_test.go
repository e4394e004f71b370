package handle

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/kestrelworks/assetkit/engine"
	errs "github.com/kestrelworks/assetkit/errors"
	"github.com/kestrelworks/assetkit/notify"
	"github.com/kestrelworks/assetkit/track"
)

func newTestEngine(opts ...engine.SimOption) *engine.Sim {
	eng := engine.NewSim(opts...)
	eng.AddText("ui/banner", "welcome")
	eng.AddBroken("bad/asset", "disk corrupt")
	eng.AddPrefab("props/crate",
		engine.ComponentSpec{Type: "transform"},
		engine.ComponentSpec{Type: "collider", Params: map[string]any{"radius": 0.5}},
	)
	eng.AddPrefab("props/ghost", engine.ComponentSpec{Type: "transform"})
	return eng
}

func TestLoad_Success(t *testing.T) {
	eng := newTestEngine()
	reg := track.NewRegistry()

	h := NewLoad[*engine.Text](eng, "ui/banner", WithRegistry(reg))
	if h.Key() != "ui/banner" {
		t.Fatalf("unexpected key: %q", h.Key())
	}
	if h.Future().State() != notify.Pending {
		t.Fatal("future should be pending before a frame step")
	}
	if reg.Len() != 1 {
		t.Fatal("handle should register itself")
	}

	eng.Step()
	if h.Future().State() != notify.Succeeded {
		t.Fatalf("expected succeeded, got %s", h.Future().State())
	}
	text, err := h.Future().Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text.Body != "welcome" {
		t.Fatalf("unexpected body: %q", text.Body)
	}
	if h.Asset() != text {
		t.Fatal("Asset should return the loaded object")
	}
	if eng.Refs("ui/banner") != 1 {
		t.Fatal("handle should hold one engine reference")
	}

	if err := h.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if eng.Refs("ui/banner") != 0 {
		t.Fatal("release should return the engine reference")
	}
	if h.Asset() != nil {
		t.Fatal("released handle should hold no asset")
	}
	if reg.Len() != 0 {
		t.Fatal("handle should deregister on release")
	}
	// The future stays settled with its original result.
	if h.Future().State() != notify.Succeeded {
		t.Fatal("release must not unsettle a resolved future")
	}
}

func TestLoad_HostFailure(t *testing.T) {
	eng := newTestEngine()

	h := NewLoad[*engine.Text](eng, "bad/asset", WithRegistry(track.NewRegistry()))
	eng.Step()

	if h.Future().State() != notify.Failed {
		t.Fatalf("expected failed, got %s", h.Future().State())
	}
	err := h.Future().Err()
	if !errors.Is(err, errs.LoadFailed("", nil)) {
		t.Fatalf("expected load_failed kind, got %v", err)
	}
	h.Release()
}

func TestLoad_UnknownKey(t *testing.T) {
	eng := newTestEngine()

	h := NewLoad[*engine.Text](eng, "missing", WithRegistry(track.NewRegistry()))
	eng.Step()

	if !errors.Is(h.Future().Err(), errs.LoadFailed("", nil)) {
		t.Fatalf("expected load_failed kind, got %v", h.Future().Err())
	}
	if !errors.Is(h.Future().Err(), engine.ErrUnknownKey) {
		t.Fatal("cause chain should surface the engine error")
	}
	h.Release()
}

func TestLoad_TypeMismatch(t *testing.T) {
	eng := newTestEngine()

	h := NewLoad[*engine.Blob](eng, "ui/banner", WithRegistry(track.NewRegistry()))
	eng.Step()

	if h.Future().State() != notify.Failed {
		t.Fatalf("expected failed, got %s", h.Future().State())
	}
	var e *errs.Error
	if !errors.As(h.Future().Err(), &e) || e.Kind != errs.KindTypeMismatch {
		t.Fatalf("expected type_mismatch, got %v", h.Future().Err())
	}
	if e.GoType != "*engine.Text" || e.WantType != "*engine.Blob" {
		t.Fatalf("unexpected types in error: %+v", e)
	}
	if eng.Refs("ui/banner") != 0 {
		t.Fatal("mismatched load should return its engine reference immediately")
	}
	h.Release()
}

func TestLoad_ReleaseWhilePending(t *testing.T) {
	eng := newTestEngine()

	h := NewLoad[*engine.Text](eng, "ui/banner", WithRegistry(track.NewRegistry()))
	if err := h.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	if h.Future().State() != notify.Canceled {
		t.Fatalf("expected canceled, got %s", h.Future().State())
	}
	var e *errs.Error
	if !errors.As(h.Future().Err(), &e) || e.Kind != errs.KindCanceled {
		t.Fatalf("expected canceled kind, got %v", h.Future().Err())
	}

	// The engine step must not flip the settled future or take a ref.
	eng.Step()
	if h.Future().State() != notify.Canceled {
		t.Fatal("late engine result must be discarded")
	}
	if eng.Refs("ui/banner") != 0 {
		t.Fatal("canceled load must not hold a reference")
	}
}

func TestLoad_ReleaseIdempotent(t *testing.T) {
	eng := newTestEngine()
	reg := track.NewRegistry()

	h := NewLoad[*engine.Text](eng, "ui/banner", WithRegistry(reg))
	eng.Step()

	for i := 0; i < 3; i++ {
		if err := h.Release(); err != nil {
			t.Fatalf("Release %d failed: %v", i, err)
		}
	}
	if eng.Refs("ui/banner") != 0 {
		t.Fatal("refs should drop exactly once")
	}
	if !h.Released() {
		t.Fatal("Released should report true")
	}
}

func TestLoad_DeferStart(t *testing.T) {
	eng := newTestEngine()

	h := NewLoad[*engine.Text](eng, "ui/banner", DeferStart(), WithRegistry(track.NewRegistry()))

	// Frame 1 starts the load, frame 2 completes it.
	eng.Step()
	if h.Future().State() != notify.Pending {
		t.Fatal("deferred load should still be pending after the start frame")
	}
	eng.Step()
	if h.Future().State() != notify.Succeeded {
		t.Fatalf("expected succeeded, got %s", h.Future().State())
	}
	h.Release()
}

func TestLoad_ReleaseDuringDeferralNeverStarts(t *testing.T) {
	eng := newTestEngine()

	h := NewLoad[*engine.Text](eng, "ui/banner", DeferStart(), WithRegistry(track.NewRegistry()))
	h.Release()

	eng.StepN(3)
	if h.Future().State() != notify.Canceled {
		t.Fatalf("expected canceled, got %s", h.Future().State())
	}
	if eng.Loaded("ui/banner") {
		t.Fatal("the load must never start when released during deferral")
	}
}

func TestLoad_Await(t *testing.T) {
	eng := newTestEngine()

	h := NewLoad[*engine.Text](eng, "ui/banner", WithRegistry(track.NewRegistry()))
	defer h.Release()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Pump(ctx, time.Millisecond)

	text, err := h.Await(ctx)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if text.Body != "welcome" {
		t.Fatalf("unexpected body: %q", text.Body)
	}
	cancel()
}

func TestLoad_AbandonedHandleIsReportedAsLeak(t *testing.T) {
	eng := newTestEngine()
	reg := track.NewRegistry()

	func() {
		h := NewLoad[*engine.Text](eng, "ui/banner", WithRegistry(reg))
		_ = h
	}()
	eng.Step()

	for i := 0; i < 100 && reg.Len() != 0; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
	if reg.Len() != 0 {
		t.Fatal("abandoned handle was not reported to the registry")
	}
}

func TestLoad_ReleasedHandleIsNotALeak(t *testing.T) {
	eng := newTestEngine()
	reg := track.NewRegistry()

	events := &captureObserver{}
	reg.Subscribe(events)

	h := NewLoad[*engine.Text](eng, "ui/banner", WithRegistry(reg))
	eng.Step()
	h.Release()
	h = nil

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	runtime.GC()

	for _, e := range events.events {
		if e.Type == track.EventLeaked {
			t.Fatal("released handle must not be reported as leaked")
		}
	}
}

type captureObserver struct {
	events []track.Event
}

func (o *captureObserver) OnHandleEvent(e track.Event) {
	o.events = append(o.events, e)
}
