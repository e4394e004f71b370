package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseLoad,
				Kind:     KindTypeMismatch,
				Key:      "ui/banner",
				GoType:   "*engine.Blob",
				WantType: "*engine.Text",
			},
			contains: []string{"[load]", "type_mismatch", `"ui/banner"`, "*engine.Blob", "*engine.Text"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseInstantiate,
				Kind:  KindMissingComponent,
			},
			contains: []string{"[instantiate]", "missing_component"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindLoadFailed,
				Detail: "engine rejected request",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "load_failed", "engine rejected request", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := LoadFailed("props/crate", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}
	if err.Unwrap() != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestError_Is(t *testing.T) {
	a := Canceled(PhaseLoad, "a")
	b := Canceled(PhaseLoad, "b")
	c := Canceled(PhaseInstantiate, "a")

	if !errors.Is(a, b) {
		t.Error("same phase and kind should match")
	}
	if errors.Is(a, c) {
		t.Error("different phase should not match")
	}
	if errors.Is(a, errors.New("plain")) {
		t.Error("plain error should not match")
	}
}

func TestBuilder(t *testing.T) {
	err := New(PhaseLoad, KindTypeMismatch).
		Key("ui/banner").
		GoType("string").
		WantType("*engine.Text").
		Detail("loaded %d bytes", 42).
		Build()

	if err.Phase != PhaseLoad || err.Kind != KindTypeMismatch {
		t.Fatalf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Detail != "loaded 42 bytes" {
		t.Fatalf("unexpected detail: %q", err.Detail)
	}
	msg := err.Error()
	if !strings.Contains(msg, "got string, want *engine.Text") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
	}{
		{"load failed", LoadFailed("k", nil), KindLoadFailed},
		{"type mismatch", TypeMismatch("k", "a", "b"), KindTypeMismatch},
		{"missing component", MissingComponent("k", "Collider"), KindMissingComponent},
		{"canceled", Canceled(PhaseLoad, "k"), KindCanceled},
		{"not found", NotFound("k"), KindNotFound},
		{"unsupported", Unsupported(PhaseInstantiate, "async path"), KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Fatalf("expected kind %s, got %s", tt.kind, tt.err.Kind)
			}
			if tt.err.Error() == "" {
				t.Fatal("empty error message")
			}
		})
	}
}
