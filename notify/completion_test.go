package notify

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCompletion_Resolve(t *testing.T) {
	c := New[string]()

	if c.State() != Pending {
		t.Fatal("new completion should be pending")
	}

	if !c.Resolve("hello") {
		t.Fatal("first Resolve should succeed")
	}
	if c.State() != Succeeded {
		t.Fatalf("expected Succeeded, got %s", c.State())
	}

	v, err := c.Result()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "hello" {
		t.Fatalf("expected 'hello', got %q", v)
	}

	select {
	case <-c.Done():
	default:
		t.Fatal("Done channel should be closed")
	}
}

func TestCompletion_SettlesExactlyOnce(t *testing.T) {
	c := New[int]()

	if !c.Resolve(1) {
		t.Fatal("first transition should win")
	}
	if c.Resolve(2) {
		t.Fatal("second Resolve should be a no-op")
	}
	if c.Fail(errors.New("late")) {
		t.Fatal("Fail after Resolve should be a no-op")
	}
	if c.Cancel(errors.New("late")) {
		t.Fatal("Cancel after Resolve should be a no-op")
	}

	v, err := c.Result()
	if v != 1 || err != nil {
		t.Fatalf("result changed after settle: %d, %v", v, err)
	}
}

func TestCompletion_Fail(t *testing.T) {
	c := New[int]()
	want := errors.New("boom")

	if !c.Fail(want) {
		t.Fatal("Fail should succeed on pending completion")
	}
	if c.State() != Failed {
		t.Fatalf("expected Failed, got %s", c.State())
	}
	if err := c.Err(); err != want {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func TestCompletion_Cancel(t *testing.T) {
	c := New[int]()
	want := errors.New("canceled")

	if !c.Cancel(want) {
		t.Fatal("Cancel should succeed on pending completion")
	}
	if c.State() != Canceled {
		t.Fatalf("expected Canceled, got %s", c.State())
	}
	if !c.State().Settled() {
		t.Fatal("Canceled should be settled")
	}
}

func TestCompletion_OnSettled(t *testing.T) {
	t.Run("registered before settle", func(t *testing.T) {
		c := New[string]()
		var got string
		var gotErr error
		c.OnSettled(func(v string, err error) {
			got = v
			gotErr = err
		})

		c.Resolve("value")
		if got != "value" || gotErr != nil {
			t.Fatalf("callback got %q, %v", got, gotErr)
		}
	})

	t.Run("registered after settle runs immediately", func(t *testing.T) {
		c := New[string]()
		c.Resolve("value")

		called := false
		c.OnSettled(func(v string, err error) {
			called = true
			if v != "value" {
				t.Errorf("expected 'value', got %q", v)
			}
		})
		if !called {
			t.Fatal("callback should run immediately on settled completion")
		}
	})

	t.Run("callbacks run in registration order", func(t *testing.T) {
		c := New[int]()
		var order []int
		c.OnSettled(func(int, error) { order = append(order, 1) })
		c.OnSettled(func(int, error) { order = append(order, 2) })
		c.Resolve(0)

		if len(order) != 2 || order[0] != 1 || order[1] != 2 {
			t.Fatalf("unexpected callback order: %v", order)
		}
	})
}

func TestCompletion_Await(t *testing.T) {
	t.Run("returns result after settle", func(t *testing.T) {
		c := New[int]()
		go func() {
			time.Sleep(10 * time.Millisecond)
			c.Resolve(42)
		}()

		v, err := c.Await(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 42 {
			t.Fatalf("expected 42, got %d", v)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		c := New[int]()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.Await(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Pending, "pending"},
		{Succeeded, "succeeded"},
		{Failed, "failed"},
		{Canceled, "canceled"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
