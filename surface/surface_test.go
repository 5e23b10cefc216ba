package surface

import (
	"errors"
	"testing"
)

func TestHeadless(t *testing.T) {
	h := NewHeadless(0, 20)
	if w, hh := h.Size(); w != 1 || hh != 20 {
		t.Errorf("Size() = %dx%d, want 1x20", w, hh)
	}
	for i := 0; i < 3; i++ {
		if err := h.Present(); err != nil {
			t.Fatalf("Present() error = %v", err)
		}
	}
	if got := h.Presents(); got != 3 {
		t.Errorf("Presents() = %d, want 3", got)
	}
	select {
	case <-h.Presented():
	default:
		t.Error("Presented() channel empty after presents")
	}

	h.SetClear([4]float32{1, 0, 0, 1}, 1, 0)
	if got := h.LastClear(); got != [4]float32{1, 0, 0, 1} {
		t.Errorf("LastClear() = %v", got)
	}

	_ = h.Release()
	_ = h.Release()
	if !h.Released() {
		t.Error("Released() = false after Release")
	}
	if err := h.Present(); !errors.Is(err, ErrReleased) {
		t.Errorf("Present() after Release error = %v, want ErrReleased", err)
	}
}

func TestRegistry(t *testing.T) {
	r := &Registry{}
	if _, err := r.New(Options{}); !errors.Is(err, ErrNoBackendAvailable) {
		t.Fatalf("empty registry error = %v, want ErrNoBackendAvailable", err)
	}

	failing := errors.New("no display")
	r.Register("window", 100, func(Options) (Surface, error) { return nil, failing }, nil)
	r.Register("offline", 200, nil, func() bool { return false })
	r.Register("headless", 10, func(o Options) (Surface, error) { return NewHeadless(o.Width, o.Height), nil }, nil)

	if got := r.Available(); len(got) != 2 || got[0] != "window" || got[1] != "headless" {
		t.Errorf("Available() = %v, want [window headless]", got)
	}
	s, err := r.New(Options{Width: 8, Height: 8})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := s.(*Headless); !ok {
		t.Errorf("New() = %T, want fallback to *Headless", s)
	}

	var nf *BackendNotFoundError
	if _, err := r.NewByName("missing", Options{}); !errors.As(err, &nf) {
		t.Errorf("NewByName(missing) error = %v", err)
	}
	var un *BackendUnavailableError
	if _, err := r.NewByName("offline", Options{}); !errors.As(err, &un) {
		t.Errorf("NewByName(offline) error = %v", err)
	}

	r.Unregister("window")
	if got := r.Available(); len(got) != 1 {
		t.Errorf("Available() after Unregister = %v", got)
	}
}

func TestGlobalHeadless(t *testing.T) {
	s, err := NewByName("headless", Options{Width: 4, Height: 2})
	if err != nil {
		t.Fatal(err)
	}
	if w, h := s.Size(); w != 4 || h != 2 {
		t.Errorf("Size() = %dx%d", w, h)
	}
}
