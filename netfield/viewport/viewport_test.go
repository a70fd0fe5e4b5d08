package viewport

import (
	"errors"
	"testing"

	"backdrop/hal"
	"backdrop/netfield/field"
	"backdrop/netfield/tier"
)

type fakeSurface struct {
	w, h  int
	calls int
	err   error
}

func (s *fakeSurface) Resize(w, h int) error {
	s.calls++
	s.w, s.h = w, h
	return s.err
}

func TestOnResizeCapsDPR(t *testing.T) {
	tests := []struct {
		name   string
		tier   tier.Name
		dpr    float64
		wantW  int
		wantH  int
		wantSc float64
	}{
		{"low-capped", tier.Low, 3, 200, 100, 2},
		{"medium-under", tier.Medium, 1.5, 150, 75, 1.5},
		{"high-3", tier.High, 3, 300, 150, 3},
		{"high-over", tier.High, 4, 300, 150, 3},
		{"missing-dpr", tier.Medium, 0, 100, 50, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSurface{}
			m := New(s, DPRCap(tt.tier), nil)
			if ok, err := m.OnResize(hal.Viewport{Width: 100, Height: 50, DeviceScale: tt.dpr}); !ok || err != nil {
				t.Fatalf("OnResize() = %v, %v", ok, err)
			}
			if s.w != tt.wantW || s.h != tt.wantH {
				t.Fatalf("backing = %dx%d, want %dx%d", s.w, s.h, tt.wantW, tt.wantH)
			}
			if m.Scale() != tt.wantSc {
				t.Fatalf("Scale() = %v, want %v", m.Scale(), tt.wantSc)
			}
		})
	}
}

func TestOnResizeIgnoresNonPositive(t *testing.T) {
	s := &fakeSurface{}
	reseeds := 0
	m := New(s, 2, func(w, h float64) { reseeds++ })
	for _, r := range []hal.Viewport{
		{Width: 0, Height: 100, DeviceScale: 1},
		{Width: 100, Height: -1, DeviceScale: 1},
	} {
		if ok, _ := m.OnResize(r); ok {
			t.Fatalf("OnResize(%v) applied", r)
		}
	}
	if reseeds != 0 || s.calls != 0 {
		t.Fatalf("reseeds = %d, resizes = %d, want 0", reseeds, s.calls)
	}
}

func TestOnResizeSameRectIgnored(t *testing.T) {
	reseeds := 0
	m := New(nil, 2, func(w, h float64) { reseeds++ })
	r := hal.Viewport{Width: 640, Height: 480, DeviceScale: 1}
	m.OnResize(r)
	m.OnResize(r)
	if reseeds != 1 {
		t.Fatalf("reseeds = %d, want 1", reseeds)
	}
}

func TestOnResizeReseedsFullGeneration(t *testing.T) {
	tr := tier.DefaultTable.Get(tier.Medium)
	var f *field.Field
	var gen uint64
	m := New(nil, DPRCap(tr.Name), func(w, h float64) {
		gen++
		f = field.Initialize(gen, w, h, tr, int64(gen))
	})
	m.OnResize(hal.Viewport{Width: 1024, Height: 768, DeviceScale: 1})
	f.Nodes = f.Nodes[:5]
	m.OnResize(hal.Viewport{Width: 400, Height: 300, DeviceScale: 2})
	if got := len(f.Nodes); got != tr.NodeCount {
		t.Fatalf("len(Nodes) = %d, want %d", got, tr.NodeCount)
	}
	if f.Generation != 2 {
		t.Fatalf("Generation = %d, want 2", f.Generation)
	}
	if f.Width != 400 || f.Height != 300 {
		t.Fatalf("field size = %vx%v, want logical 400x300", f.Width, f.Height)
	}
}

func TestOnResizeSurfaceErrorKeepsState(t *testing.T) {
	boom := errors.New("boom")
	s := &fakeSurface{}
	reseeds := 0
	m := New(s, 2, func(w, h float64) { reseeds++ })
	if ok, err := m.OnResize(hal.Viewport{Width: 100, Height: 50, DeviceScale: 1}); !ok || err != nil {
		t.Fatalf("OnResize() = %v, %v, want true, nil", ok, err)
	}

	s.err = boom
	ok, err := m.OnResize(hal.Viewport{Width: 10, Height: 10, DeviceScale: 2})
	if ok || !errors.Is(err, boom) {
		t.Fatalf("OnResize() = %v, %v, want false, boom", ok, err)
	}
	if reseeds != 1 {
		t.Fatalf("reseeds = %d, want 1", reseeds)
	}
	if w, h := m.Size(); w != 100 || h != 50 {
		t.Fatalf("Size() = %vx%v, want 100x50", w, h)
	}
	if sc := m.Scale(); sc != 1 {
		t.Fatalf("Scale() = %v, want 1", sc)
	}
	if bw, bh := m.BackingSize(); bw != 100 || bh != 50 {
		t.Fatalf("BackingSize() = %dx%d, want 100x50", bw, bh)
	}

	// The same rect is retried once the surface recovers.
	s.err = nil
	if ok, err := m.OnResize(hal.Viewport{Width: 10, Height: 10, DeviceScale: 2}); !ok || err != nil {
		t.Fatalf("OnResize() after recovery = %v, %v, want true, nil", ok, err)
	}
	if reseeds != 2 {
		t.Fatalf("reseeds = %d, want 2", reseeds)
	}
}
