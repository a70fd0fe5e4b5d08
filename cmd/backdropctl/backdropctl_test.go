package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"backdrop/netfield/probe"
	"backdrop/netfield/tier"
)

func TestPrintTiers(t *testing.T) {
	var buf bytes.Buffer
	printTiers(&buf, tier.DefaultTable)
	out := buf.String()
	for _, want := range []string{"low", "medium", "high", "250"} {
		if !strings.Contains(out, want) {
			t.Fatalf("printTiers() missing %q:\n%s", want, out)
		}
	}
}

func TestPrintProbeForced(t *testing.T) {
	var buf bytes.Buffer
	s := probe.Classify(8, 1, false, probe.SpeedFast, false)
	printProbe(&buf, s, tier.DefaultTable.Get(tier.Low), true)
	if !strings.Contains(buf.String(), "forced") {
		t.Fatalf("printProbe() did not mark the tier forced:\n%s", buf.String())
	}
}

func TestOptBool(t *testing.T) {
	if v, err := optBool("x", ""); v != nil || err != nil {
		t.Fatalf("optBool(\"\") = %v, %v, want nil, nil", v, err)
	}
	if v, err := optBool("x", "true"); err != nil || v == nil || !*v {
		t.Fatalf("optBool(true) = %v, %v", v, err)
	}
	if _, err := optBool("x", "maybe"); err == nil {
		t.Fatalf("optBool(maybe) = nil error")
	}
}

func TestRunSnapWritesPNG(t *testing.T) {
	env = envFlags{cores: 4, dpr: 1}
	t.Cleanup(func() { env = envFlags{} })

	out := filepath.Join(t.TempDir(), "snap.png")
	var buf bytes.Buffer
	err := runSnap(&buf, snapOptions{out: out, width: 160, height: 90, scale: 2, frames: 10, seed: 3})
	if err != nil {
		t.Fatalf("runSnap() = %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Fatalf("image %dx%d, want 320x180", b.Dx(), b.Dy())
	}
	if !strings.Contains(buf.String(), "medium") {
		t.Fatalf("summary missing tier:\n%s", buf.String())
	}
}
