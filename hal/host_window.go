//go:build cgo

package hal

import (
	"math"

	"backdrop/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// WindowConfig controls the desktop window host.
type WindowConfig struct {
	Width, Height int
	TPS           int
	Options       Options
}

// RunWindow starts a desktop window that displays the framebuffer and forwards
// viewport, pointer and focus signals. It blocks until the window closes.
func RunWindow(newApp func(HAL) func() error, cfg WindowConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 1280
	}
	if cfg.Height <= 0 {
		cfg.Height = 720
	}
	if cfg.TPS <= 0 {
		cfg.TPS = 60
	}
	cfg.Options.Width, cfg.Options.Height = cfg.Width, cfg.Height
	h := newHost(cfg.Options)
	h.env.setScaleSource(monitorScale)

	g := &hostGame{h: h, newApp: newApp}
	ebiten.SetWindowTitle("backdrop (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)
	return ebiten.RunGame(g)
}

func monitorScale() (float64, bool) {
	m := ebiten.Monitor()
	if m == nil {
		return 0, false
	}
	s := m.DeviceScaleFactor()
	return s, s > 0
}

type hostGame struct {
	h      *hostHAL
	newApp func(HAL) func() error
	step   func() error

	fbImg   *ebiten.Image
	scratch []byte

	vp       Viewport
	cursorX  int
	cursorY  int
	touched  bool
	focused  bool
	polledUp bool
}

func (g *hostGame) Update() error {
	// Mount lazily so monitor queries happen inside the running game.
	if g.step == nil {
		g.step = g.newApp(g.h)
	}
	g.pollPointer()
	g.pollGestures()
	g.pollFocus()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) pollPointer() {
	scale := g.vp.DeviceScale
	if scale <= 0 {
		scale = 1
	}
	if ids := ebiten.AppendTouchIDs(nil); len(ids) > 0 {
		x, y := ebiten.TouchPosition(ids[0])
		g.touched = true
		g.h.pointer.Publish(PointerSample{X: float64(x) / scale, Y: float64(y) / scale, Touch: true})
		return
	}
	x, y := ebiten.CursorPosition()
	if !g.polledUp {
		// The first reading is where the cursor already was, not a motion.
		g.polledUp = true
		g.cursorX, g.cursorY = x, y
		return
	}
	if x == g.cursorX && y == g.cursorY {
		return
	}
	g.cursorX, g.cursorY = x, y
	g.h.pointer.Publish(PointerSample{X: float64(x) / scale, Y: float64(y) / scale})
}

func (g *hostGame) pollGestures() {
	var clicks uint64
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		clicks++
	}
	clicks += uint64(len(inpututil.AppendJustPressedTouchIDs(nil)))
	_, wy := ebiten.Wheel()
	g.h.gesture(clicks, wy)
}

func (g *hostGame) pollFocus() {
	f := ebiten.IsFocused()
	if f == g.focused {
		return
	}
	g.focused = f
	g.h.visible.Publish(f)
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	var w, h int
	g.scratch, w, h = g.h.fb.snapshot(g.scratch)
	if w <= 0 || h <= 0 || g.h.noSurface {
		return
	}
	if g.fbImg == nil || g.fbImg.Bounds().Dx() != w || g.fbImg.Bounds().Dy() != h {
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(w, h)
	}
	g.fbImg.WritePixels(g.scratch)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(sw)/float64(w), float64(sh)/float64(h))
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(g.fbImg, op)
}

// Layout publishes the logical container size and renders at device
// resolution.
func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale, ok := monitorScale()
	if !ok {
		scale = 1
	}
	vp := Viewport{Width: float64(outsideWidth), Height: float64(outsideHeight), DeviceScale: scale}
	if vp != g.vp {
		g.vp = vp
		g.h.viewport.Publish(vp)
	}
	return int(math.Ceil(float64(outsideWidth) * scale)), int(math.Ceil(float64(outsideHeight) * scale))
}
