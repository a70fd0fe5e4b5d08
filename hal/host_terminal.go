package hal

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
)

// TerminalConfig controls the terminal host.
type TerminalConfig struct {
	Hz      int
	Options Options
}

// halfBlock paints the upper pixel as foreground and the lower as background,
// so every cell carries two vertical pixels.
const halfBlock = '▀'

// RunTerminal renders the framebuffer into a terminal using tcell. Every cell
// is one logical pixel wide and two tall. It blocks until ctx is done or the
// user presses q, Esc or Ctrl-C.
func RunTerminal(ctx context.Context, newApp func(HAL) func() error, cfg TerminalConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 30
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: new screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: init: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()
	screen.HideCursor()

	if cfg.Options.Env.DevicePixelRatio <= 0 {
		cfg.Options.Env.DevicePixelRatio = 1
	}
	cols, rows := screen.Size()
	cfg.Options.Width, cfg.Options.Height = max(cols, 1), max(rows*2, 1)
	h := newHost(cfg.Options)
	h.viewport.Publish(Viewport{Width: float64(cols), Height: float64(rows * 2), DeviceScale: 1})
	step := newApp(h)

	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	t := time.NewTicker(time.Second / time.Duration(cfg.Hz))
	defer t.Stop()

	var (
		scratch []byte
		buttons tcell.ButtonMask
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !handleTerminalEvent(h, ev, &buttons) {
				return nil
			}
		case <-t.C:
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			scratch = drawTerminal(screen, h, scratch)
		}
	}
}

// mouseGesture turns a button mask into a click on the press edge of the
// primary button and wheel notches.
func mouseGesture(now, prev tcell.ButtonMask) (clicks uint64, wheel float64) {
	if now&tcell.Button1 != 0 && prev&tcell.Button1 == 0 {
		clicks = 1
	}
	if now&tcell.WheelUp != 0 {
		wheel++
	}
	if now&tcell.WheelDown != 0 {
		wheel--
	}
	return clicks, wheel
}

// handleTerminalEvent publishes host signals and reports false on quit keys.
// buttons holds the previous mouse button mask.
func handleTerminalEvent(h *hostHAL, ev tcell.Event, buttons *tcell.ButtonMask) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
			(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			return false
		}
	case *tcell.EventResize:
		cols, rows := ev.Size()
		h.viewport.Publish(Viewport{Width: float64(cols), Height: float64(rows * 2), DeviceScale: 1})
	case *tcell.EventMouse:
		x, y := ev.Position()
		h.pointer.Publish(PointerSample{X: float64(x), Y: float64(y*2 + 1)})
		h.gesture(mouseGesture(ev.Buttons(), *buttons))
		*buttons = ev.Buttons()
	case *tcell.EventFocus:
		h.visible.Publish(ev.Focused)
	}
	return true
}

func drawTerminal(screen tcell.Screen, h *hostHAL, scratch []byte) []byte {
	var fw, fh int
	scratch, fw, fh = h.fb.snapshot(scratch)
	cols, rows := screen.Size()
	if h.noSurface || fw <= 0 || fh <= 0 {
		screen.Clear()
		screen.Show()
		return scratch
	}
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			px := scaleCoord(cx, cols, fw)
			top := scaleCoord(cy*2, rows*2, fh)
			bot := scaleCoord(cy*2+1, rows*2, fh)
			tr, tg, tb := rgbaAt(scratch, fw, fh, px, top)
			br, bg, bb := rgbaAt(scratch, fw, fh, px, bot)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(tr), int32(tg), int32(tb))).
				Background(tcell.NewRGBColor(int32(br), int32(bg), int32(bb)))
			screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}
	screen.Show()
	return scratch
}
