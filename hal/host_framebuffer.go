package hal

import (
	"fmt"
	"sync"
)

// maxFramebufferPixels bounds Resize so a bogus viewport cannot allocate
// gigabytes.
const maxFramebufferPixels = 8192 * 8192

type hostFramebuffer struct {
	mu     sync.Mutex
	width  int
	height int
	stride int
	buf    []byte
}

func newHostFramebuffer(width, height int) *hostFramebuffer {
	f := &hostFramebuffer{}
	_ = f.Resize(width, height)
	return f
}

func (f *hostFramebuffer) Width() int          { f.mu.Lock(); defer f.mu.Unlock(); return f.width }
func (f *hostFramebuffer) Height() int         { f.mu.Lock(); defer f.mu.Unlock(); return f.height }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGBA8888 }
func (f *hostFramebuffer) StrideBytes() int    { f.mu.Lock(); defer f.mu.Unlock(); return f.stride }
func (f *hostFramebuffer) Buffer() []byte      { f.mu.Lock(); defer f.mu.Unlock(); return f.buf }
func (f *hostFramebuffer) Present() error      { return nil }

func (f *hostFramebuffer) Resize(w, h int) error {
	if w <= 0 || h <= 0 || w*h > maxFramebufferPixels {
		return fmt.Errorf("framebuffer: invalid size %dx%d", w, h)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if w == f.width && h == f.height {
		return nil
	}
	stride := w * 4
	if cap(f.buf) >= stride*h {
		f.buf = f.buf[:stride*h]
		clear(f.buf)
	} else {
		f.buf = make([]byte, stride*h)
	}
	f.width, f.height, f.stride = w, h, stride
	return nil
}

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := 0; i+3 < len(f.buf); i += 4 {
		f.buf[i] = r
		f.buf[i+1] = g
		f.buf[i+2] = b
		f.buf[i+3] = 0xFF
	}
}

// snapshot copies the pixels into dst, growing it as needed, and returns the
// dimensions they describe.
func (f *hostFramebuffer) snapshot(dst []byte) ([]byte, int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cap(dst) < len(f.buf) {
		dst = make([]byte, len(f.buf))
	}
	dst = dst[:len(f.buf)]
	copy(dst, f.buf)
	return dst, f.width, f.height
}
