package latch

import (
	"runtime"
	"sync"
	"testing"
)

func TestValueTakeEmpty(t *testing.T) {
	var l Value[int]

	_, _, ok := l.Take(0)
	if ok {
		t.Fatalf("Take(0) ok = true, want false")
	}
}

func TestValueTakeOnlyNew(t *testing.T) {
	var l Value[string]

	seq := l.Publish("a")
	v, got, ok := l.Take(0)
	if !ok || v != "a" || got != seq {
		t.Fatalf("Take(0) = %q,%d,%v, want %q,%d,true", v, got, ok, "a", seq)
	}
	if _, _, ok := l.Take(got); ok {
		t.Fatalf("Take(%d) ok = true after no publish, want false", got)
	}

	l.Publish("b")
	l.Publish("c")
	v, _, ok = l.Take(got)
	if !ok || v != "c" {
		t.Fatalf("Take() = %q,%v, want %q,true", v, ok, "c")
	}
}

func TestReaderNext(t *testing.T) {
	var l Value[int]
	r := NewReader(&l)

	if _, ok := r.Next(); ok {
		t.Fatalf("Next() ok = true before publish, want false")
	}
	l.Publish(7)
	if v, ok := r.Next(); !ok || v != 7 {
		t.Fatalf("Next() = %d,%v, want 7,true", v, ok)
	}
	if _, ok := r.Next(); ok {
		t.Fatalf("Next() ok = true on repeat, want false")
	}
	if v, ok := r.Latest(); !ok || v != 7 {
		t.Fatalf("Latest() = %d,%v, want 7,true", v, ok)
	}
}

func TestNilReader(t *testing.T) {
	var r *Reader[int]
	if _, ok := r.Next(); ok {
		t.Fatalf("nil Next() ok = true, want false")
	}
}

func TestValueConcurrentPublishers(t *testing.T) {
	oldProcs := runtime.GOMAXPROCS(2)
	defer runtime.GOMAXPROCS(oldProcs)

	const (
		producers = 4
		perProd   = 5_000
		total     = producers * perProd
	)

	var l Value[int]
	r := NewReader(&l)

	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(producers)
	for producerID := 0; producerID < producers; producerID++ {
		go func(producerID int) {
			defer wg.Done()
			<-start
			for i := 0; i < perProd; i++ {
				l.Publish(producerID*perProd + i)
			}
		}(producerID)
	}
	close(start)

	last := -1
	for l.Seq() < total {
		if v, ok := r.Next(); ok {
			if v < 0 || v >= total {
				t.Fatalf("Next() = %d, want [0,%d)", v, total)
			}
			last = v
		}
		runtime.Gosched()
	}
	wg.Wait()

	if got := l.Seq(); got != total {
		t.Fatalf("Seq() = %d, want %d", got, total)
	}
	if v, ok := r.Next(); ok {
		last = v
	}
	if last < 0 {
		t.Fatalf("reader never observed a value")
	}
}

func TestValueUpdateConcurrent(t *testing.T) {
	var l Value[int]
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				l.Update(func(v int) int { return v + 1 })
			}
		}()
	}
	wg.Wait()
	if v, seq := l.Load(); v != 8000 || seq != 8000 {
		t.Fatalf("Load() = %d,%d, want 8000,8000", v, seq)
	}
}
