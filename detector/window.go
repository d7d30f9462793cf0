package detector

import "time"

// sample is one retained tick inside a window.
type sample struct {
	ts    time.Time
	price float64
}

// window is a fixed-capacity ring buffer of recent price samples. The
// backing slice is allocated once at construction; pushing onto a full
// window evicts the oldest sample. Capacity never changes afterwards.
type window struct {
	buf  []sample
	head int // index of the oldest sample
	size int
}

func newWindow(capacity int) *window {
	if capacity <= 0 {
		capacity = 1
	}
	return &window{buf: make([]sample, capacity)}
}

func (w *window) push(ts time.Time, price float64) {
	tail := (w.head + w.size) % len(w.buf)
	w.buf[tail] = sample{ts: ts, price: price}
	if w.size < len(w.buf) {
		w.size++
	} else {
		w.head = (w.head + 1) % len(w.buf)
	}
}

func (w *window) len() int { return w.size }

// at returns the i-th sample, oldest first.
func (w *window) at(i int) sample {
	return w.buf[(w.head+i)%len(w.buf)]
}

func (w *window) last() sample { return w.at(w.size - 1) }
func (w *window) prev() sample { return w.at(w.size - 2) }

// maxPrice is the running high within the window.
func (w *window) maxPrice() float64 {
	if w.size == 0 {
		return 0
	}
	max := w.at(0).price
	for i := 1; i < w.size; i++ {
		if p := w.at(i).price; p > max {
			max = p
		}
	}
	return max
}

// prices returns a copy of the window contents, oldest first.
func (w *window) prices() []float64 {
	out := make([]float64, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.at(i).price
	}
	return out
}

// floatRing is a fixed-capacity ring of float64 values, used for the
// spike detector's velocity history.
type floatRing struct {
	buf  []float64
	head int
	size int
}

func newFloatRing(capacity int) *floatRing {
	if capacity <= 0 {
		capacity = 1
	}
	return &floatRing{buf: make([]float64, capacity)}
}

func (r *floatRing) push(v float64) {
	tail := (r.head + r.size) % len(r.buf)
	r.buf[tail] = v
	if r.size < len(r.buf) {
		r.size++
	} else {
		r.head = (r.head + 1) % len(r.buf)
	}
}

func (r *floatRing) len() int { return r.size }

func (r *floatRing) at(i int) float64 {
	return r.buf[(r.head+i)%len(r.buf)]
}

func (r *floatRing) last() float64 { return r.at(r.size - 1) }
func (r *floatRing) prev() float64 { return r.at(r.size - 2) }

func (r *floatRing) values() []float64 {
	out := make([]float64, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.at(i)
	}
	return out
}
