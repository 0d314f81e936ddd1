package audio

// Queue is a FIFO of PCM chunks bounded by the total number of queued
// samples. Pushing past the bound drops the oldest chunks.
type Queue struct {
	pl         [][]float32
	head       int
	tail       int
	size       int
	samples    int
	maxSamples int
}

// NewQueue constructs a queue holding at most maxSamples samples. A bound of
// zero or less means unbounded.
func NewQueue(maxSamples int) *Queue {
	return &Queue{
		pl:         make([][]float32, 16),
		maxSamples: maxSamples,
	}
}

// Clear resets the queue to an empty state
func (q *Queue) Clear() {
	clear(q.pl)
	q.head = 0
	q.tail = 0
	q.size = 0
	q.samples = 0
}

// Push appends chunk and returns how many samples were dropped from the
// front to stay within the bound.
func (q *Queue) Push(chunk []float32) (dropped int) {
	if len(chunk) == 0 {
		return 0
	}
	if q.maxSamples > 0 {
		if len(chunk) > q.maxSamples {
			dropped += len(chunk) - q.maxSamples
			chunk = chunk[len(chunk)-q.maxSamples:]
		}
		for q.size > 0 && q.samples+len(chunk) > q.maxSamples {
			old, _ := q.PopFront()
			dropped += len(old)
		}
	}
	if q.size == len(q.pl) {
		q.grow()
	}
	q.pl[q.head] = chunk
	q.head = (q.head + 1) % len(q.pl)
	q.size++
	q.samples += len(chunk)
	return dropped
}

// grow doubles the ring, unrolling it so tail lands at index 0.
func (q *Queue) grow() {
	pl := make([][]float32, 2*len(q.pl))
	for i := 0; i < q.size; i++ {
		pl[i] = q.pl[(q.tail+i)%len(q.pl)]
	}
	q.pl = pl
	q.tail = 0
	q.head = q.size
}

// Front returns the oldest chunk without removing it.
func (q *Queue) Front() (ret []float32, ok bool) {
	if q.size == 0 {
		return
	}
	return q.pl[q.tail], true
}

// PopFront returns and removes the oldest chunk.
func (q *Queue) PopFront() (ret []float32, ok bool) {
	if q.size == 0 {
		return
	}
	ret = q.pl[q.tail]
	q.pl[q.tail] = nil
	q.tail = (q.tail + 1) % len(q.pl)
	q.size--
	q.samples -= len(ret)
	return ret, true
}

// Len returns the number of queued chunks.
func (q *Queue) Len() int { return q.size }

// Samples returns the number of queued samples.
func (q *Queue) Samples() int { return q.samples }

// Duration returns the queued playback time in seconds.
func (q *Queue) Duration() float64 { return Duration(q.samples) }
