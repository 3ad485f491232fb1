package datafeed

import (
	"io"
	"sync"
)

// MemSource is an in-memory Source serving a fixed set of chunks.
type MemSource struct {
	mu     sync.Mutex
	chunks [][]Record
	next   int
	rows   int64
}

func NewMemSource(chunks [][]Record) *MemSource {
	var rows int64
	for _, c := range chunks {
		rows += int64(len(c))
	}
	return &MemSource{chunks: chunks, rows: rows}
}

func (s *MemSource) EstimatedRows() int64 { return s.rows }

func (s *MemSource) NextChunk() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.next]
	s.next++
	return chunk, nil
}

// MemFeed is an in-memory Feed fed by Publish.
type MemFeed struct {
	recordCh  chan Record
	closeOnce sync.Once
	closedCh  chan struct{}
}

func NewMemFeed(buffer int) *MemFeed {
	return &MemFeed{
		recordCh: make(chan Record, buffer),
		closedCh: make(chan struct{}),
	}
}

// Publish appends a record to the feed. Returns io.ErrClosedPipe if the
// feed was closed.
func (f *MemFeed) Publish(rec Record) error {
	select {
	case <-f.closedCh:
		return io.ErrClosedPipe
	default:
	}
	select {
	case f.recordCh <- rec:
		return nil
	case <-f.closedCh:
		return io.ErrClosedPipe
	}
}

func (f *MemFeed) Next() (Record, error) {
	// Drain buffered records before honoring close, so nothing published
	// before Close is lost.
	select {
	case rec := <-f.recordCh:
		return rec, nil
	default:
	}
	select {
	case rec := <-f.recordCh:
		return rec, nil
	case <-f.closedCh:
		return Record{}, io.EOF
	}
}

func (f *MemFeed) Close() error {
	f.closeOnce.Do(func() { close(f.closedCh) })
	return nil
}

// MemSink is an in-memory Sink collecting everything written to it.
type MemSink struct {
	mu   sync.Mutex
	recs []Record
}

func NewMemSink() *MemSink { return &MemSink{} }

func (s *MemSink) Write(recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, recs...)
	return nil
}

// Records returns a copy of everything written so far.
func (s *MemSink) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record{}, s.recs...)
}
