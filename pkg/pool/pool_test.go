package pool

import (
	"testing"
)

func TestTypedPoolResetOnPut(t *testing.T) {
	type scratch struct{ n int }
	p := New(
		func() *scratch { return &scratch{} },
		func(s *scratch) { s.n = 0 },
	)

	obj := p.Get()
	obj.n = 42
	p.Put(obj)

	if got := p.Get(); got.n != 0 {
		t.Errorf("reused object not reset, n=%d", got.n)
	}

	allocated, hits := p.Stats()
	if allocated < 1 || hits < 2 {
		t.Errorf("stats allocated=%d hits=%d", allocated, hits)
	}
}

func TestBufferPoolReuse(t *testing.T) {
	buf := GetBuffer()
	buf.B = append(buf.B, 1, 2, 3)
	PutBuffer(buf)

	again := GetBuffer()
	defer PutBuffer(again)
	if len(again.B) != 0 {
		t.Errorf("pooled buffer not reset, len=%d", len(again.B))
	}
}
