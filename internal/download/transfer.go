package download

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// newLimiter returns a byte-rate limiter. Zero means unlimited.
func newLimiter(bytesPerSec, chunkSize int) *rate.Limiter {
	if bytesPerSec <= 0 {
		return rate.NewLimiter(rate.Inf, chunkSize)
	}
	burst := bytesPerSec
	if burst < chunkSize {
		burst = chunkSize
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), burst)
}

// rateLimitedReader throttles reads to the limiter's rate. Reads are clipped
// to the burst so WaitN can always be satisfied.
type rateLimitedReader struct {
	ctx     context.Context
	reader  io.Reader
	limiter *rate.Limiter
}

func newRateLimitedReader(ctx context.Context, r io.Reader, limiter *rate.Limiter) *rateLimitedReader {
	return &rateLimitedReader{ctx: ctx, reader: r, limiter: limiter}
}

func (r *rateLimitedReader) Read(p []byte) (int, error) {
	if b := r.limiter.Burst(); r.limiter.Limit() != rate.Inf && len(p) > b {
		p = p[:b]
	}
	n, err := r.reader.Read(p)
	if n > 0 && r.limiter.Limit() != rate.Inf {
		if werr := r.limiter.WaitN(r.ctx, n); werr != nil {
			return n, werr
		}
	}
	return n, err
}

// progress turns byte counts into fractions and decides when a new
// progress event is worth publishing.
type progress struct {
	expected int64 // -1 when unknown
	written  int64
	step     int64 // last published permille
}

func newProgress(expected int64) *progress {
	return &progress{expected: expected, step: -1}
}

// add records n more bytes and reports whether the permille step advanced
// below completion. The final 1.0 is reported separately once the file is
// in place.
func (p *progress) add(n int) bool {
	p.written += int64(n)
	if p.expected <= 0 {
		return false
	}
	step := p.written * 1000 / p.expected
	if step >= 1000 || step <= p.step {
		return false
	}
	p.step = step
	return true
}

func (p *progress) fraction() float64 {
	if p.expected <= 0 {
		return 0
	}
	f := float64(p.written) / float64(p.expected)
	if f > 1 {
		return 1
	}
	return f
}
