package sensors

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/strideway/strided/stream"
	"github.com/strideway/strided/types/sample"
)

// Replay reads an NDJSON sample stream and pushes each decoded document into
// a Feed. With Throttle set, it sleeps between documents to approximate the
// original capture cadence; otherwise it replays as fast as the fusion loop
// drains.
type Replay struct {
	Feed     *Feed
	Throttle time.Duration
	logger   *slog.Logger
}

// NewReplay returns a replayer targeting feed.
func NewReplay(feed *Feed, throttle time.Duration) *Replay {
	return &Replay{
		Feed:     feed,
		Throttle: throttle,
		logger:   slog.Default().With("d", "replay"),
	}
}

// Run decodes lines from r until EOF or ctx cancellation, returning the
// count of delivered samples. Undecodable lines are logged and skipped.
func (r *Replay) Run(ctx context.Context, in io.Reader) (int, error) {
	n := 0
	for line := range stream.RawLines(ctx, in) {
		d, err := sample.DecodeAny(line)
		if err != nil {
			r.logger.Warn("Skipped undecodable line", "error", err)
			continue
		}
		r.Feed.Push(d)
		n++
		if r.Throttle > 0 {
			select {
			case <-ctx.Done():
				return n, ctx.Err()
			case <-time.After(r.Throttle):
			}
		}
	}
	return n, ctx.Err()
}
