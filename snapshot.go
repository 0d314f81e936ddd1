package main

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/corecast/client/events"
	"github.com/corecast/client/render"
	"github.com/corecast/client/session"
)

const (
	snapshotScaleHeight = 36
	snapshotTickRate    = 60
)

// snapshot runs the session without a window, collecting spectrum frames for
// cfg.SnapshotAfter, then writes the scale, PSD and waterfall as one PNG.
func snapshot(ctx context.Context, sess *session.Session, log *zap.Logger, cfg *Config) error {
	w, h := cfg.SnapshotWidth, cfg.SnapshotHeight
	if w <= 0 || h <= 2*snapshotScaleHeight {
		return fmt.Errorf("snapshot size %dx%d too small", w, h)
	}
	psdH := (h - snapshotScaleHeight) * 2 / 5
	wfH := h - snapshotScaleHeight - psdH

	disp := sess.Display()
	wf := render.NewWaterfall(w, wfH)
	wf.SetRange(disp.MinDb, disp.MaxDb)

	ch := sess.Bus().Subscribe(256)
	sess.Start(ctx)

	frames := 0
	ticker := time.NewTicker(time.Second / snapshotTickRate)
	defer ticker.Stop()
	deadline := time.After(cfg.SnapshotAfter)
loop:
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline:
			break loop
		case <-ticker.C:
			sess.Tick()
		drain:
			for {
				select {
				case ev := <-ch:
					switch e := ev.(type) {
					case events.FrameReceived:
						wf.Push(e.Bins)
						frames++
					case events.ConnectionError:
						return fmt.Errorf("%s: %w", e.Stream, e.Err)
					}
				default:
					break drain
				}
			}
		}
	}
	log.Info("snapshot", zap.Int("frames", frames), zap.String("path", cfg.Snapshot))

	span, win := sess.Span(), sess.Tuning().Window()
	scale := render.NewRaster(w, snapshotScaleHeight)
	render.DrawFreqScale(scale, span, win)
	psd := render.NewRaster(w, psdH)
	render.NewPSD().Draw(psd, sess.Smoothed(), sess.Peak(), span, win)
	rows := render.NewRaster(w, wfH)
	wf.Draw(rows)
	overlay := render.NewRaster(w, wfH)
	render.DrawWaterfallOverlay(overlay, span, win)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(out, out.Bounds(), image.Black, image.Point{}, draw.Src)
	paste := func(src *image.RGBA, y int) {
		draw.Draw(out, src.Bounds().Add(image.Pt(0, y)), src, image.Point{}, draw.Over)
	}
	paste(scale.Image(), 0)
	paste(psd.Image(), snapshotScaleHeight)
	paste(rows.Image(), snapshotScaleHeight+psdH)
	paste(overlay.Image(), snapshotScaleHeight+psdH)

	f, err := os.Create(cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, out); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}
