// Command corecast-sim serves simulated audio and waterfall streams for
// developing the client without a receiver.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/vimeo/dials"
	"github.com/vimeo/dials/sources/env"
	"github.com/vimeo/dials/sources/flag"
	"go.uber.org/zap"
)

type Config struct {
	Addr          string        `dialsdesc:"Listen address" dialsflag:"addr"`
	Bins          int           `dialsdesc:"Spectrum bins per frame" dialsflag:"bins"`
	FrameInterval time.Duration `dialsdesc:"Time between spectrum frames" dialsflag:"frame-interval"`
	AudioChunk    time.Duration `dialsdesc:"Length of each audio message" dialsflag:"audio-chunk"`
	NoiseDb       float64       `dialsdesc:"Noise floor in dB" dialsflag:"noise-db"`
}

func defaultConfig() *Config {
	return &Config{
		Addr:          ":8080",
		Bins:          1024,
		FrameInterval: 50 * time.Millisecond,
		AudioChunk:    20 * time.Millisecond,
		NoiseDb:       -100,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config := defaultConfig()
	flagSrc, err := flag.NewCmdLineSet(flag.DefaultFlagNameConfig(), config)
	if err != nil {
		panic(err)
	}
	d, err := dials.Config(ctx, config, &env.Source{}, flagSrc)
	if err != nil {
		panic(err)
	}
	config = d.View()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	srv := &http.Server{
		Addr:    config.Addr,
		Handler: NewServer(*config, log).Handler(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", zap.String("addr", config.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("serve", zap.Error(err))
	}
}
