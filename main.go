package main

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/vimeo/dials"
	"github.com/vimeo/dials/sources/env"
	"github.com/vimeo/dials/sources/flag"
	"go.uber.org/zap"

	"github.com/corecast/client/errutil"
	"github.com/corecast/client/persistence"
	"github.com/corecast/client/session"
	"github.com/corecast/client/ui"
)

type Config struct {
	Debug          bool          `dialsdesc:"Verbose logging" dialsflag:"debug"`
	Snapshot       string        `dialsdesc:"Write a PNG of the spectrum to this path and exit, without opening a window" dialsflag:"snapshot"`
	SnapshotAfter  time.Duration `dialsdesc:"How long to collect spectrum frames before taking the snapshot" dialsflag:"snapshot-after"`
	SnapshotWidth  int           `dialsdesc:"Snapshot width in pixels"`
	SnapshotHeight int           `dialsdesc:"Snapshot height in pixels"`
	UI             ui.Config
	Session        session.Config
}

var config *Config

func defaultConfig() *Config {
	return &Config{
		SnapshotAfter:  3 * time.Second,
		SnapshotWidth:  1024,
		SnapshotHeight: 600,
		UI:             ui.DefaultConfig(),
		Session:        session.DefaultConfig(),
	}
}

func newLogger(debug bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	config = defaultConfig()
	flagSrc, err := flag.NewCmdLineSet(flag.DefaultFlagNameConfig(), config)
	if err != nil {
		panic(err)
	}
	d, err := dials.Config(mainCtx, config, &env.Source{}, flagSrc)
	if err != nil {
		panic(err)
	}
	config = d.View()

	log := newLogger(config.Debug)
	defer log.Sync()

	userUUID := ""
	if store, err := persistence.NewClientStore(); err != nil {
		errutil.LogError(log, "client id store", err)
	} else if userUUID, err = store.LoadOrCreate(); err != nil {
		errutil.LogError(log, "client id", err)
	}

	sess, err := session.New(session.Options{
		Config:   config.Session,
		UserUUID: userUUID,
		Log:      log.Named("session"),
	})
	if err != nil {
		errutil.FatalError(log, "session", err)
	}
	defer sess.Close()

	if config.Snapshot != "" {
		if err := snapshot(mainCtx, sess, log, config); err != nil {
			errutil.FatalError(log, "snapshot", err)
		}
		return
	}

	u := ui.NewUI(config.UI, sess, log.Named("ui"))

	// Subscribe before anything can publish.
	go u.HandleEvents(sess.Bus().Subscribe(256))

	sess.Start(mainCtx)

	if err := ebiten.RunGame(u); err != nil {
		errutil.FatalError(log, "run", err)
	}
}
