package ui

import (
	"bytes"
	"strings"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/corecast/client/errutil"
)

var fontFiles = map[string][]byte{
	"Go":        goregular.TTF,
	"Go-Medium": gomedium.TTF,
	"Go-Bold":   gobold.TTF,
	"Go-Mono":   gomono.TTF,
}

var sources sync.Map // map[string]*text.GoTextFaceSource

func loadFontSource(log *zap.Logger, name string) *text.GoTextFaceSource {
	if cached, ok := sources.Load(name); ok {
		return cached.(*text.GoTextFaceSource)
	}
	data, ok := fontFiles[name]
	if !ok {
		log.Fatal("font not found", zap.String("font", name))
	}
	source, err := text.NewGoTextFaceSource(bytes.NewReader(data))
	if err != nil {
		errutil.FatalError(log, "font "+name, err)
	}
	sources.Store(name, source)
	return source
}

var fontCache sync.Map // map[string]*text.Face

// Font returns the face for a "Name-Size" string such as "Go-Mono-12".
func (u *UI) Font(name string) *text.Face {
	if cached, ok := fontCache.Load(name); ok {
		return cached.(*text.Face)
	}

	idx := strings.LastIndex(name, "-")
	if idx == -1 {
		u.log.Fatal("invalid font name: no size", zap.String("font", name))
	}
	size := errutil.MustParseFloat(u.log, name[idx+1:], "font size "+name)
	if size == 0 {
		u.log.Fatal("invalid font name: size must be non-zero", zap.String("font", name))
	}

	var face text.Face = &text.GoTextFace{Source: loadFontSource(u.log, name[:idx]), Size: size}
	fontCache.Store(name, &face)
	return &face
}
