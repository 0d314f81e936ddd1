package main

import (
	"context"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/corecast/client/audio"
)

type tuneRequest struct {
	Type string  `json:"type"`
	Freq float64 `json:"freq"`
	Mode string  `json:"mode"`
	BW   float64 `json:"bw"`
	User string  `json:"user_uuid"`
}

type spanRequest struct {
	Type string  `json:"type"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

type waterfallFrame struct {
	Type string    `json:"type"`
	Data []float64 `json:"data"`
}

// Server streams simulated audio and spectra to any number of clients. Each
// connection gets its own band so noise differs per client.
type Server struct {
	cfg      Config
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(cfg Config, log *zap.Logger) *Server {
	return &Server{
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 65536,
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/audio", s.serveAudio)
	mux.HandleFunc("/waterfall", s.serveWaterfall)
	return mux
}

// session runs write on its own goroutine until the peer goes away, while
// the calling goroutine reads requests and hands them to onMessage.
func (s *Server) session(w http.ResponseWriter, r *http.Request, name string, onMessage func([]byte), write func(ctx context.Context, conn *websocket.Conn) error) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade", zap.String("stream", name), zap.Error(err))
		return
	}
	log := s.log.With(zap.String("stream", name), zap.String("remote", r.RemoteAddr))
	log.Info("client connected")

	ctx, cancel := context.WithCancel(r.Context())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Closing unblocks the read loop when the write side fails first.
		defer conn.Close()
		if err := write(ctx, conn); err != nil && ctx.Err() == nil {
			log.Info("write", zap.Error(err))
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		onMessage(msg)
	}
	cancel()
	wg.Wait()
	log.Info("client disconnected")
}

func (s *Server) serveAudio(w http.ResponseWriter, r *http.Request) {
	band := NewBand(defaultStations, s.cfg.NoiseDb, uint64(time.Now().UnixNano()))
	var mu sync.Mutex
	var tune *tuneRequest

	onMessage := func(msg []byte) {
		var req tuneRequest
		if err := json.Unmarshal(msg, &req); err != nil || req.Type != "tune" {
			s.log.Debug("ignored audio message", zap.ByteString("msg", msg))
			return
		}
		s.log.Info("tune", zap.Float64("freq", req.Freq), zap.String("mode", req.Mode), zap.Float64("bw", req.BW), zap.String("user", req.User))
		mu.Lock()
		tune = &req
		mu.Unlock()
	}

	write := func(ctx context.Context, conn *websocket.Conn) error {
		samples := int(math.Round(s.cfg.AudioChunk.Seconds() * audio.SampleRate))
		ticker := time.NewTicker(s.cfg.AudioChunk)
		defer ticker.Stop()
		var buf []byte
		t := 0.0
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			mu.Lock()
			req := tune
			mu.Unlock()
			// Audio flows only once the client has said what to demodulate.
			if req == nil {
				continue
			}
			buf = audio.EncodePCM(buf[:0], band.Audio(req.Freq, req.BW, t, samples))
			t += audio.Duration(samples)
			if err := conn.WriteMessage(websocket.BinaryMessage, buf); err != nil {
				return err
			}
		}
	}
	s.session(w, r, "audio", onMessage, write)
}

func (s *Server) serveWaterfall(w http.ResponseWriter, r *http.Request) {
	band := NewBand(defaultStations, s.cfg.NoiseDb, uint64(time.Now().UnixNano()))
	var mu sync.Mutex
	var span *spanRequest

	onMessage := func(msg []byte) {
		var req spanRequest
		if err := json.Unmarshal(msg, &req); err != nil || req.Type != "span" || !(req.Max > req.Min) {
			s.log.Debug("ignored waterfall message", zap.ByteString("msg", msg))
			return
		}
		s.log.Debug("span", zap.Float64("min", req.Min), zap.Float64("max", req.Max))
		mu.Lock()
		span = &req
		mu.Unlock()
	}

	write := func(ctx context.Context, conn *websocket.Conn) error {
		ticker := time.NewTicker(s.cfg.FrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			mu.Lock()
			req := span
			mu.Unlock()
			if req == nil {
				continue
			}
			msg, err := json.Marshal(waterfallFrame{Type: "waterfall", Data: band.Spectrum(req.Min, req.Max, s.cfg.Bins)})
			if err != nil {
				return err
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
		}
	}
	s.session(w, r, "waterfall", onMessage, write)
}
