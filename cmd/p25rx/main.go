// Command p25rx decodes a raw little-endian float32 C4FM sample stream into
// framed P25 Phase 1 messages.
package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/config"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/duid"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/framer"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/metrics"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/ratelog"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/rawstream"
	"github.com/scramblr/sdrtrunk-decode-decrypt/internal/symbol"
)

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "Path to YAML configuration file.")
		inputPath   = pflag.StringP("input", "i", "-", "Raw little-endian float32 sample file, or - for stdin.")
		metricsAddr = pflag.String("metrics-addr", "", "Bind address for Prometheus metrics (overrides config).")
		recordPath  = pflag.String("record", "", "Write the raw bitstream to this zstd-compressed file (overrides config).")
		help        = pflag.BoolP("help", "h", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: p25rx [options]\n\nDecodes a raw C4FM sample stream into framed P25 Phase 1 messages.\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("p25rx: %v", err)
		}
		cfg = loaded
	}
	if *metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.BindAddr = *metricsAddr
	}
	if *recordPath != "" {
		cfg.RawStream.RecordPath = *recordPath
	}

	logger := log.New(os.Stderr, "p25rx: ", log.LstdFlags)
	limiter := ratelog.New(logger, ratelog.DefaultSuppressAfter)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		m = metrics.New(registry)

		path := cfg.Metrics.MetricPath
		if path == "" {
			path = "/metrics"
		}
		mux := http.NewServeMux()
		mux.Handle(path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.BindAddr, mux); err != nil {
				logger.Printf("metrics server stopped: %v", err)
			}
		}()
		logger.Printf("serving metrics on %s%s", cfg.Metrics.BindAddr, path)
	}

	sink := &stdoutSink{cfg: cfg, logger: logger, metrics: m}
	f := framer.NewFramer(sink)
	f.SetLogger(limiter.Keyed("framer"))

	proc, err := symbol.NewProcessor(cfg.SampleRate, &metricsListener{framer: f, metrics: m})
	if err != nil {
		log.Fatalf("p25rx: %v", err)
	}
	proc.SetLogger(limiter.Keyed("symbol"))

	var rawConsumers []func([]byte)

	if cfg.RawStream.RecordPath != "" {
		out, err := os.Create(cfg.RawStream.RecordPath)
		if err != nil {
			log.Fatalf("p25rx: opening record path: %v", err)
		}
		defer out.Close()

		rec, err := rawstream.NewRecorder(out)
		if err != nil {
			log.Fatalf("p25rx: %v", err)
		}
		defer rec.Close()

		rawConsumers = append(rawConsumers, func(b []byte) {
			if err := rec.Write(b); err != nil {
				logger.Printf("recording write failed: %v", err)
			}
		})
	}

	if cfg.RawStream.WebsocketAddr != "" {
		hub := rawstream.NewHub(logger)
		mux := http.NewServeMux()
		mux.Handle("/raw", hub)
		go func() {
			if err := http.ListenAndServe(cfg.RawStream.WebsocketAddr, mux); err != nil {
				logger.Printf("raw-stream websocket server stopped: %v", err)
			}
		}()
		logger.Printf("serving raw dibit stream on ws://%s/raw", cfg.RawStream.WebsocketAddr)

		rawConsumers = append(rawConsumers, hub.Broadcast)
	}

	if len(rawConsumers) > 0 {
		proc.SetRawListener(func(b []byte) {
			for _, consume := range rawConsumers {
				consume(b)
			}
		})
	}

	in, err := openInput(*inputPath)
	if err != nil {
		log.Fatalf("p25rx: %v", err)
	}
	defer in.Close()

	if err := run(proc, in); err != nil && err != io.EOF {
		log.Fatalf("p25rx: %v", err)
	}
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// run reads raw little-endian float32 samples from r in fixed-size chunks
// and feeds them to proc until EOF.
func run(proc *symbol.Processor, r io.Reader) error {
	const chunkSamples = 4096
	raw := make([]byte, chunkSamples*4)
	samples := make([]float64, chunkSamples)

	for {
		n, err := io.ReadFull(r, raw)
		if n > 0 {
			count := n / 4
			for i := 0; i < count; i++ {
				bits := binary.LittleEndian.Uint32(raw[i*4 : i*4+4])
				samples[i] = float64(math.Float32frombits(bits))
			}
			proc.Receive(samples[:count])
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// stdoutSink logs each framed payload whose NAC passes the allow-list and
// every sync loss, and counts sync losses into metrics when enabled.
type stdoutSink struct {
	cfg     config.Config
	logger  *log.Logger
	metrics *metrics.Metrics
}

func (s *stdoutSink) DeliverPayload(p framer.FramedPayload) {
	if !s.cfg.Allows(p.NAC) {
		return
	}
	s.logger.Printf("payload stream=%s nac=%d duid=%s valid_nid=%t bits=%d",
		p.StreamID, p.NAC, p.DUID, p.ValidNID, p.BitCount)
}

func (s *stdoutSink) DeliverSyncLoss(l framer.SyncLoss) {
	if s.metrics != nil {
		s.metrics.SyncLossTotal.Inc()
	}
	s.logger.Printf("sync loss stream=%s bits=%d protocol=%s", l.StreamID, l.BitCount, l.Protocol)
}

// metricsListener wraps a *framer.Framer so the raw per-dibit stream still
// reaches the MessageListener interface symbol.Processor expects, while
// NID outcomes also update Prometheus metrics. It implements
// symbol.NIDBitErrorReporter to pick up the corrected bit-error count ahead
// of the matching SyncDetected call.
type metricsListener struct {
	framer  *framer.Framer
	metrics *metrics.Metrics

	pendingBitErrors int
}

func (l *metricsListener) Receive(d symbol.Dibit) { l.framer.Receive(d) }

func (l *metricsListener) NIDBitErrors(count int) { l.pendingBitErrors = count }

func (l *metricsListener) SyncDetected(nac int, id duid.DUID, validNID bool) {
	l.framer.SyncDetected(nac, id, validNID)
	if l.metrics != nil {
		if validNID {
			l.metrics.SetSyncLock(true)
		}
		l.metrics.RecordNID(validNID, l.pendingBitErrors)
	}
	l.pendingBitErrors = 0
}
