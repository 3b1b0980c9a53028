package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Alia5/sbcpad/device/joystick"
	"github.com/Alia5/sbcpad/internal/configpaths"
	"github.com/Alia5/sbcpad/internal/journal"
	"github.com/Alia5/sbcpad/internal/log"
	"github.com/Alia5/sbcpad/internal/metrics"
	"github.com/Alia5/sbcpad/profile"
	"github.com/Alia5/sbcpad/sink"
	"github.com/Alia5/sbcpad/sink/logsink"
	"github.com/Alia5/sbcpad/sink/mqtt"
	"github.com/Alia5/sbcpad/sink/uhid"
	"github.com/Alia5/sbcpad/telemetry"
	"github.com/Alia5/sbcpad/translate"
)

// Sink kinds selectable with --sink.
const (
	SinkUHID = "uhid"
	SinkLog  = "log"
	SinkMQTT = "mqtt"
)

type Metrics struct {
	Addr string `help:"Serve /metrics and /healthz on this address (default: disabled)" env:"SBCPAD_METRICS_ADDR"`
}

type MQTT struct {
	Broker      string `help:"MQTT broker URL" default:"tcp://127.0.0.1:1883" env:"SBCPAD_MQTT_BROKER"`
	TopicPrefix string `help:"Topic prefix for state and status topics" default:"sbcpad" env:"SBCPAD_MQTT_TOPIC_PREFIX"`
	ClientID    string `help:"MQTT client id (default: sbcpad-<uuid>)" env:"SBCPAD_MQTT_CLIENT_ID"`
	QoS         byte   `name:"qos" help:"Publish QoS (0, 1 or 2)" default:"0" env:"SBCPAD_MQTT_QOS"`
	Username    string `help:"MQTT username" env:"SBCPAD_MQTT_USERNAME"`
	Password    string `help:"MQTT password" env:"SBCPAD_MQTT_PASSWORD"`
}

// Run connects to a telemetry publisher and drives a virtual device from its
// raw_state events.
type Run struct {
	Host   string `arg:"" optional:"" default:"127.0.0.1" help:"Telemetry publisher host"`
	Port   uint16 `arg:"" optional:"" default:"8765" help:"Telemetry publisher port"`
	Device uint   `arg:"" optional:"" default:"1" help:"Virtual device id"`

	Sink        string        `help:"Output sink: uhid, log, mqtt" enum:"uhid,log,mqtt" default:"uhid" env:"SBCPAD_SINK"`
	UHIDPath    string        `name:"uhid-path" help:"uhid character device" default:"/dev/uhid" env:"SBCPAD_UHID_PATH"`
	Profile     string        `help:"Mapping profile (.yaml, .toml or .json; default: built-in)" type:"path" env:"SBCPAD_PROFILE"`
	DialTimeout time.Duration `help:"Connect timeout" default:"5s" env:"SBCPAD_DIAL_TIMEOUT"`
	Journal     string        `help:"SQLite file journaling non-state events (default: none)" type:"path" env:"SBCPAD_JOURNAL"`

	Metrics Metrics `embed:"" prefix:"metrics."`
	MQTT    MQTT    `embed:"" prefix:"mqtt."`
}

// Run is called by Kong when the run command is executed.
func (r *Run) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return r.run(ctx, logger, rawLogger)
}

func (r *Run) run(ctx context.Context, logger *slog.Logger, rawLogger log.RawLogger) error {
	prof := profile.Default()
	if r.Profile != "" {
		var err error
		if prof, err = profile.Load(r.Profile); err != nil {
			return err
		}
		logger.Info("profile loaded", "path", r.Profile, "buttons", prof.ButtonCount)
	}

	out, err := r.newSink(prof, logger)
	if err != nil {
		return err
	}

	engine := translate.New(out, r.Device, prof, logger)
	if err := engine.Open(); err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("failed to release device", "device", r.Device, "error", err)
		}
	}()

	p := &Pipeline{Engine: engine, Profile: prof, Logger: logger, Raw: rawLogger}

	if r.Metrics.Addr != "" {
		p.Metrics = metrics.New()
		srv, err := metrics.Listen(r.Metrics.Addr, p.Metrics, logger)
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	if r.Journal != "" {
		j, err := journal.Open(r.Journal)
		if err != nil {
			return err
		}
		defer j.Close()
		p.Journal = j
		logger.Info("journaling events", "path", r.Journal, "session", j.Session())
	}

	addr := net.JoinHostPort(r.Host, strconv.Itoa(int(r.Port)))
	reader, err := telemetry.Dial(ctx, addr, &telemetry.Config{DialTimeout: r.DialTimeout})
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("shutting down before connecting", "addr", addr)
			return nil
		}
		return err
	}
	defer reader.Close()
	logger.Info("connected to telemetry publisher", "addr", addr, "device", r.Device, "sink", r.Sink)

	p.Metrics.SetConnected(true)
	defer p.Metrics.SetConnected(false)

	// Closing the connection unblocks the pending read on shutdown.
	stopClose := context.AfterFunc(ctx, func() {
		logger.Info("shutting down")
		_ = reader.Close()
	})
	defer stopClose()

	return p.Serve(ctx, reader.Lines())
}

func (r *Run) newSink(prof profile.Profile, logger *slog.Logger) (sink.Sink, error) {
	buttons := joystick.MaxButtons
	if prof.ButtonCount > 0 {
		buttons = min(prof.ButtonCount+translate.GroupSpan, joystick.MaxButtons)
	}

	switch r.Sink {
	case SinkLog:
		return logsink.New(logger, buttons), nil
	case SinkMQTT:
		return mqtt.New(mqtt.Config{
			Broker:      r.MQTT.Broker,
			ClientID:    r.MQTT.ClientID,
			TopicPrefix: r.MQTT.TopicPrefix,
			QoS:         r.MQTT.QoS,
			Username:    r.MQTT.Username,
			Password:    r.MQTT.Password,
		}, logger)
	case SinkUHID, "":
		cfg := uhid.DefaultConfig(buttons)
		cfg.Path = r.UHIDPath
		cfg.LockDir = configpaths.LockDir()
		cfg.AxisMax = prof.AxisMax
		return uhid.New(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown sink %q", r.Sink)
	}
}
