// Package mqtt implements a sink that publishes device state to an MQTT
// broker instead of driving local hardware. Consumers subscribe to
//
//	<prefix>/<device>/state   retained JSON state, published on change
//	<prefix>/<device>/status  retained "online"/"offline" (also the will)
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/Alia5/sbcpad/sink"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesce     = 250 // milliseconds
	maxQoS                = 2
)

var (
	// ErrPublishFailed is returned when the broker does not accept a publish.
	ErrPublishFailed = errors.New("mqtt: publish failed")
	// ErrInvalidQoS is returned for QoS levels other than 0, 1 or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")
)

// Config holds the broker connection settings.
type Config struct {
	Broker      string
	ClientID    string
	TopicPrefix string
	QoS         byte
	Username    string
	Password    string
}

// client is the subset of pahomqtt.Client the sink uses.
type client interface {
	Connect() pahomqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

type device struct {
	pressed map[uint]bool
	axes    map[sink.Axis]int
	last    []byte
}

// Sink publishes device state over MQTT.
type Sink struct {
	cfg       Config
	logger    *slog.Logger
	newClient func(*pahomqtt.ClientOptions) client
	client    client
	devices   map[uint]*device
}

// StatePayload is the JSON document published on the state topic.
type StatePayload struct {
	Device  uint              `json:"device"`
	Pressed []uint            `json:"pressed"`
	Axes    map[sink.Axis]int `json:"axes"`
}

// New creates an MQTT sink. The broker is contacted on the first Acquire.
func New(cfg Config, logger *slog.Logger) (*Sink, error) {
	if cfg.QoS > maxQoS {
		return nil, ErrInvalidQoS
	}
	if cfg.Broker == "" {
		return nil, errors.New("mqtt: broker url is required")
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "sbcpad"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "sbcpad-" + uuid.NewString()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		cfg:    cfg,
		logger: logger,
		newClient: func(o *pahomqtt.ClientOptions) client {
			return pahomqtt.NewClient(o)
		},
		devices: map[uint]*device{},
	}, nil
}

func (s *Sink) statusTopic(id uint) string { return fmt.Sprintf("%s/%d/status", s.cfg.TopicPrefix, id) }
func (s *Sink) stateTopic(id uint) string  { return fmt.Sprintf("%s/%d/state", s.cfg.TopicPrefix, id) }

func (s *Sink) Acquire(id uint) error {
	if _, ok := s.devices[id]; ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrUnavailable)
	}
	if s.client == nil {
		opts := pahomqtt.NewClientOptions()
		opts.AddBroker(s.cfg.Broker)
		opts.SetClientID(s.cfg.ClientID)
		if s.cfg.Username != "" {
			opts.SetUsername(s.cfg.Username)
			opts.SetPassword(s.cfg.Password)
		}
		opts.SetCleanSession(true)
		opts.SetAutoReconnect(false)
		opts.SetConnectTimeout(defaultConnectTimeout)
		opts.SetWill(s.statusTopic(id), "offline", s.cfg.QoS, true)

		c := s.newClient(opts)
		token := c.Connect()
		if !token.WaitTimeout(defaultConnectTimeout) {
			return fmt.Errorf("mqtt connect %s: timeout: %w", s.cfg.Broker, sink.ErrUnavailable)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect %s: %w: %w", s.cfg.Broker, sink.ErrUnavailable, err)
		}
		s.client = c
		s.logger.Info("mqtt sink connected", "broker", s.cfg.Broker, "client_id", s.cfg.ClientID)
	}

	if err := s.publish(s.statusTopic(id), []byte("online")); err != nil {
		if len(s.devices) == 0 {
			s.disconnect()
		}
		return err
	}
	s.devices[id] = &device{pressed: map[uint]bool{}, axes: map[sink.Axis]int{}}
	return nil
}

func (s *Sink) SetButton(id uint, button uint, pressed bool) error {
	d, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	if pressed {
		d.pressed[button] = true
	} else {
		delete(d.pressed, button)
	}
	return nil
}

func (s *Sink) SetAxis(id uint, axis sink.Axis, value int) error {
	d, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	d.axes[axis] = value
	return nil
}

// Flush publishes the state when it differs from the last published one.
func (s *Sink) Flush(id uint) error {
	d, ok := s.devices[id]
	if !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}

	p := StatePayload{Device: id, Pressed: make([]uint, 0, len(d.pressed)), Axes: d.axes}
	for b := range d.pressed {
		p.Pressed = append(p.Pressed, b)
	}
	slices.Sort(p.Pressed)

	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	if slices.Equal(b, d.last) {
		return nil
	}
	if err := s.publish(s.stateTopic(id), b); err != nil {
		return err
	}
	d.last = b
	return nil
}

func (s *Sink) Release(id uint) error {
	if _, ok := s.devices[id]; !ok {
		return fmt.Errorf("device %d: %w", id, sink.ErrNotAcquired)
	}
	delete(s.devices, id)

	err := s.publish(s.statusTopic(id), []byte("offline"))
	if len(s.devices) == 0 {
		s.disconnect()
	}
	return err
}

func (s *Sink) disconnect() {
	if s.client == nil {
		return
	}
	s.client.Disconnect(disconnectQuiesce)
	s.client = nil
	s.logger.Info("mqtt sink disconnected", "broker", s.cfg.Broker)
}

func (s *Sink) publish(topic string, payload []byte) error {
	token := s.client.Publish(topic, s.cfg.QoS, true, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: %s: timeout after %v", ErrPublishFailed, topic, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}
