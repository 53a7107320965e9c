package internal

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/interfaces"
	"github.com/opd-ai/voxchatter/messaging"
	"github.com/opd-ai/voxchatter/packet"
	testsim "github.com/opd-ai/voxchatter/testing"
)

// Step is one named stage of the scenario.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// ScenarioConfig holds the settings the scenario needs.
type ScenarioConfig struct {
	WorkDir        string
	MessageTimeout time.Duration
	SilenceWait    time.Duration
	EchoDebounce   time.Duration
	Logger         *logrus.Entry
}

// Scenario exercises three stations on one simulated channel. W1AW and
// KC3LZO trust each other's keys; K1ABC is a stranger to both.
type Scenario struct {
	config  *ScenarioConfig
	logger  *logrus.Entry
	channel *testsim.SimulatedChannel
	workDir string
	ownDir  bool

	alice *TestStation // W1AW
	bob   *TestStation // KC3LZO
	carol *TestStation // K1ABC
}

// NewScenario returns a scenario that has not run yet.
func NewScenario(config *ScenarioConfig) *Scenario {
	logger := config.Logger
	if logger == nil {
		logger = logrus.WithField("component", "scenario")
	}
	return &Scenario{config: config, logger: logger}
}

// Steps lists the scenario in execution order.
func (s *Scenario) Steps() []Step {
	return []Step{
		{"Station setup", s.setupStations},
		{"Key exchange", s.exchangeKeys},
		{"Signed message from trusted station", s.testTrustedMessage},
		{"Signed message from unknown station", s.testUnknownStation},
		{"Tampered signature", s.testTamperedSignature},
		{"Unsigned message", s.testUnsignedMessage},
		{"Channel noise", s.testNoise},
	}
}

func (s *Scenario) setupStations(ctx context.Context) error {
	dir := s.config.WorkDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "voxchatter-testnet-")
		if err != nil {
			return fmt.Errorf("create work dir: %w", err)
		}
		dir, s.ownDir = tmp, true
	}
	s.workDir = dir

	s.channel = testsim.NewSimulatedChannel()
	// Every station hears itself, as it would through a digipeater.
	s.channel.SetEchoLoopback(true)

	opts := StationOptions{Signing: true, EchoDebounce: s.config.EchoDebounce}
	var err error
	if s.alice, err = NewTestStation(s.channel, dir, "W1AW", opts); err != nil {
		return err
	}
	if s.bob, err = NewTestStation(s.channel, dir, "KC3LZO", opts); err != nil {
		return err
	}
	if s.carol, err = NewTestStation(s.channel, dir, "K1ABC", opts); err != nil {
		return err
	}

	for _, st := range s.stations() {
		if err := st.Messenger.Open(ctx); err != nil {
			return fmt.Errorf("open %s: %w", st.Station, err)
		}
	}

	s.logger.WithFields(logrus.Fields{
		"work_dir":      dir,
		"echo_debounce": s.config.EchoDebounce.String(),
	}).Info("📡 Stations on the air")
	return nil
}

func (s *Scenario) exchangeKeys(ctx context.Context) error {
	if err := s.alice.Trust(s.bob); err != nil {
		return err
	}
	return s.bob.Trust(s.alice)
}

func (s *Scenario) testTrustedMessage(ctx context.Context) error {
	const text = "CQ CQ de W1AW"
	if _, err := s.alice.Messenger.Send(ctx, "CQ", text, true); err != nil {
		return err
	}
	return s.expectAll(ctx, text, map[*TestStation]expectation{
		s.bob:   {verification: messaging.Valid},
		s.carol: {verification: messaging.KeyNotFound},
		s.alice: {silent: true},
	})
}

func (s *Scenario) testUnknownStation(ctx context.Context) error {
	const text = "K1ABC listening"
	if _, err := s.carol.Messenger.Send(ctx, "CQ", text, true); err != nil {
		return err
	}
	return s.expectAll(ctx, text, map[*TestStation]expectation{
		s.alice: {verification: messaging.KeyNotFound},
		s.bob:   {verification: messaging.KeyNotFound},
		s.carol: {silent: true},
	})
}

func (s *Scenario) testTamperedSignature(ctx context.Context) error {
	const text = "meet on 146.52"
	sig, err := s.alice.Keystore.Sign(text, s.alice.Key.Private)
	if err != nil {
		return err
	}
	sig[len(sig)-1] ^= 0xFF

	forged, err := packet.Assemble(s.alice.Station, ax25.Broadcast, text, sig)
	if err != nil {
		return err
	}
	s.channel.Inject(interfaces.Frame{
		Source:      s.alice.Station,
		Destination: ax25.Broadcast,
		Payload:     forged.Raw,
	})

	// W1AW never sent this exact frame, so its copy is not an echo.
	return s.expectAll(ctx, text, map[*TestStation]expectation{
		s.alice: {verification: messaging.Invalid},
		s.bob:   {verification: messaging.Invalid},
		s.carol: {verification: messaging.KeyNotFound},
	})
}

func (s *Scenario) testUnsignedMessage(ctx context.Context) error {
	const text = "unsigned check"
	if _, err := s.bob.Messenger.Send(ctx, "W1AW", text, false); err != nil {
		return err
	}
	return s.expectAll(ctx, text, map[*TestStation]expectation{
		s.alice: {verification: messaging.NotSigned},
		s.carol: {verification: messaging.NotSigned},
		s.bob:   {silent: true},
	})
}

func (s *Scenario) testNoise(ctx context.Context) error {
	for _, payload := range [][]byte{
		[]byte("=4903.50N/07201.75W-APRS position"),
		{packet.MagicByte0, packet.MagicByte1},
		{packet.MagicByte0, packet.MagicByte1, packet.Version + 1, 0x00, 'x'},
	} {
		s.channel.Inject(interfaces.Frame{
			Source:      ax25.Station{Callsign: "N0CALL"},
			Destination: ax25.Broadcast,
			Payload:     payload,
		})
	}
	return s.expectAll(ctx, "", map[*TestStation]expectation{
		s.alice: {silent: true},
		s.bob:   {silent: true},
		s.carol: {silent: true},
	})
}

type expectation struct {
	verification messaging.Verification
	silent       bool
}

func (s *Scenario) expectAll(ctx context.Context, text string, want map[*TestStation]expectation) error {
	for _, st := range s.stations() {
		exp, ok := want[st]
		if !ok {
			continue
		}
		var err error
		if exp.silent {
			err = st.ExpectSilence(s.config.SilenceWait)
		} else {
			err = st.Expect(ctx, text, exp.verification, s.config.MessageTimeout)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Scenario) stations() []*TestStation {
	var out []*TestStation
	for _, st := range []*TestStation{s.alice, s.bob, s.carol} {
		if st != nil {
			out = append(out, st)
		}
	}
	return out
}

// DeliveryLog returns the frames sent during the scenario.
func (s *Scenario) DeliveryLog() []testsim.DeliveryRecord {
	if s.channel == nil {
		return nil
	}
	return s.channel.DeliveryLog()
}

// Cleanup closes every station and removes a work dir the scenario created.
func (s *Scenario) Cleanup() error {
	var errs []error
	for _, st := range s.stations() {
		if err := st.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", st.Station, err))
		}
	}
	if s.ownDir {
		if err := os.RemoveAll(s.workDir); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("cleanup completed with %d errors: %v", len(errs), errs)
	}
	return nil
}
