// Package factory builds the transport a node talks through.
//
// The kissPort setting selects the implementation:
//
//	tcp://localhost:8001   KISS over TCP (direwolf's default KISS port)
//	/tmp/kisstnc           KISS over a serial device or pseudo terminal
//
// and UseSimulation selects an in-memory channel from the testing package.
//
// # Environment Overrides
//
// Settings can be overridden without editing the config file:
//
//	VOXCHATTER_KISS_PORT        replaces kissPort
//	VOXCHATTER_OPEN_TIMEOUT_MS  replaces the open timeout, 100 to 600000
//	VOXCHATTER_USE_SIMULATION   true selects the in-memory channel
//
// Values that fail to parse or fall out of range are logged and ignored.
//
// # Usage
//
//	f := factory.NewTransportFactory()
//	tr, err := f.CreateTransportWithConfig(&interfaces.TransportConfig{
//	    KISSPort:    "tcp://localhost:8001",
//	    OpenTimeout: 5 * time.Second,
//	})
package factory
