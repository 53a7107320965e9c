// Package interfaces defines the contract between the message layer and the
// radio transports that carry its frames.
//
// [IFrameTransport] is an opaque duplex channel. It accepts a payload
// addressed from one station to another and delivers received payloads
// tagged with their source and destination stations. How the payload reaches
// the air (AX.25 UI framing inside KISS over TCP or a serial device in
// production, an in-memory channel in tests) is the implementation's concern.
//
//	tr, err := factory.NewTransportFactory().CreateTransport(cfg)
//	if err != nil {
//	    return err
//	}
//	tr.SetFrameHandler(func(f interfaces.Frame) {
//	    fmt.Printf("%s>%s %d bytes\n", f.Source, f.Destination, len(f.Payload))
//	})
//	if err := tr.Open(ctx); err != nil {
//	    return err
//	}
//
// Lifecycle events are reported through a [LifecycleObserver]. Transport
// failures that happen outside a call, such as the read loop losing its
// connection, are only visible there.
//
// Implementations must be safe for concurrent use. Frame handlers are called
// from a single goroutine, one frame at a time, in arrival order.
package interfaces
