// Package testing provides an in-memory radio channel for deterministic tests
// of the message layer.
//
// # Overview
//
// A [SimulatedChannel] stands in for the air between stations. Every
// [SimulatedTransport] attached to it implements
// interfaces.IFrameTransport; a frame sent on one transport is delivered
// synchronously to the frame handler of every other open transport, the way
// every station on frequency hears every transmission:
//
//	ch := testing.NewSimulatedChannel()
//	alice := ch.NewTransport("alice")
//	bob := ch.NewTransport("bob")
//	bob.SetFrameHandler(func(f interfaces.Frame) { fmt.Println(f.Source) })
//	_ = alice.Open(ctx)
//	_ = bob.Open(ctx)
//	_ = alice.Send(ctx, frame) // bob's handler has run when Send returns
//
// # Echoes
//
// With [SimulatedChannel.SetEchoLoopback] enabled the sender also hears its
// own frame, as it would when a digipeater repeats it. This exercises echo
// suppression.
//
// # Delivery Logs
//
// The channel records a [DeliveryRecord] for every send attempt. Use
// DeliveryLog to inspect it and ClearDeliveryLog between cases.
//
// # Failure Injection
//
// FailNextSend makes the next Send on a transport fail with a transport
// error and SetOpenBlocked makes Open wait for its context to expire.
package testing
