// Package messaging sends and receives chat messages over a radio transport.
//
// A [Messenger] ties the packet codec, a keystore and an
// interfaces.IFrameTransport together:
//
//	m, err := messaging.New(ks, tr, messaging.Options{
//	    Station:      ax25.Station{Callsign: "KC3LZO"},
//	    SigningKey:   cfg.SigningKey,
//	    EchoDebounce: 5 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	m.SetObserver(messaging.ObserverFuncs{
//	    Message: func(ev messaging.MessageEvent) {
//	        fmt.Printf("%s: %s (%s)\n", ev.From, ev.Message, ev.Verification)
//	    },
//	})
//	if err := m.Open(ctx); err != nil {
//	    return err
//	}
//	_, err = m.Send(ctx, "CQ", "hello", true)
//
// # Trust
//
// Every received message is classified as a [Verification]: NotSigned when
// the frame carries no signature, KeyNotFound when the keystore holds no key
// for the sender, Valid or Invalid otherwise.
//
// # Echo Suppression
//
// A station often hears its own transmission again, repeated by a
// digipeater or looped back by the TNC. With a non-zero EchoDebounce every
// sent frame is fingerprinted and identical frames received within the
// window are dropped. The fingerprint is an xxhash of the addressing and the
// frame bytes; it is only a local dedup heuristic and not meant to resist
// forgery.
//
// Frames that are not voxchatter frames are channel noise and are dropped
// without reaching the observer.
package messaging
