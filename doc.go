// Package voxchatter is a chat system for amateur packet radio.
//
// Messages travel as AX.25 UI frames through a KISS TNC such as direwolf.
// They are optionally deflate-compressed and optionally signed with a
// secp256k1 key so that listeners can tell who sent them. Nothing is
// encrypted: amateur operators may not obscure the meaning of a
// transmission, so the payload of every frame stays readable by anyone
// with the right decoder.
//
// # Getting Started
//
// A [Node] is built from a config file and owns the keystore, the
// transport and the messenger:
//
//	cfg, err := config.Init(dir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	node, err := voxchatter.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer node.Close()
//
//	node.Messenger().SetObserver(messaging.ObserverFuncs{
//	    Message: func(ev messaging.MessageEvent) {
//	        fmt.Printf("%s -> %s: %s [%s]\n", ev.From, ev.To, ev.Message, ev.Verification)
//	    },
//	})
//
//	if err := node.Open(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	_, err = node.Messenger().Send(ctx, "CQ", "hello from the shack", true)
//
// # Packages
//
//   - ax25: stations and UI frames
//   - compression: raw deflate used when it shrinks a message
//   - crypto: keystore, key generation, signing
//   - packet: the voxchatter frame format
//   - transport: KISS framing and the TCP and device transports
//   - testing: a simulated radio channel for tests
//   - factory: builds a transport from configuration and environment
//   - messaging: send, receive, echo suppression and trust classification
//   - config: the on-disk configuration
//
// # Testing
//
// Set VOXCHATTER_USE_SIMULATION=true, or use [WithTransportFactory] with a
// factory whose config has UseSimulation set, to run nodes on an in-memory
// channel instead of a TNC.
package voxchatter
