// Package transport connects to a KISS TNC such as direwolf and carries
// chat payloads inside AX.25 UI frames.
//
// # Framing
//
// Outbound payloads are wrapped in an AX.25 UI frame addressed from the
// local station and then KISS encoded:
//
//	FEND | 0x00 | escaped AX.25 frame | FEND
//
// Inbound bytes are split on FEND, unescaped and decoded back into
// interfaces.Frame values. Frames that are not AX.25 UI frames are logged
// and dropped.
//
// # Transports
//
// KISS over TCP, as served by direwolf on port 8001:
//
//	tr := transport.NewTCPTransport("localhost:8001")
//
// KISS over a serial device or the pseudo terminal direwolf creates with -p:
//
//	tr := transport.NewDeviceTransport("/tmp/kisstnc", 9600)
//
// Both return a *KISSTransport that implements interfaces.IFrameTransport.
// Writes are serialized so concurrent Send calls never interleave frames.
package transport
