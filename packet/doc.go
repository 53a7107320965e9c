// Package packet implements the voxchatter frame format carried in the
// information field of AX.25 UI frames.
//
// # Frame Format
//
//	[0x7A][0x39][version=0x01][flags][signatureLength?][signature?][payload]
//
//   - Magic (2 bytes): 0x7A 0x39, separating chat frames from other traffic
//     sharing the channel (APRS beacons, BBS forwarding, and so on)
//   - Version (1 byte): only version 1 is accepted
//   - Flags (1 byte): bit 0 compressed, bit 1 signed
//   - Signature length (1 byte): present only when signed; 0x00 encodes 256
//   - Signature: DER encoded ECDSA signature, present only when signed
//   - Payload: the UTF-8 message, raw deflated when the compressed bit is set
//
// Compression is opportunistic: Assemble deflates the message and keeps the
// result only when it is strictly shorter than the UTF-8 bytes. The
// signature is never compressed.
//
// # Errors
//
// Disassemble classifies every rejection as a *CodecError. All codec errors
// match ErrInvalidPacket through errors.Is, so receivers can drop foreign or
// damaged frames without string comparison:
//
//	p, err := packet.Disassemble(src, dst, info)
//	if packet.IsInvalidPacket(err) {
//	    return // channel noise
//	}
package packet
