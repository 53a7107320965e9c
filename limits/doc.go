// Package limits provides centralized size constants and validation functions
// for voxchatter frames. It keeps the signature bound, the KISS frame bound and
// the decompression bound consistent across the packet codec, the transport
// and the keystore.
//
// # Size Hierarchy
//
//   - MaxSignatureSize (256 bytes): the largest signature a frame can carry.
//     The frame header stores the length in a single byte, so 256 is encoded
//     as 0x00 (see the packet package).
//
//   - MaxKISSFrame (4096 bytes): the largest KISS data frame the transport
//     will reassemble. Longer runs of bytes without a frame delimiter are
//     discarded as line noise.
//
//   - MaxFramePayload (4080 bytes): MaxKISSFrame less the AX.25 UI header.
//     The messenger refuses to send a frame larger than this.
//
//   - MaxProcessingBuffer (1MB): the absolute maximum for any decoded
//     buffer, including inflated message payloads. This bounds the damage a
//     crafted deflate stream can do.
//
// # Validation Functions
//
//	if err := limits.ValidateSignature(sig); err != nil {
//	    return err // ErrSignatureTooLarge
//	}
//
// Assembled frames are checked before they are handed to a transport:
//
//	if err := limits.ValidateFrameSize(p.Raw); err != nil {
//	    return err // wraps ErrFrameTooLarge
//	}
package limits
