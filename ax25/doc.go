// Package ax25 implements the parts of the AX.25 link layer voxchatter needs.
//
// A [Station] is an amateur radio identity: a callsign of one to six
// uppercase letters or digits plus a secondary station identifier (SSID)
// between 0 and 15. Stations are written "KC3LZO" when the SSID is zero and
// "KC3LZO-1" otherwise.
//
//	st, err := ax25.ParseStation("KC3LZO-1")
//	if err != nil {
//	    // ErrInvalidCallsign or ErrInvalidSSID
//	}
//	fmt.Println(st) // KC3LZO-1
//
// # UI Frames
//
// Chat traffic travels in unnumbered information (UI) frames. EncodeUI builds
// the destination and source address fields, control byte 0x03 and PID 0xF0
// around an opaque information field. Decode accepts frames with digipeater
// paths and returns the trimmed stations; it rejects anything that is not a
// UI frame with ErrInvalidFrame, which callers treat as channel noise.
//
// Connected-mode (I and S frames), FCS calculation and digipeater path
// generation are not implemented; the TNC handles the FCS and voxchatter
// only sends direct UI frames.
package ax25
