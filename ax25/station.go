package ax25

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/opd-ai/voxchatter/limits"
)

var (
	// ErrInvalidCallsign indicates a callsign outside 1-6 characters of [A-Z0-9].
	ErrInvalidCallsign = errors.New("invalid callsign")

	// ErrInvalidSSID indicates an SSID outside [0, 15].
	ErrInvalidSSID = errors.New("invalid SSID")
)

// Station is an AX.25 address. It is a comparable value type.
type Station struct {
	Callsign string
	SSID     uint8
}

// Broadcast is the conventional "calling any station" destination.
var Broadcast = Station{Callsign: "CQ"}

// NewStation validates and builds a Station.
func NewStation(callsign string, ssid int) (Station, error) {
	if !IsCallsign(callsign) {
		return Station{}, fmt.Errorf("%w: %q", ErrInvalidCallsign, callsign)
	}
	if !IsSSID(ssid) {
		return Station{}, fmt.Errorf("%w: %d", ErrInvalidSSID, ssid)
	}
	return Station{Callsign: callsign, SSID: uint8(ssid)}, nil
}

// ParseStation parses "CALL" or "CALL-SSID". The callsign is not uppercased;
// callers that accept user input should do that first.
func ParseStation(s string) (Station, error) {
	callsign, ssidText, hasSSID := strings.Cut(s, "-")
	if !hasSSID {
		return NewStation(callsign, 0)
	}
	ssid, err := strconv.Atoi(ssidText)
	if err != nil || ssidText == "" || strings.ContainsAny(ssidText, "+-") {
		return Station{}, fmt.Errorf("%w: %q", ErrInvalidSSID, ssidText)
	}
	return NewStation(callsign, ssid)
}

// MustParseStation is ParseStation for constants and tests. It panics on error.
func MustParseStation(s string) Station {
	st, err := ParseStation(s)
	if err != nil {
		panic(err)
	}
	return st
}

// String formats the station, omitting a zero SSID.
func (s Station) String() string {
	if s.SSID == 0 {
		return s.Callsign
	}
	return s.Callsign + "-" + strconv.Itoa(int(s.SSID))
}

// Validate reports whether the station satisfies the address invariants.
func (s Station) Validate() error {
	_, err := NewStation(s.Callsign, int(s.SSID))
	return err
}

// IsCallsign reports whether s is 1-6 characters of [A-Z0-9].
func IsCallsign(s string) bool {
	if len(s) == 0 || len(s) > limits.MaxCallsignLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// IsSSID reports whether n is an addressable SSID.
func IsSSID(n int) bool {
	return n >= 0 && n <= limits.MaxSSID
}

// IsCallsignSSID reports whether s is a callsign with an explicit SSID
// suffix, such as "KC3LZO-1".
func IsCallsignSSID(s string) bool {
	if !strings.Contains(s, "-") {
		return false
	}
	_, err := ParseStation(s)
	return err == nil
}
