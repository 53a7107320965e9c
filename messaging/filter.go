package messaging

import "github.com/opd-ai/voxchatter/ax25"

// Filter decides which received messages a consumer shows.
type Filter struct {
	// To is the station messages must be addressed to unless
	// AllRecipients is set.
	To ax25.Station

	// IncludeBroadcast also lets messages to CQ pass the recipient check.
	IncludeBroadcast bool

	AllRecipients  bool
	AllowAll       bool
	AllowUnsigned  bool // NotSigned
	AllowUntrusted bool // KeyNotFound
	AllowInvalid   bool
}

// Accept reports whether event passes the filter.
func (f Filter) Accept(event MessageEvent) bool {
	if f.AllowAll {
		return true
	}
	if !f.AllRecipients && event.To != f.To && !(f.IncludeBroadcast && event.To == ax25.Broadcast) {
		return false
	}

	switch event.Verification {
	case Valid:
		return true
	case NotSigned:
		return f.AllowUnsigned
	case KeyNotFound:
		return f.AllowUntrusted
	case Invalid:
		return f.AllowInvalid
	default:
		return false
	}
}
