package commands

import (
	"strings"

	"github.com/opd-ai/voxchatter/messaging"
)

func normalizeCallsign(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// verificationTag is the label shown next to a sender in chat and verbose
// output.
func verificationTag(v messaging.Verification) string {
	switch v {
	case messaging.Valid:
		return "VALID_SIGNATURE"
	case messaging.NotSigned:
		return "NO_SIGNATURE"
	case messaging.Invalid:
		return "INVALID_SIGNATURE"
	case messaging.KeyNotFound:
		return "UNKNOWN_SIGNATURE"
	default:
		return v.String()
	}
}

// chatLine formats a received message for the chat screen.
func chatLine(ev messaging.MessageEvent) string {
	switch ev.Verification {
	case messaging.Valid:
		return ev.From.String() + ": " + ev.Message
	case messaging.NotSigned:
		return ev.From.String() + " (UNSIGNED): " + ev.Message
	case messaging.Invalid:
		return ev.From.String() + " (INVALID SIGNATURE): " + ev.Message
	default:
		return ev.From.String() + " (KEY NOT FOUND): " + ev.Message
	}
}

// verboseLine describes any received packet, accepted or not.
func verboseLine(ev messaging.MessageEvent, raw bool) string {
	var b strings.Builder
	b.WriteString("[verbose] received a packet with ")
	b.WriteString(verificationTag(ev.Verification))
	b.WriteString(" from ")
	b.WriteString(ev.From.String())
	b.WriteString(" to ")
	b.WriteString(ev.To.String())
	b.WriteString(": ")
	if raw {
		b.WriteString(strings.ToValidUTF8(string(ev.Raw), "�"))
	} else {
		b.WriteString(`"` + ev.Message + `"`)
	}
	return b.String()
}

func packetLine(ev messaging.MessageEvent, raw bool) string {
	if raw {
		return strings.ToValidUTF8(string(ev.Raw), "�")
	}
	return ev.Message
}
