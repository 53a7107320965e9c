package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opd-ai/voxchatter/ax25"
)

func TestFilterAccept(t *testing.T) {
	me := ax25.Station{Callsign: "KC3LZO"}
	other := ax25.Station{Callsign: "W1AW"}

	event := func(to ax25.Station, v Verification) MessageEvent {
		return MessageEvent{From: other, To: to, Message: "hi", Verification: v}
	}

	tests := []struct {
		name   string
		filter Filter
		event  MessageEvent
		want   bool
	}{
		{"valid to me", Filter{To: me}, event(me, Valid), true},
		{"valid to CQ", Filter{To: me}, event(ax25.Broadcast, Valid), false},
		{"valid to CQ with broadcast", Filter{To: me, IncludeBroadcast: true}, event(ax25.Broadcast, Valid), true},
		{"filtering on CQ", Filter{To: ax25.Broadcast}, event(ax25.Broadcast, Valid), true},
		{"unsigned to CQ with broadcast", Filter{To: me, IncludeBroadcast: true}, event(ax25.Broadcast, NotSigned), false},
		{"valid to someone else", Filter{To: me}, event(other, Valid), false},
		{"same call other ssid", Filter{To: me}, event(ax25.Station{Callsign: "KC3LZO", SSID: 2}, Valid), false},
		{"all recipients", Filter{To: me, AllRecipients: true}, event(other, Valid), true},
		{"unsigned rejected", Filter{To: me}, event(me, NotSigned), false},
		{"unsigned allowed", Filter{To: me, AllowUnsigned: true}, event(me, NotSigned), true},
		{"untrusted rejected", Filter{To: me}, event(me, KeyNotFound), false},
		{"untrusted allowed", Filter{To: me, AllowUntrusted: true}, event(me, KeyNotFound), true},
		{"invalid rejected", Filter{To: me, AllowUnsigned: true, AllowUntrusted: true}, event(me, Invalid), false},
		{"invalid allowed", Filter{To: me, AllowInvalid: true}, event(me, Invalid), true},
		{"allow all", Filter{To: me, AllowAll: true}, event(other, Invalid), true},
		{"allowed class to someone else", Filter{To: me, AllowUnsigned: true}, event(other, NotSigned), false},
		{"unknown classification", Filter{To: me, AllowUnsigned: true, AllowUntrusted: true, AllowInvalid: true}, event(me, Verification(42)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Accept(tt.event))
		})
	}
}

func TestVerificationString(t *testing.T) {
	assert.Equal(t, "NotSigned", NotSigned.String())
	assert.Equal(t, "KeyNotFound", KeyNotFound.String())
	assert.Equal(t, "Valid", Valid.String())
	assert.Equal(t, "Invalid", Invalid.String())
	assert.Equal(t, "Verification(9)", Verification(9).String())
}
