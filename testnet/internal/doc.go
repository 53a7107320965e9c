// Package internal runs an over-the-air scenario between simulated
// voxchatter stations and reports each step.
//
// The scenario covers key exchange, every trust classification, echo
// suppression and noise rejection on a testing.SimulatedChannel, so it
// needs neither a TNC nor a radio.
package internal
