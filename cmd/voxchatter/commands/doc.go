// Package commands implements the voxchatter command line.
//
//	voxchatter init --callsign KC3LZO
//	voxchatter genkey --make-signing
//	voxchatter addkey W1AW 02c6...
//	voxchatter chat
//	voxchatter send --to W1AW --message "73"
//	voxchatter receive --allow-unsigned
package commands
