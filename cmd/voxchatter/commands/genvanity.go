package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opd-ai/voxchatter/crypto"
)

// vanityMatcher builds the predicate for genvanity's flags. Public keys
// start with a 02 or 03 parity byte, so a prefix is matched after it.
func vanityMatcher(prefix, suffix, needle string, minCount int) (func(string) bool, string, error) {
	prefix = strings.ToLower(prefix)
	suffix = strings.ToLower(suffix)
	needle = strings.ToLower(needle)

	for _, s := range []string{prefix, suffix, needle} {
		if strings.Trim(s, "0123456789abcdef") != "" {
			return nil, "", fmt.Errorf("%q is not hexadecimal", s)
		}
	}

	switch {
	case prefix != "":
		return func(pub string) bool {
			return len(pub) >= 2+len(prefix) && pub[2:2+len(prefix)] == prefix
		}, "prefix " + prefix, nil
	case suffix != "":
		return func(pub string) bool {
			return strings.HasSuffix(pub, suffix)
		}, "suffix " + suffix, nil
	case needle != "" && minCount > 0:
		return func(pub string) bool {
			return strings.Count(pub, needle) >= minCount
		}, fmt.Sprintf("at least %d '%s's", minCount, needle), nil
	case needle != "":
		return func(pub string) bool {
			return strings.Contains(pub, needle)
		}, "needle " + needle, nil
	default:
		return nil, "", fmt.Errorf("one of --prefix, --suffix or --needle is required")
	}
}

func (a *app) genVanityCmd() *cobra.Command {
	var (
		prefix, suffix, needle string
		minCount               int
		save, makeSigning      bool
	)

	cmd := &cobra.Command{
		Use:   "genvanity",
		Short: "Search for a key pair whose public key matches a pattern",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			match, desc, err := vanityMatcher(prefix, suffix, needle, minCount)
			if err != nil {
				return err
			}
			cfg, path, ks, err := a.loadKeystore(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Generating vanity for %s with %s\n", cfg.Callsign, desc)

			key, tries, err := crypto.GenerateVanity(cmd.Context(), match)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Found after %d keys\n", tries)
			fmt.Fprintf(out, "Public Key: %s\n", key.Public)
			fmt.Fprintf(out, "Private Key: %s\n", key.Private)

			if !save && !makeSigning {
				return nil
			}
			if _, err := ks.AddKeyPair(cfg.Callsign, key.Public, key.Private); err != nil {
				return err
			}
			return a.adoptKey(cfg, path, key, makeSigning)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "hex the public key must start with, after the parity byte")
	cmd.Flags().StringVar(&suffix, "suffix", "", "hex the public key must end with")
	cmd.Flags().StringVar(&needle, "needle", "", "hex the public key must contain")
	cmd.Flags().IntVar(&minCount, "min", 0, "with --needle, the minimum number of occurrences")
	cmd.Flags().BoolVar(&save, "save", false, "add the key pair to the keystore under your callsign")
	cmd.Flags().BoolVar(&makeSigning, "make-signing", false, "save the key pair and make it your signing key")
	return cmd
}
