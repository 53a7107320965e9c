package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opd-ai/voxchatter/config"
	"github.com/opd-ai/voxchatter/crypto"
)

func (a *app) addKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addkey <callsign> <publickey>",
		Short: "Trust a public key for a callsign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			callsign, err := callsignArg(args[0])
			if err != nil {
				return err
			}
			_, _, ks, err := a.loadKeystore(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err := ks.AddPublicKey(callsign, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added key for %s\n", callsign)
			return nil
		},
	}
}

func (a *app) removeKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "removekey <callsign> <publickey>",
		Short: "Remove a public key from a callsign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			callsign, err := callsignArg(args[0])
			if err != nil {
				return err
			}
			_, _, ks, err := a.loadKeystore(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			removed, err := ks.Revoke(callsign, args[1])
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed key %s\n", args[1])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Failed to remove key %s, are you sure it exists?\n", args[1])
			}
			return nil
		},
	}
}

func (a *app) showKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "showkey [callsign]",
		Short: "Print the keys held for one or every callsign",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, ks, err := a.loadKeystore(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			callsigns := ks.Callsigns()
			if len(args) == 1 {
				callsign, err := callsignArg(args[0])
				if err != nil {
					return err
				}
				callsigns = []string{callsign}
			}

			out := cmd.OutOrStdout()
			for _, callsign := range callsigns {
				for _, key := range ks.Keys(callsign) {
					fmt.Fprintf(out, "%s Public Key: %s\n", callsign, key.Public)
					if key.Private != "" {
						fmt.Fprintf(out, "%s Private Key: %s\n", callsign, key.Private)
					}
				}
			}
			return nil
		},
	}
}

func (a *app) genKeyCmd() *cobra.Command {
	var makeSigning bool

	cmd := &cobra.Command{
		Use:   "genkey",
		Short: "Generate a key pair for your callsign",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, ks, err := a.loadKeystore(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			key, err := ks.GenKeyPair(cfg.Callsign)
			if err != nil {
				return err
			}
			if err := a.adoptKey(cfg, path, key, makeSigning); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key.Public)
			return nil
		},
	}
	cmd.Flags().BoolVar(&makeSigning, "make-signing", false, "make the generated key your default signing key")
	return cmd
}

// adoptKey records key as the signing key in the config at path when
// makeSigning is set.
func (a *app) adoptKey(cfg *config.Config, path string, key crypto.KeyRecord, makeSigning bool) error {
	if !makeSigning {
		return nil
	}
	cfg.SigningKey = key.Public
	return config.Save(cfg, path)
}
