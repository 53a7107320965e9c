package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/config"
	"github.com/opd-ai/voxchatter/crypto"
)

type initFlags struct {
	callsign string
	ssid     int
	nick     string
	kissPort string
	kissBaud int
}

func (a *app) initCmd() *cobra.Command {
	var f initFlags

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or update the config file and keystore",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _, err := a.resolveConfigPath()
			if err != nil {
				return err
			}
			dir := filepath.Dir(path)

			cfg := config.Default(dir)
			if config.Exists(path) {
				if cfg, err = config.Load(path); err != nil {
					return err
				}
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := os.MkdirAll(dir, 0o700); err != nil {
				return fmt.Errorf("create %s: %w", dir, err)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			if _, err := crypto.OpenKeystore(cfg.KeystoreFile); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote %s\n", path)
			fmt.Fprintf(out, "Station %s, KISS TNC at %s\n", cfg.Station(), cfg.KISSPort)
			if cfg.SigningKey == "" {
				fmt.Fprintln(out, `No signing key yet. Run "voxchatter genkey --make-signing" to create one.`)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.callsign, "callsign", "", "your callsign")
	cmd.Flags().IntVar(&f.ssid, "ssid", 0, "your SSID (0-15)")
	cmd.Flags().StringVar(&f.nick, "nick", "", "display name")
	cmd.Flags().StringVar(&f.kissPort, "kiss-port", "", `KISS TNC device path or "tcp://host:port"`)
	cmd.Flags().IntVar(&f.kissBaud, "kiss-baud", 0, "KISS TNC serial baud rate")
	return cmd
}

// apply copies the flags the user set onto cfg.
func (f *initFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("callsign") {
		cfg.Callsign = normalizeCallsign(f.callsign)
	}
	if flags.Changed("ssid") {
		if !ax25.IsSSID(f.ssid) {
			return fmt.Errorf("--ssid must be between 0 and 15, got %d", f.ssid)
		}
		cfg.SSID = uint8(f.ssid)
	}
	if flags.Changed("nick") {
		cfg.Nick = f.nick
	}
	if flags.Changed("kiss-port") {
		cfg.KISSPort = f.kissPort
	}
	if flags.Changed("kiss-baud") {
		cfg.KISSBaud = f.kissBaud
	}
	return nil
}
