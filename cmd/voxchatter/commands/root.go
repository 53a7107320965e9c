package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opd-ai/voxchatter"
	"github.com/opd-ai/voxchatter/ax25"
	"github.com/opd-ai/voxchatter/config"
	"github.com/opd-ai/voxchatter/crypto"
	"github.com/opd-ai/voxchatter/messaging"
)

// app holds the flags shared by every subcommand.
type app struct {
	configPath string
	logLevel   string

	// newNode builds the node for network subcommands. Tests replace it.
	newNode func(cfg *config.Config) (*voxchatter.Node, error)
}

// Execute runs the command line with os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{
		newNode: func(cfg *config.Config) (*voxchatter.Node, error) {
			return voxchatter.New(cfg)
		},
	}
	return a.rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "voxchatter",
		Short:         "Signed chat over amateur packet radio",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return configureLogging(a.logLevel, cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to config file (default ~/.voxchatter/config.json)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	root.AddCommand(
		a.initCmd(),
		a.chatCmd(),
		a.sendCmd(),
		a.receiveCmd(),
		a.addKeyCmd(),
		a.removeKeyCmd(),
		a.showKeyCmd(),
		a.genKeyCmd(),
		a.genVanityCmd(),
	)
	return root
}

func configureLogging(level string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(out)
	return nil
}

// resolveConfigPath returns the config path and whether it is the default.
func (a *app) resolveConfigPath() (string, bool, error) {
	if a.configPath != "" {
		return a.configPath, false, nil
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(dir, config.ConfigFileName), true, nil
}

// loadConfig loads the config file. A missing default config is created
// with defaults; a missing explicit one is an error.
func (a *app) loadConfig(errOut io.Writer) (*config.Config, string, error) {
	path, isDefault, err := a.resolveConfigPath()
	if err != nil {
		return nil, "", err
	}

	if !config.Exists(path) {
		if !isDefault {
			return nil, "", fmt.Errorf("no config file exists at %q", path)
		}
		cfg, err := config.Init(filepath.Dir(path))
		if err != nil {
			return nil, "", err
		}
		fmt.Fprintf(errOut, "Created default config at %s; set your callsign with \"voxchatter init --callsign\".\n", path)
		return cfg, path, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("error loading config file from %q: %w", path, err)
	}
	return cfg, path, nil
}

func (a *app) loadKeystore(errOut io.Writer) (*config.Config, string, *crypto.Keystore, error) {
	cfg, path, err := a.loadConfig(errOut)
	if err != nil {
		return nil, "", nil, err
	}
	ks, err := crypto.OpenKeystore(cfg.KeystoreFile)
	if err != nil {
		return nil, "", nil, err
	}
	return cfg, path, ks, nil
}

// openNode loads the config and opens a node on it. obs, when not nil, is
// installed before the transport opens.
func (a *app) openNode(ctx context.Context, errOut io.Writer, obs messaging.Observer) (*voxchatter.Node, *config.Config, error) {
	cfg, _, err := a.loadConfig(errOut)
	if err != nil {
		return nil, nil, err
	}
	node, err := a.newNode(cfg)
	if err != nil {
		return nil, nil, err
	}
	if obs != nil {
		node.Messenger().SetObserver(obs)
	}
	if err := node.Open(ctx); err != nil {
		_ = node.Close()
		fmt.Fprintf(errOut, "Error opening a connection to the KISS TNC that should be listening at %s. Are you sure your TNC is running?\n", cfg.KISSPort)
		fmt.Fprintln(errOut, `If you have direwolf installed you can start it in another window with "direwolf -p -q d -t 0"`)
		return nil, nil, err
	}
	return node, cfg, nil
}

// callsignArg validates a bare callsign given to a key subcommand.
func callsignArg(s string) (string, error) {
	upper := normalizeCallsign(s)
	if !ax25.IsCallsign(upper) {
		if ax25.IsCallsignSSID(upper) {
			return "", fmt.Errorf("%s is not a valid callsign: key management uses callsigns without an SSID", s)
		}
		return "", fmt.Errorf("%s is not a valid callsign", s)
	}
	return upper, nil
}
