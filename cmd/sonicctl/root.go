package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/RiskIdent/sonicapi/internal/config"
	"github.com/RiskIdent/sonicapi/internal/firewalls"
	"github.com/RiskIdent/sonicapi/internal/logging"
	"github.com/RiskIdent/sonicapi/pkg/sonicos"
)

// cliFirewallID names the firewall built from command line flags alone.
const cliFirewallID = "cli"

// app holds global flag values and the connection shared by subcommands.
type app struct {
	configPath   string
	firewall     string
	host         string
	port         int
	username     string
	password     string
	insecure     bool
	timeout      time.Duration
	reuseSession bool
	commitPolicy string
	logLevel     string
	logFormat    string
	output       string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	manager *firewalls.Manager
}

func newApp() *app {
	return &app{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sonicctl",
		Short: "Manage SonicOS address and service objects",
		Long: `sonicctl reads and changes address objects, address groups, service
objects and service groups on SonicOS firewalls. Every change is committed
to the device configuration once it was accepted.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.output {
			case outputTable, outputJSON, outputYAML:
			default:
				return fmt.Errorf("invalid output format %q (must be table, json or yaml)", a.output)
			}
			a.setupLogging()
			cmd.SetContext(logging.WithContext(cmd.Context(), logging.WithComponent("sonicctl")))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to configuration file")
	flags.StringVarP(&a.firewall, "firewall", "f", "", "Firewall ID from the configuration file (default: first entry)")
	flags.StringVar(&a.host, "host", "", "Firewall address, overrides the configuration file")
	flags.IntVar(&a.port, "port", sonicos.DefaultPort, "HTTPS management port")
	flags.StringVarP(&a.username, "username", "u", "", "Administrator user name")
	flags.StringVarP(&a.password, "password", "p", "", "Administrator password (prompted for when empty)")
	flags.BoolVarP(&a.insecure, "insecure", "k", false, "Skip TLS certificate verification")
	flags.DurationVar(&a.timeout, "timeout", sonicos.DefaultTimeout, "Timeout for each request")
	flags.BoolVar(&a.reuseSession, "reuse-session", false, "Log in once for all requests of this command")
	flags.StringVar(&a.commitPolicy, "commit-policy", "", "When deletes are committed: on-success or legacy")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: trace, debug, info, warning, error (default: warning)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")
	flags.StringVarP(&a.output, "output", "o", outputTable, "Output format: table, json or yaml")

	root.AddCommand(
		newResourceCmd(a, addressObjectsCmd),
		newResourceCmd(a, addressGroupsCmd),
		newResourceCmd(a, serviceObjectsCmd),
		newResourceCmd(a, serviceGroupsCmd),
		newPendingCmd(a),
		newFirewallsCmd(a),
		newVersionCmd(a),
	)
	return root
}

// close logs out of a reused session. Post-run hooks are skipped when a
// command fails, so main calls it as well.
func (a *app) close() {
	if a.manager != nil {
		a.manager.Close()
		a.manager = nil
	}
}

// setupLogging configures the global logger from flags. The configuration
// file may still change it in connect.
func (a *app) setupLogging() {
	level := a.logLevel
	if level == "" {
		level = string(logging.LevelWarning)
	}
	logging.Setup(logging.Options{
		Level:  logging.ParseLevel(level),
		Format: logging.ParseFormat(a.logFormat),
		Output: a.stderr,
	})
}

// connect returns the client for the selected firewall. The configuration
// file is optional; flags given on the command line override its values.
func (a *app) connect(cmd *cobra.Command) (*sonicos.Client, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	id, cc, err := a.clientConfig(cmd, cfg)
	if err != nil {
		return nil, err
	}

	if cc.Password == "" {
		cc.Password, err = a.promptPassword(cc.Username, cc.Host)
		if err != nil {
			return nil, err
		}
	}

	if cfg != nil {
		a.manager, err = firewalls.FromConfig(cfg)
		if err != nil {
			return nil, err
		}
		// replaced by the entry carrying flag overrides and the prompted password
		a.manager.Remove(id)
	} else {
		a.manager = firewalls.NewManager()
	}
	if err := a.manager.Add(id, cc); err != nil {
		return nil, err
	}
	client, err := a.manager.Get(id)
	if err != nil {
		return nil, err
	}

	logging.FromContext(cmd.Context()).Debug("connecting", "firewall", id, "client", client.String())
	return client, nil
}

// loadConfig reads --config, or returns nil when none was given. Logging
// follows the file unless set by flags.
func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath == "" {
		return nil, nil
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if a.logLevel == "" && a.logFormat == "" {
		logging.Setup(logging.Options{
			Level:  logging.ParseLevel(cfg.Logging.Level),
			Format: logging.ParseFormat(cfg.Logging.Format),
			Output: a.stderr,
		})
	}
	return cfg, nil
}

func (a *app) clientConfig(cmd *cobra.Command, cfg *config.Config) (string, sonicos.ClientConfig, error) {
	flags := cmd.Flags()
	id := cliFirewallID
	var cc sonicos.ClientConfig

	if cfg != nil {
		fw := cfg.GetFirewall(a.firewall)
		if fw == nil {
			if a.firewall == "" {
				return "", cc, fmt.Errorf("no firewall configured in %s", a.configPath)
			}
			return "", cc, fmt.Errorf("%w %q in %s", firewalls.ErrUnknownFirewall, a.firewall, a.configPath)
		}
		id = fw.ID
		cc = fw.ClientConfig()
	} else if a.firewall != "" {
		return "", cc, errors.New("--firewall requires --config")
	} else {
		cc.Port = a.port
		cc.Timeout = a.timeout
	}

	if flags.Changed("host") || a.configPath == "" {
		cc.Host = a.host
	}
	if flags.Changed("port") {
		cc.Port = a.port
	}
	if flags.Changed("username") || a.configPath == "" {
		cc.Username = a.username
	}
	if flags.Changed("password") {
		cc.Password = a.password
	}
	if flags.Changed("insecure") {
		cc.InsecureSkipVerify = a.insecure
	}
	if flags.Changed("timeout") {
		cc.Timeout = a.timeout
	}
	if flags.Changed("reuse-session") {
		cc.ReuseSession = a.reuseSession
	}
	if flags.Changed("commit-policy") {
		policy, err := sonicos.ParseCommitPolicy(a.commitPolicy)
		if err != nil {
			return "", cc, err
		}
		cc.CommitPolicy = policy
	}

	if strings.TrimSpace(cc.Host) == "" {
		return "", cc, errors.New("no firewall given: use --host or --config")
	}
	if cc.Username == "" {
		return "", cc, errors.New("--username is required")
	}
	return id, cc, nil
}

// promptPassword reads the password without echo when stdin is a terminal.
func (a *app) promptPassword(username, host string) (string, error) {
	f, ok := a.stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no password given and stdin is not a terminal: use --password or the configuration file")
	}

	fmt.Fprintf(a.stderr, "Password for %s@%s: ", username, host)
	password, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(a.stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the sonicctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "sonicctl %s\n", version)
		},
	}
}
