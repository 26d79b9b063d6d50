package cli

import (
	"bufio"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/mailrelay/internal/client/client"
	"github.com/dmitrijs2005/mailrelay/internal/client/config"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// App is the state shared by every subcommand once flags are parsed.
type App struct {
	config *config.Config
	client *client.Client
	reader *bufio.Reader
	out    io.Writer
}

type rootFlags struct {
	configFile string
	server     string
	token      string
	timeout    time.Duration
}

// NewRootCmd builds the command tree. Input is read from in, output goes to
// out and environment lookups go through getenv.
func NewRootCmd(in io.Reader, out io.Writer, getenv func(string) string) *cobra.Command {
	app := &App{reader: bufio.NewReader(in), out: out}
	var flags rootFlags

	root := &cobra.Command{
		Use:   "mailrelay",
		Short: "Command-line client for the mailrelay service",
		Long: `mailrelay talks to a mailrelay server, which forwards mailbox
operations to mail.tm on behalf of a logged in user.

Log in once, then export the printed token:
  export MAILRELAY_TOKEN=$(mailrelay login -u alice)`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(flags.configFile, getenv)
			if err != nil {
				return err
			}

			pf := cmd.Flags()
			if pf.Changed("server") {
				cfg.ServerEndpointAddr = flags.server
			}
			if pf.Changed("token") {
				cfg.Token = flags.token
			}
			if pf.Changed("timeout") {
				cfg.RequestTimeout = flags.timeout
			}

			app.config = cfg
			app.client = client.New(cfg.ServerEndpointAddr, cfg.RequestTimeout)
			app.client.SetToken(cfg.Token)
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configFile, "config", "c", "", "path to JSON config file")
	pf.StringVar(&flags.server, "server", "", "relay base URL (env "+config.EnvServer+")")
	pf.StringVar(&flags.token, "token", "", "session token (env "+config.EnvToken+")")
	pf.DurationVar(&flags.timeout, "timeout", 0, "request timeout")

	root.AddCommand(
		app.newRegisterCmd(),
		app.newLoginCmd(),
		app.newMeCmd(),
		app.newProviderTokenCmd(),
		app.newCreateAddressCmd(),
		app.newListCmd(),
		app.newGetCmd(),
		app.newSendCmd(),
		app.newDeleteCmd(),
		app.newDomainsCmd(),
	)

	return root
}
