package main

import (
	"cmp"
	"net/http"

	"github.com/picatz/chatgpt"
	"github.com/picatz/chatgpt/internal/config"
	"github.com/picatz/chatgpt/internal/logging"
	"github.com/picatz/chatgpt/session"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// app is the state shared by every command of one invocation.
type app struct {
	configPath string
	model      string
	logLevel   string

	cfg    *config.Config
	log    *log.Logger
	client *chatgpt.Client
	sess   session.Session
}

// setup loads the configuration and the logger. Flags override the file and
// the environment.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.model != "" {
		cfg.Model = a.model
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	logger, err := logging.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg, a.log = cfg, logger
	return nil
}

// connect builds the API client. Commands that work offline never call it.
func (a *app) connect() error {
	if a.client != nil {
		return nil
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	a.client = chatgpt.NewClient(a.cfg.APIKey,
		chatgpt.WithBaseURL(a.cfg.APIHost),
		chatgpt.WithOrganization(a.cfg.Organization),
		chatgpt.WithHTTPClient(&http.Client{Timeout: cmp.Or(a.cfg.Timeout, chatgpt.DefaultTimeout)}),
		chatgpt.WithLogger(a.log),
		chatgpt.WithUserAgent("chatgpt-cli/"+version),
	)
	a.sess = session.New(a.client)

	a.log.WithField("host", a.client.BaseURL).Debug("client ready")
	return nil
}

// modelOr returns the --model flag, or def when it was not given.
func (a *app) modelOr(def string) string {
	return cmp.Or(a.model, def)
}

func connected(a *app) func(*cobra.Command, []string) error {
	return func(*cobra.Command, []string) error {
		return errors.Wrap(a.connect(), "connect")
	}
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "chatgpt",
		Short:         "Command line client for the OpenAI API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $HOME/"+config.DefaultFile+")")
	flags.StringVarP(&a.model, "model", "m", "", "model to use, overriding the configured one")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newChatCommand(a),
		newCompleteCommand(a),
		newEditCommand(a),
		newImageCommand(a),
		newEmbedCommand(a),
		newFilesCommand(a),
		newAudioCommand(a),
		newBillingCommand(a),
		newTokensCommand(a),
		newModelsCommand(a),
	)

	return root
}
