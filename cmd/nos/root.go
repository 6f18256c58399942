package main

import (
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/netease/nos-go-sdk/nos"
	"github.com/netease/nos-go-sdk/nos/credentials"
	"github.com/netease/nos-go-sdk/nos/retry"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app holds what every subcommand needs once the persistent flags are parsed.
type app struct {
	cfgFile string
	debug   bool

	logger *logrus.Logger
	cfg    *viper.Viper
	client *nos.Client

	// overrides the HTTP client built from the configuration
	httpClient nos.HTTPClient
}

func newRootCmd() *cobra.Command {
	return newApp().rootCmd()
}

func newApp() *app {
	return &app{logger: logrus.New()}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "nos",
		Short:         "NOS object storage client",
		Long:          `Upload, download, list and manage objects stored in NetEase Object Storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.debug {
				a.logger.SetLevel(logrus.DebugLevel)
			}
			if err := a.initConfig(cmd); err != nil {
				return err
			}
			a.client = a.newClient()
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.nos.yaml)")
	flags.BoolVar(&a.debug, "debug", false, "log every request attempt to stderr")
	flags.String("endpoint", "", "NOS endpoint, e.g. nos-eastchina1.126.net")
	flags.String("access-key-id", "", "access key id")
	flags.String("access-key-secret", "", "access key secret")
	flags.Bool("ssl", false, "use https")
	flags.Int("max-retries", retry.DefaultMaxRetries, "retries after the first attempt")

	cmd.AddCommand(
		a.putCmd(),
		a.getCmd(),
		a.headCmd(),
		a.rmCmd(),
		a.lsCmd(),
		a.cpCmd(),
		a.mvCmd(),
		a.mpuCmd(),
	)
	return cmd
}

var flagKeys = map[string]string{
	"endpoint":          "endpoint",
	"access_key_id":     "access-key-id",
	"access_key_secret": "access-key-secret",
	"enable_ssl":        "ssl",
	"max_retries":       "max-retries",
}

// initConfig resolves settings from flags, NOS_* environment variables and
// the config file, in that order.
func (a *app) initConfig(cmd *cobra.Command) error {
	v := viper.New()
	v.SetDefault("endpoint", nos.DefaultEndpoint)
	v.SetDefault("max_retries", retry.DefaultMaxRetries)

	v.SetEnvPrefix("nos")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return errors.Wrap(err, "Failed to bind flag "+name)
			}
		}
	}

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "Failed to find home directory")
		}
		v.AddConfigPath(home)
		v.SetConfigName(".nos")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "Failed to load config")
		}
	} else {
		a.logger.Debug("Using config file: " + v.ConfigFileUsed())
	}

	a.cfg = v
	return nil
}

func (a *app) newClient() *nos.Client {
	v := a.cfg
	cfg := nos.LoadDefaultConfig().
		WithEndpoint(v.GetString("endpoint")).
		WithEnableSSL(v.GetBool("enable_ssl")).
		WithMaxRetries(v.GetInt("max_retries")).
		WithLogger(a.logger)

	if id, secret := v.GetString("access_key_id"), v.GetString("access_key_secret"); id != "" {
		cfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(id, secret))
	}
	if d := v.GetDuration("connect_timeout"); d > 0 {
		cfg.WithConnectTimeout(d)
	}
	if d := v.GetDuration("read_write_timeout"); d > 0 {
		cfg.WithReadWriteTimeout(d)
	}
	if a.httpClient != nil {
		cfg.WithHttpClient(a.httpClient)
	}
	return nos.New(cfg)
}

func parseKeyValue(s string) map[string]string {
	if s == "" {
		return nil
	}

	result := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		keyValue := strings.SplitN(pair, "=", 2)
		if len(keyValue) == 2 {
			result[keyValue[0]] = keyValue[1]
		}
	}
	return result
}
