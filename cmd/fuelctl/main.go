// Command fuelctl is a command line client for the fuel-swift API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Abin-1409/fuel-swift/internal/apiclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New(), os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries the resolved config down to the subcommands.
type app struct {
	v   *viper.Viper
	out io.Writer
}

func (a *app) client() *apiclient.Client {
	return apiclient.New(a.v.GetString("base_url"), apiclient.WithToken(a.v.GetString("token")))
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(v *viper.Viper, out io.Writer) *cobra.Command {
	a := &app{v: v, out: out}
	root := &cobra.Command{
		Use:           "fuelctl",
		Short:         "Command line client for the fuel-swift API",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v, cmd.Flag("config").Value.String())
		},
	}
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default $HOME/.fuelctl.yaml)")
	pf.String("base-url", "http://localhost:8080", "API base URL")
	pf.String("token", "", "access token")
	_ = v.BindPFlag("base_url", pf.Lookup("base-url"))
	_ = v.BindPFlag("token", pf.Lookup("token"))

	root.AddCommand(
		servicesCmd(a),
		pricesCmd(a),
		stockCmd(a),
		requestCmd(a),
		payCmd(a),
		agentCmd(a),
		adminCmd(a),
		loginCmd(a),
	)
	return root
}

// loadConfig layers flags over FUELCTL_* env vars over the yaml file.
func loadConfig(v *viper.Viper, file string) error {
	v.SetEnvPrefix("FUELCTL")
	v.AutomaticEnv()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".fuelctl")
		v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
