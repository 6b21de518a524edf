// Package cmd implements the openboard command-line client.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/openboard/openboard/client"
	"github.com/openboard/openboard/session"
	bboltstorage "github.com/openboard/openboard/storage/bbolt"
)

var (
	apiURL    string
	stateFile string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "openboard",
	Short: "openboard is a command-line client for the OpenBoard forum",
	Long: `A command-line client for the OpenBoard community forum.

The session survives between invocations: log in once, then browse and post
until the session expires or you log out.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "Base URL of the forum API")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state-file", "", "Session state file (default $HOME/.openboard/state.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("state_file", rootCmd.PersistentFlags().Lookup("state-file"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	viper.AddConfigPath(filepath.Join(home, ".openboard"))
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")

	viper.SetEnvPrefix("OPENBOARD")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

func statePath() (string, error) {
	if p := viper.GetString("state_file"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".openboard", "state.db"), nil
}

func newLogger() zerolog.Logger {
	if !viper.GetBool("verbose") {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

// openClient opens the persisted session and hydrates it. The returned
// cleanup closes the state file and must always run.
func openClient(cmd *cobra.Command) (*client.Client, func(), error) {
	path, err := statePath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("creating state directory: %w", err)
	}

	store, err := bboltstorage.NewStoreFromFile(path, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("opening session state: %w", err)
	}

	log := newLogger()
	base := viper.GetString("api_url")
	m := session.NewManager(base, store, session.WithLogger(log))
	if err := m.Hydrate(cmd.Context()); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("restoring session: %w", err)
	}

	cleanup := func() { _ = store.Close() }
	return client.New(base, m, client.WithLogger(log)), cleanup, nil
}
