package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/campuscare/campuscare/internal/engine/config"
	"github.com/campuscare/campuscare/internal/engine/service"
	httpx "github.com/campuscare/campuscare/pkg/http"
	"github.com/campuscare/campuscare/pkg/http/jwt"
	"github.com/campuscare/campuscare/pkg/version"
)

/**
 * @file: main.go
 * @description: cli program
 */

var rootCmd = &cobra.Command{
	Use:   "campuscare-cli",
	Short: "campuscare cli is a command line tool",
	Long:  "campuscare cli talks to a running campuscare server and mints tokens for local testing",
	Run: func(cmd *cobra.Command, args []string) {
		err := cmd.Help()
		if err != nil {
			return
		}
	},
}

var (
	serverAddr string
	confFile   string
	timeout    time.Duration
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the server is up and print its version",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		client := httpx.NewClient(serverAddr, timeout)
		if err := client.Ping(ctx); err != nil {
			return err
		}

		var rep struct {
			Detail version.Info `json:"detail"`
		}
		if err := client.GetJSON(ctx, "/version", &rep); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", rep.Detail.String())
		return err
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <userId>",
	Short: "Mint an access token for userId with the configured secret",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(confFile)
		if err != nil {
			return err
		}
		auth := cfg.Http.Auth
		access, _, err := jwt.GenToken(args[0], []byte(auth.SecretKey), auth.AccessTTL(), auth.RefreshTTL())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), access)
		return err
	},
}

var lifecycleCmd = &cobra.Command{
	Use:   "lifecycle",
	Short: "Print the appointment status transitions as a Graphviz digraph",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprint(cmd.OutOrStdout(), service.AppointmentLifecycle.ToDot("appointment"))
		return err
	},
}

func init() {
	healthCmd.Flags().StringVarP(&serverAddr, "server", "s", "http://127.0.0.1:8080", "server base url")
	healthCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	tokenCmd.Flags().StringVarP(&confFile, "conf", "c", "conf.d/config.toml", "conf file path")

	rootCmd.AddCommand(version.VersionCmd, healthCmd, tokenCmd, lifecycleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		panic(err)
	}
}
