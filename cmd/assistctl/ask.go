package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Domenick1991/tripassist/internal/auth"
	"github.com/Domenick1991/tripassist/internal/bootstrap"
	"github.com/Domenick1991/tripassist/internal/service/assistant"
)

func newAskCmd(load configLoader) *cobra.Command {
	var userID string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Send one message to the assistant and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}

			log := logrus.New()
			log.SetOutput(io.Discard)
			if verbose {
				log.SetOutput(cmd.ErrOrStderr())
				log.SetLevel(logrus.DebugLevel)
			}

			app, err := bootstrap.Build(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer app.Close()

			reply := app.Assistant.Handle(cmd.Context(), userID, strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", assistant.DefaultUserID, "conversation owner")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	return cmd
}

func newTokenCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "token <user_id>",
		Short: "Issue a bearer token that pins requests to one conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if !cfg.Auth.Enabled() {
				return fmt.Errorf("auth.jwt_secret is not configured")
			}
			token, err := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL()).GenerateToken(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
}
