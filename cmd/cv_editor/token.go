package main

import (
	"fmt"

	"github.com/jonathan/cv-editor/internal/config"
	"github.com/jonathan/cv-editor/internal/server"
	"github.com/spf13/cobra"
)

var tokenSubject string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the AI proxy",
	Long:  "Signs an HS256 token with CV_JWT_SECRET for the given client name. The proxy accepts it until CV_JWT_EXPIRATION_HOURS have passed.",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "Client name recorded as the token subject")
	_ = tokenCmd.MarkFlagRequired("subject")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	token, err := issueToken(tokenSubject)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func issueToken(subject string) (string, error) {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return "", err
	}
	if jwtConfig == nil {
		return "", fmt.Errorf("CV_JWT_SECRET is not set")
	}
	return server.NewTokenService(jwtConfig).GenerateToken(subject)
}
