package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/buildwithgo/amarodoc/middlewares"
)

func newTokenCmd(root *rootOptions) *cobra.Command {
	var subject string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token accepted by the protected operations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := root.load()
			if err != nil {
				return err
			}
			jc := middlewares.NewJWTConfig(
				middlewares.WithSecret(cfg.JWT.Secret),
				middlewares.WithIssuer(cfg.JWT.Issuer),
			)

			now := time.Now()
			claims := jwt.MapClaims{"sub": subject, "iat": now.Unix()}
			if ttl > 0 {
				claims["exp"] = now.Add(ttl).Unix()
			}
			token, err := middlewares.CreateToken(claims, jc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "subject claim of the token")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "lifetime of the token, zero for no expiry")
	return cmd
}
