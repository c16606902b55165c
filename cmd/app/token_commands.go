package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/cct/cmd/app/commands"
	"github.com/allisson/cct/internal/app"
	"github.com/allisson/cct/internal/config"
)

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Value:   "text",
	Usage:   "Output format: 'text' or 'json'",
}

func getTokenCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "issue-token",
			Usage: "Issue a capability token for a tenant from its current state",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "client-id",
					Aliases:  []string{"c"},
					Required: true,
					Usage:    "Tenant/client id the token is bound to",
				},
				&cli.IntFlag{
					Name:    "ttl",
					Aliases: []string{"t"},
					Usage:   "Token lifetime in seconds (0 uses CCT_DEFAULT_TTL_SECONDS)",
				},
				&cli.StringSliceFlag{
					Name:  "cap",
					Usage: "Capability override, repeatable (ignored in production)",
				},
				formatFlag,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tokenUseCase, err := container.TokenUseCase()
				if err != nil {
					return err
				}

				return commands.RunIssueToken(
					ctx,
					tokenUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("client-id"),
					int64(cmd.Int("ttl")),
					cmd.StringSlice("cap"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "verify-token",
			Usage: "Verify a capability token signature, structure and expiry",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Required: true,
					Usage:    "Token to verify",
				},
				formatFlag,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				// Verification never reads tenant state, so the codec alone is enough.
				codec, err := container.TokenCodec()
				if err != nil {
					return err
				}

				return commands.RunVerifyToken(
					ctx,
					commands.NewCodecVerifier(codec),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("token"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "show-tenant-state",
			Usage: "Show the normalized tenant state the guard evaluates",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "tenant-id",
					Aliases:  []string{"t"},
					Required: true,
					Usage:    "Tenant id",
				},
				&cli.BoolFlag{
					Name:  "fresh",
					Usage: "Bypass the cache and read the source",
				},
				formatFlag,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				tenantStateUseCase, err := container.TenantStateUseCase()
				if err != nil {
					return err
				}

				return commands.RunShowTenantState(
					ctx,
					tenantStateUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("tenant-id"),
					cmd.Bool("fresh"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "hash-issuer-key",
			Usage: "Hash an issuer key for CCT_ISSUER_KEY_HASH (generates one when omitted)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "key",
					Aliases: []string{"k"},
					Usage:   "Issuer key to hash",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				return commands.RunHashIssuerKey(container.Logger(), commands.DefaultIO().Writer, cmd.String("key"))
			},
		},
		{
			Name:  "create-signing-secret",
			Usage: "Generate a token signing secret, optionally encrypted with KMS",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "Keeper URI (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container := app.NewContainer(config.Load())
				return commands.RunCreateSigningSecret(
					ctx,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
