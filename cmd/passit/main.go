package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "passit",
		Usage: "redeem pass-it tokens and print invitation cards",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "ledger", Usage: "ledger API base URL", EnvVars: []string{"LEDGER_BASE_URL"}},
			&cli.StringFlag{Name: "share-base", Usage: "origin used in card links", EnvVars: []string{"SHARE_BASE_URL"}},
			&cli.DurationFlag{Name: "poll-interval", Usage: "status polling interval", EnvVars: []string{"POLL_INTERVAL"}},
			&cli.BoolFlag{Name: "debug", Usage: "verbose logging to stderr", EnvVars: []string{"DEBUG"}},
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "check that a token can still be redeemed",
				ArgsUsage: "<token>",
				Action:    runValidate,
			},
			{
				Name:      "claim",
				Usage:     "redeem a token and save the resulting cards",
				ArgsUsage: "<token>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "address", Usage: "linked wallet address"},
					&cli.StringFlag{Name: "embedded", Usage: "embedded wallet address"},
					&cli.StringFlag{Name: "proof", Usage: "human-verification proof", Required: true},
					&cli.StringFlag{Name: "chain", Usage: "destination network (solana, base, ethereum, bnb)"},
					&cli.StringFlag{Name: "out", Usage: "directory for card images; empty prints QR codes"},
				},
				Action: runClaim,
			},
			{
				Name:      "status",
				Usage:     "show the transaction status of a claim",
				ArgsUsage: "<claimId>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "watch", Usage: "poll until the transaction settles"},
				},
				Action: runStatus,
			},
			{
				Name:      "profile",
				Usage:     "show rank, points and active codes of a wallet",
				ArgsUsage: "<address>",
				Action:    runProfile,
			},
			{
				Name:      "card",
				Usage:     "render the card of a token",
				ArgsUsage: "<token>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "pdf", Usage: "A4 print sheet instead of the front image"},
					&cli.StringFlag{Name: "out", Usage: "output directory; empty prints the QR code"},
					&cli.StringFlag{Name: "print-command", Usage: "send the print sheet to this command, e.g. lp"},
				},
				Action: runCard,
			},
			{
				Name:      "scan",
				Usage:     "extract the token from scanned QR text",
				ArgsUsage: "<text>",
				Action:    runScan,
			},
		},
	}
}
