package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	apperrors "passit-client/internal/common/errors"
	"passit-client/internal/common/logger"
	"passit-client/internal/config"
	dc "passit-client/internal/domain/claim"
	dw "passit-client/internal/domain/wallet"
	"passit-client/internal/platform/ledger"
	"passit-client/internal/service/artifact"
	"passit-client/internal/service/claim"
	"passit-client/internal/service/poller"
	"passit-client/internal/service/preflight"
	"passit-client/internal/service/profile"
	"passit-client/internal/service/wallet"
)

type clientEnv struct {
	cfg    *config.Config
	ledger *ledger.Client
	log    zerolog.Logger
}

func setup(c *cli.Context) (*clientEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if c.IsSet("ledger") {
		cfg.Ledger.BaseURL = c.String("ledger")
	}
	if c.IsSet("share-base") {
		cfg.Artifacts.ShareBaseURL = c.String("share-base")
	}
	if c.IsSet("poll-interval") {
		cfg.Polling.Interval = c.Duration("poll-interval")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.InitWithWriter("passit", cfg.Debug, c.App.ErrWriter)
	return &clientEnv{
		cfg:    cfg,
		ledger: ledger.New(cfg.Ledger.BaseURL, cfg.Ledger.Timeout, log.Logger),
		log:    log.Logger,
	}, nil
}

func (e *clientEnv) generator() *artifact.Generator {
	return artifact.NewGenerator(e.cfg.Artifacts.ShareBaseURL, artifact.NewRenderer(nil, e.log), e.log)
}

func arg(c *cli.Context, name string) (string, error) {
	v := strings.TrimSpace(c.Args().First())
	if v == "" {
		return "", cli.Exit(fmt.Sprintf("missing %s; usage: passit %s %s", name, c.Command.Name, c.Command.ArgsUsage), 2)
	}
	return v, nil
}

// fail prints the user-facing message of err and exits non-zero.
func fail(err error) error {
	return cli.Exit(apperrors.UserMessage(err), 1)
}

func runValidate(c *cli.Context) error {
	token, err := arg(c, "token")
	if err != nil {
		return err
	}
	env, err := setup(c)
	if err != nil {
		return err
	}
	if err := preflight.NewService(env.ledger, env.log).Validate(c.Context, token); err != nil {
		return fail(err)
	}
	fmt.Fprintf(c.App.Writer, "%s: valid\n", token)
	return nil
}

func runClaim(c *cli.Context) error {
	token, err := arg(c, "token")
	if err != nil {
		return err
	}
	env, err := setup(c)
	if err != nil {
		return err
	}

	f := claim.NewFlow(uuid.NewString(), token, claim.Deps{
		Preflight: preflight.NewService(env.ledger, env.log),
		Submitter: claim.NewSubmitter(env.ledger, env.log),
		Poller:    poller.New(env.ledger, env.cfg.Polling.Interval, env.cfg.Polling.MaxAttempts, env.log),
		Log:       env.log,
	}, claim.FlowOptions{
		PollInterval:    env.cfg.Polling.Interval,
		PollMaxAttempts: env.cfg.Polling.MaxAttempts,
	})
	defer f.Teardown()

	if err := f.Start(c.Context); err != nil {
		return fail(err)
	}
	if err := f.SetIdentity(identityFromFlags(c)); err != nil {
		return fail(err)
	}
	if err := f.SetProof(c.String("proof")); err != nil {
		return fail(err)
	}
	if c.IsSet("chain") {
		if err := f.SelectChain(dw.Chain(c.String("chain"))); err != nil {
			return fail(err)
		}
	}

	snaps, unsubscribe := f.Subscribe()
	defer unsubscribe()
	if err := f.SubmitClaim(c.Context); err != nil {
		return fail(err)
	}

	snap, err := awaitTerminal(c.Context, c, snaps)
	if err != nil {
		return err
	}
	if snap.Phase == dc.PhaseError {
		return cli.Exit(snap.Message, 1)
	}
	if snap.Tx != nil && snap.Tx.TxHash != "" {
		fmt.Fprintf(c.App.Writer, "tx: %s\n", snap.Tx.TxHash)
		if snap.Tx.ExplorerLink != "" {
			fmt.Fprintf(c.App.Writer, "explorer: %s\n", snap.Tx.ExplorerLink)
		}
	}

	g := env.generator()
	term := &artifact.Terminal{OutDir: c.String("out"), Out: c.App.Writer}
	for _, card := range g.Cards(snap.ChildTokens) {
		d, err := g.Download(c.Context, card, term)
		if err != nil {
			// a card failure never undoes the claim
			fmt.Fprintf(c.App.ErrWriter, "card %d: %s\n", card.Number(), apperrors.UserMessage(err))
			continue
		}
		if d.Location != "" {
			fmt.Fprintf(c.App.Writer, "card %d: %s (%s)\n", card.Number(), d.Location, card.ShortID)
		}
	}
	return nil
}

// awaitTerminal prints every phase change until the flow settles.
func awaitTerminal(ctx context.Context, c *cli.Context, snaps <-chan dc.Snapshot) (dc.Snapshot, error) {
	var last dc.Snapshot
	for {
		select {
		case snap, ok := <-snaps:
			if !ok {
				return last, cli.Exit("claim flow closed", 1)
			}
			if snap.Phase != last.Phase || snap.Message != last.Message {
				fmt.Fprintf(c.App.Writer, "[%s] %s\n", snap.Phase, snap.Message)
			}
			last = snap
			if snap.Phase.Terminal() {
				return snap, nil
			}
		case <-ctx.Done():
			return last, cli.Exit("interrupted", 130)
		}
	}
}

func identityFromFlags(c *cli.Context) *dw.Identity {
	id := &dw.Identity{Subject: "cli"}
	if addr := strings.TrimSpace(c.String("address")); addr != "" {
		id.Accounts = append(id.Accounts, dw.Account{Kind: dw.KindLinked, Family: wallet.Classify(addr), Address: addr})
	}
	if addr := strings.TrimSpace(c.String("embedded")); addr != "" {
		id.Accounts = append(id.Accounts, dw.Account{Kind: dw.KindEmbedded, Address: addr})
	}
	if len(id.Accounts) == 0 {
		return nil
	}
	return id
}

func runStatus(c *cli.Context) error {
	claimID, err := arg(c, "claimId")
	if err != nil {
		return err
	}
	env, err := setup(c)
	if err != nil {
		return err
	}

	if !c.Bool("watch") {
		st, err := env.ledger.ClaimStatus(c.Context, claimID)
		if err != nil {
			return fail(err)
		}
		printStatus(c, st)
		return nil
	}

	done := make(chan error, 1)
	cancel := poller.New(env.ledger, env.cfg.Polling.Interval, env.cfg.Polling.MaxAttempts, env.log).
		Start(claimID, poller.Options{
			OnUpdate:   func(st dc.TxStatus) { printStatus(c, st) },
			OnComplete: func(dc.TxStatus) { done <- nil },
			OnError:    func(err error) { done <- err },
		})
	defer cancel()

	select {
	case err := <-done:
		if err != nil {
			return fail(err)
		}
		return nil
	case <-c.Context.Done():
		return cli.Exit("interrupted", 130)
	}
}

func printStatus(c *cli.Context, st dc.TxStatus) {
	line := fmt.Sprintf("%s: %s", st.ClaimID, st.Status)
	if st.TxHash != "" {
		line += " tx=" + st.TxHash
	}
	if st.Blockchain != "" {
		line += " chain=" + st.Blockchain
	}
	if st.Error != "" {
		line += " error=" + st.Error
	}
	fmt.Fprintln(c.App.Writer, line)
}

func runProfile(c *cli.Context) error {
	address, err := arg(c, "address")
	if err != nil {
		return err
	}
	env, err := setup(c)
	if err != nil {
		return err
	}
	p, err := profile.NewService(env.ledger, nil, env.log).Profile(c.Context, address)
	if err != nil {
		return fail(err)
	}

	if p.Address == "" {
		p.Address = address
	}
	w := c.App.Writer
	fmt.Fprintf(w, "wallet: %s\nrank:   #%d\npoints: %d\n", wallet.ShortAddress(p.Address), p.Rank, p.Points)
	fmt.Fprintf(w, "active codes: %d\n", len(p.ActiveTokens))
	for _, t := range p.ActiveTokens {
		fmt.Fprintf(w, "  %s\n", artifact.ShortID(t))
	}
	if len(p.Leaderboard) > 0 {
		fmt.Fprintln(w, "leaderboard:")
		for i, e := range p.Leaderboard {
			fmt.Fprintf(w, "  %2d. %s %d\n", i+1, wallet.ShortAddress(e.Address), e.Points)
		}
	}
	return nil
}

func runCard(c *cli.Context) error {
	token, err := arg(c, "token")
	if err != nil {
		return err
	}
	env, err := setup(c)
	if err != nil {
		return err
	}

	g := env.generator()
	card := g.Cards([]dc.Token{token})[0]
	term := &artifact.Terminal{OutDir: c.String("out"), Out: c.App.Writer, PrintCommand: c.String("print-command")}

	var d artifact.Delivery
	if c.Bool("pdf") || term.PrintCommand != "" {
		d, err = g.Print(c.Context, card, term)
	} else {
		d, err = g.Download(c.Context, card, term)
	}
	if err != nil {
		return fail(err)
	}
	switch d.Method {
	case artifact.DeliverySave:
		fmt.Fprintln(c.App.Writer, d.Location)
	case artifact.DeliveryPrint:
		fmt.Fprintf(c.App.Writer, "sent %s to %s\n", d.File, term.PrintCommand)
	}
	return nil
}

func runScan(c *cli.Context) error {
	raw := strings.Join(c.Args().Slice(), " ")
	token, ok := artifact.TokenFromScan(raw)
	if !ok {
		return cli.Exit("no pass-it token found", 1)
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}
