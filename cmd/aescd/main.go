// Command aescd is a minimal example dialer: it loads a channel config from
// a TOML file, opens a session against a node, logs status changes and
// channel errors, and blocks until interrupted. It exists to demonstrate wiring the client
// package together, not as a general-purpose channel CLI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aeternity/aesc-go/client"
	"github.com/aeternity/aesc-go/event"
	"github.com/aeternity/aesc-go/fsm"
	"github.com/aeternity/aesc-go/logging"
	"github.com/aeternity/aesc-go/sign"
	"github.com/aeternity/aesc-go/types"
)

func main() {
	configPath := flag.String("config", "aescd.toml", "path to the channel config file")
	env := flag.String("env", "", "deployment environment tag, e.g. testnet or mainnet")
	flag.Parse()

	log := logging.Setup("aescd", *env)

	if err := run(*configPath, log); err != nil {
		log.Error("aescd exiting", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, log *slog.Logger) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	channelCfg, err := toFSMConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := client.Dial(ctx, client.Config{
		URL:     cfg.URL,
		Channel: channelCfg,
		Signer:  autoAcceptSigner{log: log},
		Log:     log,
	})
	if err != nil {
		return fmt.Errorf("dialing: %w", err)
	}
	defer c.Close()

	c.On(event.StatusChanged, func(payload interface{}) {
		p := payload.(event.StatusChangedPayload)
		log.Info("status changed", "old", p.Old, "new", p.New)
	})
	c.On(event.Error, func(payload interface{}) {
		p := payload.(event.ErrorPayload)
		log.Warn("channel error", "error", p.Err)
	})

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

func toFSMConfig(cfg config) (fsm.Config, error) {
	role := types.RoleInitiator
	if cfg.Role == "responder" {
		role = types.RoleResponder
	}

	initiatorAmount, err := types.ParseAmount(orZero(cfg.InitiatorAmount))
	if err != nil {
		return fsm.Config{}, err
	}
	responderAmount, err := types.ParseAmount(orZero(cfg.ResponderAmount))
	if err != nil {
		return fsm.Config{}, err
	}
	pushAmount, err := types.ParseAmount(orZero(cfg.PushAmount))
	if err != nil {
		return fsm.Config{}, err
	}
	channelReserve, err := types.ParseAmount(orZero(cfg.ChannelReserve))
	if err != nil {
		return fsm.Config{}, err
	}

	return fsm.Config{
		Role:              role,
		InitiatorID:       types.Address(cfg.InitiatorID),
		ResponderID:       types.Address(cfg.ResponderID),
		InitiatorAmount:   initiatorAmount,
		ResponderAmount:   responderAmount,
		PushAmount:        pushAmount,
		ChannelReserve:    channelReserve,
		LockPeriod:        cfg.LockPeriod,
		ExistingChannelID: types.ChannelID(cfg.ExistingChannelID),
		ExistingFsmID:     types.FsmID(cfg.ExistingFsmID),
	}, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// autoAcceptSigner signs whatever the node asks for. It stands in for a
// real wallet/HSM integration, which is out of this example's scope (and
// out of the client package's scope entirely, per its Signer interface).
type autoAcceptSigner struct {
	log *slog.Logger
}

func (s autoAcceptSigner) Sign(ctx context.Context, tx types.TxBlob, meta sign.Meta) (sign.Result, error) {
	s.log.Debug("auto-signing", "tx", tx)
	return sign.Signed(tx), nil
}

func (s autoAcceptSigner) SignTagged(ctx context.Context, tag types.SignTag, tx types.TxBlob, meta sign.Meta) (sign.Result, error) {
	s.log.Debug("auto-signing", "tag", tag, "tx", tx)
	return sign.Signed(tx), nil
}
