package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// config is the example dialer's TOML configuration: a single
// BurntSushi/toml.DecodeFile call into a flat struct, no layered env/flag
// overrides.
type config struct {
	URL string `toml:"url"`

	Role        string `toml:"role"`
	InitiatorID string `toml:"initiator_id"`
	ResponderID string `toml:"responder_id"`

	InitiatorAmount string `toml:"initiator_amount"`
	ResponderAmount string `toml:"responder_amount"`
	PushAmount      string `toml:"push_amount"`
	ChannelReserve  string `toml:"channel_reserve"`
	LockPeriod      uint64 `toml:"lock_period"`

	ExistingChannelID string `toml:"existing_channel_id"`
	ExistingFsmID     string `toml:"existing_fsm_id"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return config{}, fmt.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}
