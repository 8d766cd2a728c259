// Package config loads the TOML file that tells a process how many peers
// exist in each role and where that role's group address is.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/paxoscore/multipaxos/internal/transport"
)

// Role is one table in the config file: how many processes play this role
// and the group address they share.
type Role struct {
	Size int    `toml:"size"`
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Address converts a role table into the group address the transport
// layer understands.
func (r Role) Address() transport.GroupAddress {
	return transport.GroupAddress{Host: r.Host, Port: r.Port}
}

// Config is the full file: one table per role.
type Config struct {
	Clients   Role `toml:"clients"`
	Proposers Role `toml:"proposers"`
	Acceptors Role `toml:"acceptors"`
	Learners  Role `toml:"learners"`
}

// Majority computes the acceptor majority ⌊N/2⌋+1 a proposer needs to
// precompute at construction time.
func (c Config) Majority() int {
	return Majority(c.Acceptors.Size)
}

// Majority is ⌊N/2⌋+1 for N acceptors.
func Majority(n int) int {
	return n/2 + 1
}

// Load parses a TOML config file. Any parse error is fatal to the caller;
// there is no partial start.
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}
