package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/decentralizedrights/portal/pkg/errorx"
)

type Configs struct {
	Env string `toml:"env"`

	Log    LogConfigs    `toml:"log"`
	API    APIConfigs    `toml:"api"`
	Chain  ChainConfigs  `toml:"chain"`
	IPFS   IPFSConfigs   `toml:"ipfs"`
	AI     AIConfigs     `toml:"ai"`
	Learn  LearnConfigs  `toml:"learn"`
	State  StateConfigs  `toml:"state"`
	Pinata PinataConfigs `toml:"pinata"`
	Redis  RedisConfigs  `toml:"redis"`
	Kafka  KafkaConfigs  `toml:"kafka"`
}

type LogConfigs struct {
	Level string `toml:"level"`
	JSON  bool   `toml:"json"`
}

type APIConfigs struct {
	URL string `toml:"url"`
}

type ChainConfigs struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID int64  `toml:"chain_id"`

	DeRiToken   string `toml:"deri_token"`
	RightsToken string `toml:"rights_token"`
}

type IPFSConfigs struct {
	Gateway string `toml:"gateway"`
}

type AIConfigs struct {
	URL string `toml:"url"`
}

type LearnConfigs struct {
	URL string `toml:"url"`
}

type StateConfigs struct {
	// Dir holds the client-local state (session, wallet, progress). Empty
	// means the user config directory.
	Dir string `toml:"dir"`
}

type PinataConfigs struct {
	Token string `toml:"token"`
}

type RedisConfigs struct {
	Addr      string `toml:"addr"`
	KeyPrefix string `toml:"key_prefix"`
}

type KafkaConfigs struct {
	Addrs    []string `toml:"addrs"`
	ClientID string   `toml:"client_id"`
	Topic    string   `toml:"topic"`
}

// Names of the environment variables that must resolve to a value, either
// directly or through the config file.
const (
	EnvAPIURL      = "DRP_API_URL"
	EnvRPCURL      = "DRP_RPC_URL"
	EnvChainID     = "DRP_CHAIN_ID"
	EnvIPFSGateway = "DRP_IPFS_GATEWAY"
	EnvAIAPI       = "DRP_AI_API"
	EnvLearnURL    = "DRP_LEARN_URL"
)

func Default() Configs {
	return Configs{
		Env: "production",
		Log: LogConfigs{Level: "INFO"},
		Chain: ChainConfigs{
			DeRiToken:   "0x0000000000000000000000000000000000000001",
			RightsToken: "0x0000000000000000000000000000000000000002",
		},
		Redis: RedisConfigs{KeyPrefix: "drp:gamification:"},
		Kafka: KafkaConfigs{ClientID: "drp-portal", Topic: "drp.gamification"},
	}
}

// Load reads the optional TOML file at path, applies environment overrides
// and validates the required settings. A missing required setting is
// returned immediately as an errorx.Config error.
func Load(path string) (*Configs, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read is Load without the check of required settings, for callers that only
// touch client-local state.
func Read(path string) (*Configs, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, errorx.New(errorx.Config, "Cannot read config file %s: %v", path, err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Configs) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvAPIURL:          &c.API.URL,
		EnvRPCURL:          &c.Chain.RPCURL,
		EnvIPFSGateway:     &c.IPFS.Gateway,
		EnvAIAPI:           &c.AI.URL,
		EnvLearnURL:        &c.Learn.URL,
		"DRP_ENV":          &c.Env,
		"DRP_LOG_LEVEL":    &c.Log.Level,
		"DRP_STATE_DIR":    &c.State.Dir,
		"DRP_PINATA_TOKEN": &c.Pinata.Token,
		"DRP_REDIS_ADDR":   &c.Redis.Addr,
		"DRP_KAFKA_TOPIC":  &c.Kafka.Topic,
		"DRP_DERI_TOKEN":   &c.Chain.DeRiToken,
		"DRP_RIGHTS_TOKEN": &c.Chain.RightsToken,
		"DRP_KAFKA_CLIENT": &c.Kafka.ClientID,
		"DRP_REDIS_PREFIX": &c.Redis.KeyPrefix,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("DRP_KAFKA_ADDRS"); ok && v != "" {
		c.Kafka.Addrs = splitCSV(v)
	}

	if v, ok := lookup("DRP_LOG_JSON"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errorx.New(errorx.Config, "Invalid DRP_LOG_JSON %q", v)
		}
		c.Log.JSON = b
	}

	if v, ok := lookup(EnvChainID); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errorx.New(errorx.Config, "Invalid %s %q: must be an integer", EnvChainID, v)
		}
		c.Chain.ChainID = id
	}

	return nil
}

// Validate reports every missing required setting in one error.
func (c *Configs) Validate() error {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	check(EnvAPIURL, c.API.URL)
	check(EnvRPCURL, c.Chain.RPCURL)
	if c.Chain.ChainID == 0 {
		missing = append(missing, EnvChainID)
	}
	check(EnvIPFSGateway, c.IPFS.Gateway)
	check(EnvAIAPI, c.AI.URL)
	check(EnvLearnURL, c.Learn.URL)

	if len(missing) > 0 {
		return errorx.New(errorx.Config,
			"Missing required environment variable: %s", strings.Join(missing, ", "))
	}

	return nil
}

// StateDir returns the directory holding client-local state.
func (c *Configs) StateDir() (string, error) {
	if c.State.Dir != "" {
		return c.State.Dir, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve user config dir: %w", err)
	}

	return filepath.Join(base, "drp"), nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
