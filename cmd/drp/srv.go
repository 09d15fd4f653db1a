package main

import (
	"context"
	"fmt"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/internal/domain"
	"github.com/decentralizedrights/portal/internal/gamification"
	"github.com/decentralizedrights/portal/internal/wallet"
	"github.com/decentralizedrights/portal/pkg/api/drp"
	"github.com/decentralizedrights/portal/pkg/api/elder"
	"github.com/decentralizedrights/portal/pkg/api/learn"
	"github.com/decentralizedrights/portal/pkg/api/orbit"
	"github.com/decentralizedrights/portal/pkg/api/pinata"
	"github.com/decentralizedrights/portal/pkg/kafka"
	"github.com/decentralizedrights/portal/pkg/localstore"
	"github.com/decentralizedrights/portal/pkg/logger"
	"github.com/decentralizedrights/portal/pkg/session"
	"github.com/decentralizedrights/portal/pkg/xcontext"
	"github.com/decentralizedrights/portal/pkg/xredis"

	"github.com/urfave/cli/v2"
)

type srv struct {
	app *cli.App
	ctx context.Context

	configs *config.Configs
	logger  logger.Logger
	store   *localstore.Store

	drpEndpoint    *drp.Endpoint
	elderEndpoint  *elder.Endpoint
	orbitEndpoint  *orbit.Endpoint
	pinataEndpoint *pinata.Endpoint
	learnEndpoint  *learn.Endpoint

	wallets      *wallet.Manager
	proofDomain  domain.ProofDomain
	rewardDomain domain.RewardDomain

	engine  *gamification.Engine
	closers []func() error
}

// loadConfig reads the config file and the environment. Offline commands
// only need the local state, so the remote settings stay optional for them.
func (s *srv) loadConfig(ct *cli.Context, online bool) error {
	load := config.Read
	if online {
		load = config.Load
	}

	cfg, err := load(ct.String(flagConfig))
	if err != nil {
		return err
	}

	if dir := ct.String(flagStateDir); dir != "" {
		cfg.State.Dir = dir
	}

	s.configs = cfg
	return nil
}

func (s *srv) loadLogger(ct *cli.Context) {
	level := s.configs.Log.Level
	if ct.Bool(flagVerbose) {
		level = "DEBUG"
	}

	s.logger = logger.NewZapLogger(level, s.configs.Log.JSON)
}

func (s *srv) loadContext(ct *cli.Context) {
	ctx := xcontext.WithConfigs(ct.Context, *s.configs)
	ctx = xcontext.WithLogger(ctx, s.logger)
	ctx = xcontext.WithHTTPClient(ctx, xcontext.NewHTTPClient())
	s.ctx = ctx
}

func (s *srv) loadStore() error {
	dir, err := s.configs.StateDir()
	if err != nil {
		return err
	}

	s.store = localstore.New(dir)
	return nil
}

func (s *srv) loadEndpoint() {
	s.drpEndpoint = drp.New(s.configs.API)
	s.elderEndpoint = elder.New(s.configs.AI)
	s.orbitEndpoint = orbit.New(s.configs.API)
	s.pinataEndpoint = pinata.New(s.configs.Pinata)
	s.learnEndpoint = learn.New(s.configs.Learn)

	// The stored session authenticates every backend call that follows.
	if sess, err := session.Load(s.ctx, s.store); err == nil {
		s.drpEndpoint = s.drpEndpoint.WithToken(sess.Token)
	}
}

func (s *srv) loadDomains() {
	s.wallets = wallet.NewManager(s.store, s.configs.Chain)
	s.proofDomain = domain.NewProofDomain(
		s.drpEndpoint,
		s.elderEndpoint,
		s.orbitEndpoint,
		s.pinataEndpoint,
		s.wallets,
		s.configs.IPFS.Gateway,
	)
	s.rewardDomain = domain.NewRewardDomain(s.drpEndpoint)
}

// loadEngine builds the gamification engine. Progress lives in redis, keyed
// by the connected wallet, when an address is configured and on disk
// otherwise. Events go to kafka when brokers are configured.
func (s *srv) loadEngine() error {
	if s.configs.Redis.Addr == "" && len(s.configs.Kafka.Addrs) == 0 {
		engine, err := gamification.Default(s.ctx)
		if err != nil {
			return err
		}

		s.engine = engine
		return nil
	}

	var store gamification.Store = gamification.NewLocalStore(s.store)
	if s.configs.Redis.Addr != "" {
		w, err := wallet.NewManager(s.store, s.configs.Chain).Current(s.ctx)
		if err != nil {
			return err
		}

		client, err := xredis.NewClient(s.ctx)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		s.closers = append(s.closers, client.Close)
		store = gamification.NewRedisStore(client, s.configs.Redis.KeyPrefix, w.Address)
	}

	var opts []gamification.Option
	if len(s.configs.Kafka.Addrs) > 0 {
		publisher, err := kafka.NewPublisher(s.configs.Kafka)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, publisher.Close)
		opts = append(opts, gamification.WithPublisher(publisher, s.configs.Kafka.Topic))
	}

	engine, err := gamification.NewEngine(s.ctx, store, opts...)
	if err != nil {
		return err
	}

	s.engine = engine
	return nil
}

func (s *srv) close() {
	if s.engine != nil {
		s.engine.Close()
	}

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warnf("Cannot release resource: %v", err)
		}
	}
	s.closers = nil

	// Flush buffered entries. Syncing a terminal fails on some platforms.
	if syncer, ok := s.logger.(interface{ Sync() error }); ok {
		_ = syncer.Sync()
	}
}
