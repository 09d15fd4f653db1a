package main

import (
	"github.com/decentralizedrights/portal/pkg/blockchain/eth"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/session"
	"github.com/urfave/cli/v2"
)

func (s *srv) currentAddress() (string, error) {
	w, err := s.wallets.Current(s.ctx)
	if err != nil {
		return "", err
	}

	return w.Address, nil
}

func (s *srv) walletConnect(ct *cli.Context) error {
	address, err := arg(ct, 0, "address")
	if err != nil {
		return err
	}

	w, err := s.wallets.Connect(s.ctx, address)
	if err != nil {
		return err
	}

	return s.print(ct, w)
}

func (s *srv) walletDisconnect(ct *cli.Context) error {
	return s.wallets.Disconnect(s.ctx)
}

func (s *srv) walletShow(ct *cli.Context) error {
	w, err := s.wallets.Current(s.ctx)
	if err != nil {
		return err
	}

	return s.print(ct, w)
}

func (s *srv) walletBalance(ct *cli.Context) error {
	address, err := optionalArg(ct, 0, s.currentAddress)
	if err != nil {
		return err
	}

	reader, closeClient, err := eth.Dial(s.ctx, s.configs.Chain)
	if err != nil {
		return err
	}
	defer closeClient()

	balances, err := s.wallets.Balances(s.ctx, reader, address)
	if err != nil {
		return err
	}

	return s.print(ct, balances)
}

func (s *srv) sessionLogin(ct *cli.Context) error {
	token, err := arg(ct, 0, "token")
	if err != nil {
		return err
	}

	sess, err := session.FromToken(token)
	if err != nil {
		return err
	}

	if err := session.Save(s.ctx, s.store, sess); err != nil {
		return err
	}

	// The token may name the wallet it was issued to.
	if sess.WalletAddress != "" {
		if _, err := s.wallets.Connect(s.ctx, sess.WalletAddress); err != nil {
			s.logger.Warnf("Cannot connect wallet of session: %v", err)
		}
	}

	return s.print(ct, sess)
}

func (s *srv) sessionShow(ct *cli.Context) error {
	sess, err := session.Load(s.ctx, s.store)
	if err != nil {
		return err
	}

	return s.print(ct, sess)
}

func (s *srv) sessionClear(ct *cli.Context) error {
	return session.Clear(s.ctx, s.store)
}

func (s *srv) sessionVerify(ct *cli.Context) error {
	token, err := optionalArg(ct, 0, func() (string, error) {
		sess, err := session.Load(s.ctx, s.store)
		if err != nil {
			return "", err
		}
		return sess.Token, nil
	})
	if err != nil {
		return err
	}

	verification, err := s.drpEndpoint.VerifyToken(s.ctx, token)
	if err != nil {
		return err
	}

	return s.print(ct, verification)
}

func (s *srv) sessionOAuth(ct *cli.Context) error {
	provider, err := arg(ct, 0, "provider")
	if err != nil {
		return err
	}

	url, err := s.drpEndpoint.BeginOAuth(s.ctx, provider)
	if err != nil {
		return err
	}

	if url == "" {
		return errorx.New(errorx.BadResponse, "No authorization URL returned for %s", provider)
	}

	return s.print(ct, map[string]string{"url": url})
}
