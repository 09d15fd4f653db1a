package wallet

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/blockchain/eth"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/localstore"
	"github.com/decentralizedrights/portal/pkg/xcontext"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"
)

// nativeDecimals is the precision of the chain's native coin.
const nativeDecimals = 18

type Wallet struct {
	Address     string `json:"address"`
	ConnectedAt int64  `json:"connectedAt"`
}

type Balances struct {
	Address string `json:"address"`
	Native  string `json:"native"`
	DeRi    string `json:"deri"`
	Rights  string `json:"rights"`
}

// BalanceReader is implemented by *eth.Reader.
type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error)
	TokenDecimals(ctx context.Context, token common.Address) (int, error)
}

type Manager struct {
	store *localstore.Store
	chain config.ChainConfigs
	now   func() time.Time
}

func NewManager(store *localstore.Store, chain config.ChainConfigs) *Manager {
	return &Manager{store: store, chain: chain, now: time.Now}
}

// Validate checks that address is a 0x-prefixed 20-byte hex address and
// returns its checksummed form.
func Validate(address string) (string, error) {
	if !strings.HasPrefix(address, "0x") || !common.IsHexAddress(address) {
		return "", errorx.New(errorx.BadRequest, "Invalid wallet address format")
	}

	return common.HexToAddress(address).Hex(), nil
}

func (m *Manager) Connect(ctx context.Context, address string) (Wallet, error) {
	checksummed, err := Validate(address)
	if err != nil {
		return Wallet{}, err
	}

	w := Wallet{Address: checksummed, ConnectedAt: m.now().UnixMilli()}
	if err := m.store.Set(ctx, localstore.KeyWallet, w); err != nil {
		return Wallet{}, err
	}

	xcontext.Logger(ctx).Infof("Wallet %s connected", checksummed)
	return w, nil
}

func (m *Manager) Disconnect(ctx context.Context) error {
	return m.store.Delete(ctx, localstore.KeyWallet)
}

// Current returns the connected wallet or errorx.ErrMissingWallet.
func (m *Manager) Current(ctx context.Context) (Wallet, error) {
	var w Wallet
	ok, err := m.store.Get(ctx, localstore.KeyWallet, &w)
	if err != nil {
		return Wallet{}, err
	}

	if !ok || w.Address == "" {
		return Wallet{}, errorx.ErrMissingWallet
	}

	return w, nil
}

// Balances reads the native, $DeRi and $RIGHTS balances of address
// concurrently. Token amounts are scaled by each contract's decimals().
func (m *Manager) Balances(ctx context.Context, reader BalanceReader, address string) (Balances, error) {
	checksummed, err := Validate(address)
	if err != nil {
		return Balances{}, err
	}
	owner := common.HexToAddress(checksummed)

	var native *big.Int
	var deri, rights string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		native, err = reader.BalanceAt(gctx, owner)
		return err
	})
	g.Go(func() error {
		var err error
		deri, err = tokenBalance(gctx, reader, common.HexToAddress(m.chain.DeRiToken), owner)
		return err
	})
	g.Go(func() error {
		var err error
		rights, err = tokenBalance(gctx, reader, common.HexToAddress(m.chain.RightsToken), owner)
		return err
	})

	if err := g.Wait(); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot read balances of %s: %v", checksummed, err)
		return Balances{}, err
	}

	return Balances{
		Address: checksummed,
		Native:  eth.FormatUnits(native, nativeDecimals),
		DeRi:    deri,
		Rights:  rights,
	}, nil
}

func tokenBalance(ctx context.Context, reader BalanceReader, token, owner common.Address) (string, error) {
	amount, err := reader.TokenBalance(ctx, token, owner)
	if err != nil {
		return "", err
	}

	decimals, err := reader.TokenDecimals(ctx, token)
	if err != nil {
		return "", err
	}

	return eth.FormatUnits(amount, decimals), nil
}
