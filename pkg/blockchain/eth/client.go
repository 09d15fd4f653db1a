package eth

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/xcontext"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"golang.org/x/crypto/sha3"
)

var (
	RpcTimeOut = time.Second * 5
)

// A wrapper around ethclient.Client so that we can mock it in tests.
type EthClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BalanceAt(ctx context.Context, account common.Address, block *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error)
}

// Reader reads the chain state the portal shows: native balance and ERC20
// token balances.
type Reader struct {
	client EthClient
}

func NewReader(client EthClient) *Reader {
	return &Reader{client: client}
}

// Dial connects to the configured RPC and checks that it serves the
// configured chain.
func Dial(ctx context.Context, cfg config.ChainConfigs) (*Reader, func(), error) {
	dialCtx, cancel := context.WithTimeout(ctx, RpcTimeOut)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, cfg.RPCURL)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", cfg.RPCURL, err)
	}

	r := NewReader(client)
	if err := r.CheckChainID(dialCtx, cfg.ChainID); err != nil {
		client.Close()
		return nil, nil, err
	}

	return r, client.Close, nil
}

// CheckChainID fails when the RPC serves another chain than want.
func (r *Reader) CheckChainID(ctx context.Context, want int64) error {
	got, err := r.client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	if got.Cmp(big.NewInt(want)) != 0 {
		return fmt.Errorf("rpc serves chain %s (%s), expected %d (%s)",
			got, ChainName(got.Int64()), want, ChainName(want))
	}

	return nil
}

func (r *Reader) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	balance, err := r.client.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, err
	}

	if balance.Sign() == 0 {
		xcontext.Logger(ctx).Debugf("Native balance is 0 for %s", account.Hex())
	}

	return balance, nil
}

// TokenBalance calls balanceOf(owner) on the ERC20 contract at token.
func (r *Reader) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	out, err := r.client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: GetBalanceOfData(owner),
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf on %s: %w", token.Hex(), err)
	}

	if len(out) != 32 {
		return nil, fmt.Errorf("unexpected balanceOf result of %d bytes from %s", len(out), token.Hex())
	}

	return new(big.Int).SetBytes(out), nil
}

// TokenDecimals calls decimals() on the ERC20 contract at token.
func (r *Reader) TokenDecimals(ctx context.Context, token common.Address) (int, error) {
	out, err := r.client.CallContract(ctx, ethereum.CallMsg{
		To:   &token,
		Data: MethodID("decimals()"),
	}, nil)
	if err != nil {
		return 0, fmt.Errorf("call decimals on %s: %w", token.Hex(), err)
	}

	if len(out) != 32 {
		return 0, fmt.Errorf("unexpected decimals result of %d bytes from %s", len(out), token.Hex())
	}

	return int(new(big.Int).SetBytes(out).Int64()), nil
}

// MethodID returns the 4-byte selector of a solidity function signature.
func MethodID(signature string) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	return hash.Sum(nil)[:4]
}

func GetBalanceOfData(owner common.Address) []byte {
	var data []byte
	data = append(data, MethodID("balanceOf(address)")...)
	data = append(data, common.LeftPadBytes(owner.Bytes(), 32)...)
	return data
}
