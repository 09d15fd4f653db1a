package wallet

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/decentralizedrights/portal/config"
	"github.com/decentralizedrights/portal/pkg/errorx"
	"github.com/decentralizedrights/portal/pkg/localstore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const lower = "0x52908400098527886e0f7030069857d2e4169ee7"

type fakeReader struct {
	tokens   map[common.Address]*big.Int
	decimals map[common.Address]int
	err      error
}

func (f *fakeReader) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (f *fakeReader) TokenBalance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.tokens[token], nil
}

func (f *fakeReader) TokenDecimals(ctx context.Context, token common.Address) (int, error) {
	if d, ok := f.decimals[token]; ok {
		return d, nil
	}
	return 18, nil
}

func Test_Validate(t *testing.T) {
	got, err := Validate(lower)
	require.NoError(t, err)
	require.Equal(t, "0x52908400098527886E0F7030069857D2E4169EE7", got)

	for _, bad := range []string{"", "0x1234", "52908400098527886e0f7030069857d2e4169ee7", "0xZZ908400098527886e0f7030069857d2e4169ee7"} {
		_, err := Validate(bad)
		require.True(t, errorx.Is(err, errorx.BadRequest), bad)
	}
}

func Test_Manager_ConnectCurrentDisconnect(t *testing.T) {
	ctx := context.Background()
	m := NewManager(localstore.New(t.TempDir()), config.ChainConfigs{})
	m.now = func() time.Time { return time.UnixMilli(1700000000000) }

	_, err := m.Current(ctx)
	require.ErrorIs(t, err, errorx.ErrMissingWallet)

	w, err := m.Connect(ctx, lower)
	require.NoError(t, err)
	require.Equal(t, Wallet{Address: "0x52908400098527886E0F7030069857D2E4169EE7", ConnectedAt: 1700000000000}, w)

	got, err := m.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, w, got)

	require.NoError(t, m.Disconnect(ctx))
	_, err = m.Current(ctx)
	require.ErrorIs(t, err, errorx.ErrMissingWallet)
}

func Test_Manager_Balances(t *testing.T) {
	chain := config.Default().Chain
	oneAndHalf, _ := new(big.Int).SetString("1500000000000000000", 10)
	reader := &fakeReader{tokens: map[common.Address]*big.Int{
		common.HexToAddress(chain.DeRiToken):   oneAndHalf,
		common.HexToAddress(chain.RightsToken): big.NewInt(2500000),
	}, decimals: map[common.Address]int{
		common.HexToAddress(chain.RightsToken): 6,
	}}

	m := NewManager(localstore.New(t.TempDir()), chain)
	b, err := m.Balances(context.Background(), reader, lower)
	require.NoError(t, err)
	require.Equal(t, Balances{
		Address: "0x52908400098527886E0F7030069857D2E4169EE7",
		Native:  "0",
		DeRi:    "1.5",
		Rights:  "2.5",
	}, b)

	reader.err = errors.New("rpc down")
	_, err = m.Balances(context.Background(), reader, lower)
	require.Error(t, err)
}
