package treasury

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	bCtx "github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/log"
	"github.com/deedchain/goapi/domain"
	"github.com/deedchain/goapi/domain/ledger"
)

type Cfg struct {
	RpcUrl     string
	PrivateKey string
	ChainId    int64
}

type impl struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainId *big.Int
}

// New dials the rpc endpoint and returns a payout service which releases
// withdrawn funds as native transfers from the treasury account.
func New(c bCtx.Ctx, cfg *Cfg) (ledger.Payout, error) {
	client, err := ethclient.DialContext(c, cfg.RpcUrl)
	if err != nil {
		c.WithFields(log.Fields{"err": err, "url": cfg.RpcUrl}).Error("failed to dial rpc")
		return nil, err
	}
	key, err := crypto.HexToECDSA(cfg.PrivateKey)
	if err != nil {
		c.WithField("err", err).Error("crypto.HexToECDSA failed")
		return nil, err
	}
	return &impl{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainId: big.NewInt(cfg.ChainId),
	}, nil
}

func (im *impl) Release(c bCtx.Ctx, to domain.Address, amount domain.Amount) error {
	nonce, err := im.client.PendingNonceAt(c, im.from)
	if err != nil {
		c.WithField("err", err).Error("client.PendingNonceAt failed")
		return err
	}
	gasPrice, err := im.client.SuggestGasPrice(c)
	if err != nil {
		c.WithField("err", err).Error("client.SuggestGasPrice failed")
		return err
	}

	toAddr := common.HexToAddress(string(to))
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &toAddr,
		Value:    new(big.Int).SetUint64(uint64(amount)),
		Gas:      21000,
		GasPrice: gasPrice,
	})

	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(im.chainId), im.key)
	if err != nil {
		c.WithField("err", err).Error("types.SignTx failed")
		return err
	}

	if err := im.client.SendTransaction(c, signedTx); err != nil {
		c.WithFields(log.Fields{
			"err":    err,
			"to":     to,
			"amount": amount,
			"txHash": signedTx.Hash().Hex(),
		}).Error("client.SendTransaction failed")
		return err
	}

	c.WithFields(log.Fields{
		"to":     to,
		"amount": amount,
		"txHash": signedTx.Hash().Hex(),
	}).Info("released payout")
	return nil
}
