package hedera

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"hedera-order-bot-go/internal/config"
)

// LedgerClient defines the relay operations needed to submit a contract call
// and wait for its consensus result.
type LedgerClient interface {
	SubmitCall(ctx context.Context, to common.Address, calldata []byte, value *big.Int, gasLimit uint64) (common.Hash, error)
	WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

// RelayClient submits contract calls through the Hedera JSON-RPC relay.
type RelayClient struct {
	client  *ethclient.Client
	key     *ecdsa.PrivateKey
	from    common.Address
	chainID *big.Int
	logger  *zap.Logger
}

var _ LedgerClient = (*RelayClient)(nil)

// NewRelayClient dials the relay and loads the operator signing key.
func NewRelayClient(cfg *config.Hedera, logger *zap.Logger) (*RelayClient, error) {
	client, err := ethclient.Dial(cfg.RelayURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial relay %s: %w", cfg.RelayURL, err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OperatorKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid operator key: %w", err)
	}

	return &RelayClient{
		client:  client,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
		chainID: big.NewInt(cfg.ChainID),
		logger:  logger,
	}, nil
}

// SubmitCall signs and broadcasts a contract call, returning its hash.
func (c *RelayClient) SubmitCall(ctx context.Context, to common.Address, calldata []byte, value *big.Int, gasLimit uint64) (common.Hash, error) {
	nonce, err := c.client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
	}

	if value == nil {
		value = new(big.Int)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     calldata,
	})

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(c.chainID), c.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.client.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}

	hash := signedTx.Hash()
	c.logger.Info("Submitted contract call",
		zap.String("tx_hash", hash.Hex()),
		zap.String("to", to.Hex()),
		zap.Uint64("gas_limit", gasLimit),
	)
	return hash, nil
}

// receiptPollInterval balances relay load against time-to-finality; Hedera
// consensus typically lands inside two intervals.
const receiptPollInterval = 2 * time.Second

// WaitReceipt polls until the transaction reaches consensus or ctx expires.
func (c *RelayClient) WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			c.logger.Debug("Receipt not yet available", zap.String("tx_hash", hash.Hex()), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for receipt of %s: %w", hash.Hex(), ctx.Err())
		case <-ticker.C:
		}
	}
}
