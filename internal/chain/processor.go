package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// BatchPaymentFee はバッチ支払いのプロトコル手数料を返す。
func (c *Client) BatchPaymentFee(ctx context.Context) (*big.Int, error) {
	return c.processorFee(ctx, "batchPaymentFee")
}

// PaymentRequestFee は支払いリクエスト作成の手数料を返す。
func (c *Client) PaymentRequestFee(ctx context.Context) (*big.Int, error) {
	return c.processorFee(ctx, "paymentRequestFee")
}

// ScheduledPaymentFee は定期支払い作成の手数料を返す。
func (c *Client) ScheduledPaymentFee(ctx context.Context) (*big.Int, error) {
	return c.processorFee(ctx, "scheduledPaymentFee")
}

func (c *Client) processorFee(ctx context.Context, method string) (*big.Int, error) {
	var out []interface{}
	if err := c.processor.Call(callOpts(ctx), &out, method); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	return out[0].(*big.Int), nil
}

// ProcessBatchPayment は複数の識別子への支払いを1トランザクションで実行する。
// tokenにZeroAddressを渡すとネイティブ通貨での支払いになる。
// プロトコル手数料を自動で取得し、トランザクションに添付する。
func (c *Client) ProcessBatchPayment(ctx context.Context, recipients []string, amounts []*big.Int, token common.Address) (*types.Transaction, error) {
	fee, err := c.BatchPaymentFee(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := c.transactOpts(ctx, fee)
	if err != nil {
		return nil, err
	}

	tx, err := c.processor.Transact(opts, "processBatchPayment", recipients, amounts, token)
	if err != nil {
		return nil, fmt.Errorf("processBatchPayment: %w", err)
	}
	return tx, nil
}

// CreatePaymentRequest は支払いリクエストを作成する。
// ダッシュボード側では未実装の機能だが、コントラクト表面としては公開する。
func (c *Client) CreatePaymentRequest(ctx context.Context, payer common.Address, amount *big.Int, token common.Address, message string, expirySeconds int64) (*types.Transaction, error) {
	fee, err := c.PaymentRequestFee(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := c.transactOpts(ctx, fee)
	if err != nil {
		return nil, err
	}

	tx, err := c.processor.Transact(opts, "createPaymentRequest", payer, amount, token, message, big.NewInt(expirySeconds))
	if err != nil {
		return nil, fmt.Errorf("createPaymentRequest: %w", err)
	}
	return tx, nil
}

// FulfillPaymentRequest は支払いリクエストを履行する。
func (c *Client) FulfillPaymentRequest(ctx context.Context, requestID *big.Int, value *big.Int) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, value)
	if err != nil {
		return nil, err
	}

	tx, err := c.processor.Transact(opts, "fulfillPaymentRequest", requestID)
	if err != nil {
		return nil, fmt.Errorf("fulfillPaymentRequest: %w", err)
	}
	return tx, nil
}

// CancelPaymentRequest は支払いリクエストを取り消す。
func (c *Client) CancelPaymentRequest(ctx context.Context, requestID *big.Int) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx, err := c.processor.Transact(opts, "cancelPaymentRequest", requestID)
	if err != nil {
		return nil, fmt.Errorf("cancelPaymentRequest: %w", err)
	}
	return tx, nil
}

// CreateScheduledPayment は定期支払いを作成する。
func (c *Client) CreateScheduledPayment(ctx context.Context, recipientIdentifier string, amount *big.Int, token common.Address, frequencySeconds, totalExecutions int64) (*types.Transaction, error) {
	fee, err := c.ScheduledPaymentFee(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := c.transactOpts(ctx, fee)
	if err != nil {
		return nil, err
	}

	tx, err := c.processor.Transact(opts, "createScheduledPayment", recipientIdentifier, amount, token, big.NewInt(frequencySeconds), big.NewInt(totalExecutions))
	if err != nil {
		return nil, fmt.Errorf("createScheduledPayment: %w", err)
	}
	return tx, nil
}

// ExecuteScheduledPayment は定期支払いの1回分を実行する。
func (c *Client) ExecuteScheduledPayment(ctx context.Context, scheduleID *big.Int) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx, err := c.processor.Transact(opts, "executeScheduledPayment", scheduleID)
	if err != nil {
		return nil, fmt.Errorf("executeScheduledPayment: %w", err)
	}
	return tx, nil
}

// CancelScheduledPayment は定期支払いを取り消す。
func (c *Client) CancelScheduledPayment(ctx context.Context, scheduleID *big.Int) (*types.Transaction, error) {
	opts, err := c.transactOpts(ctx, nil)
	if err != nil {
		return nil, err
	}

	tx, err := c.processor.Transact(opts, "cancelScheduledPayment", scheduleID)
	if err != nil {
		return nil, fmt.Errorf("cancelScheduledPayment: %w", err)
	}
	return tx, nil
}
