package payment

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hitoshi/paylink/internal/chain"
	"github.com/hitoshi/paylink/internal/model"
	"github.com/hitoshi/paylink/internal/phone"
)

// walletGateway は支払いワークフローが使うコントラクト操作面。
type walletGateway interface {
	SendPayment(ctx context.Context, wallet common.Address, identifier string, amount *big.Int) (*types.Transaction, error)
	SendTokenPayment(ctx context.Context, wallet common.Address, identifier string, token common.Address, amount *big.Int) (*types.Transaction, error)
	ProcessBatchPayment(ctx context.Context, recipients []string, amounts []*big.Int, token common.Address) (*types.Transaction, error)
	TokenDecimals(ctx context.Context, token common.Address) (uint8, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// messageSanitizer は自由記述メッセージのサニタイズ面。
type messageSanitizer interface {
	Sanitize(s string) string
}

// Flow は進行中の支払いワークフロー。
type Flow struct {
	Intent  *model.PaymentIntent
	Machine *Machine
}

// State は現在のワークフロー状態を返す。
func (f *Flow) State() State {
	return f.Machine.State()
}

// Service は支払いワークフローを駆動するアプリケーションサービス。
type Service struct {
	gateway   walletGateway
	sanitizer messageSanitizer
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(gateway walletGateway, sanitizer messageSanitizer, logger *slog.Logger) *Service {
	return &Service{
		gateway:   gateway,
		sanitizer: sanitizer,
		logger:    logger,
	}
}

// BuildIntent は入力を検証し、支払いインテントを組み立てる。
// 金額はトークンの小数桁数で最小単位の整数へスケーリングし、
// メッセージはHTMLを全て除去してから保持する。
func (s *Service) BuildIntent(ctx context.Context, recipient, amount, token, message string) (*model.PaymentIntent, error) {
	id, ok := phone.ValidateIdentifier(recipient)
	if !ok {
		return nil, model.NewInvalidIdentifierError(recipient)
	}

	decimals := uint8(EthDecimals)
	if token != "" {
		d, err := s.gateway.TokenDecimals(ctx, common.HexToAddress(token))
		if err != nil {
			return nil, fmt.Errorf("トークンの小数桁数の取得に失敗しました: %w", err)
		}
		decimals = d
	}

	scaled, err := ScaleAmount(amount, decimals)
	if err != nil {
		return nil, err
	}

	return &model.PaymentIntent{
		Recipient: id,
		Amount:    scaled,
		Token:     token,
		Message:   s.sanitizer.Sanitize(message),
	}, nil
}

// Begin はインテントからワークフローを開始し、確認待ちのFlowを返す。
func (s *Service) Begin(intent *model.PaymentIntent) (*Flow, error) {
	flow := &Flow{
		Intent:  intent,
		Machine: NewMachine(),
	}
	if _, err := flow.Machine.Apply(EventSubmit); err != nil {
		return nil, err
	}
	return flow, nil
}

// Back は確認画面からフォームへ差し戻す。副作用はない。
func (s *Service) Back(flow *Flow) error {
	_, err := flow.Machine.Apply(EventBack)
	return err
}

// Confirm は支払いを確定し、トランザクションを送信して確定まで待つ。
// 失敗時はFlowをFormへ巻き戻し、分類済みのエラー種別でメッセージを組み立てる。
func (s *Service) Confirm(ctx context.Context, flow *Flow, wallet common.Address) (*types.Receipt, error) {
	if _, err := flow.Machine.Apply(EventConfirm); err != nil {
		return nil, err
	}

	receipt, err := s.send(ctx, flow.Intent, wallet)
	if err != nil {
		flow.Machine.Apply(EventFail)
		kind := chain.Classify(err)
		s.logger.Error("payment failed",
			slog.String("kind", string(kind)),
			slog.String("recipient_type", string(flow.Intent.Recipient.Type)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", kind.Message(), err)
	}

	flow.Machine.Apply(EventTxConfirmed)
	s.logger.Info("payment sent",
		slog.String("recipient_type", string(flow.Intent.Recipient.Type)),
		slog.String("tx", receipt.TxHash.Hex()))
	return receipt, nil
}

func (s *Service) send(ctx context.Context, intent *model.PaymentIntent, wallet common.Address) (*types.Receipt, error) {
	var (
		tx  *types.Transaction
		err error
	)
	if intent.Token == "" {
		tx, err = s.gateway.SendPayment(ctx, wallet, intent.Recipient.Value, intent.Amount)
	} else {
		tx, err = s.gateway.SendTokenPayment(ctx, wallet, intent.Recipient.Value, common.HexToAddress(intent.Token), intent.Amount)
	}
	if err != nil {
		return nil, err
	}
	return s.gateway.WaitMined(ctx, tx)
}

// SubmitBatch はバッチ支払いを1トランザクションで実行する。
// 全行の検証とスケーリングを送信前に済ませ、1行でも不正なら送信しない。
// tokenが空の場合はネイティブ通貨で支払う。
func (s *Service) SubmitBatch(ctx context.Context, rows []model.BatchRow, token string) (*types.Receipt, error) {
	if len(rows) == 0 {
		return nil, model.NewInvalidAmountError("")
	}

	decimals := uint8(EthDecimals)
	tokenAddr := chain.ZeroAddress
	if token != "" {
		tokenAddr = common.HexToAddress(token)
		d, err := s.gateway.TokenDecimals(ctx, tokenAddr)
		if err != nil {
			return nil, fmt.Errorf("トークンの小数桁数の取得に失敗しました: %w", err)
		}
		decimals = d
	}

	recipients := make([]string, 0, len(rows))
	amounts := make([]*big.Int, 0, len(rows))
	for _, row := range rows {
		id, ok := phone.ValidateIdentifier(row.Identifier)
		if !ok {
			return nil, model.NewInvalidIdentifierError(row.Identifier)
		}
		amount, err := ScaleAmount(row.Amount, decimals)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, id.Value)
		amounts = append(amounts, amount)
	}

	tx, err := s.gateway.ProcessBatchPayment(ctx, recipients, amounts, tokenAddr)
	if err != nil {
		kind := chain.Classify(err)
		return nil, fmt.Errorf("%s: %w", kind.Message(), err)
	}

	receipt, err := s.gateway.WaitMined(ctx, tx)
	if err != nil {
		kind := chain.Classify(err)
		return nil, fmt.Errorf("%s: %w", kind.Message(), err)
	}

	s.logger.Info("batch payment sent",
		slog.Int("rows", len(rows)),
		slog.String("tx", receipt.TxHash.Hex()))
	return receipt, nil
}
