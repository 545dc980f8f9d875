package identifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hitoshi/paylink/internal/chain"
	"github.com/hitoshi/paylink/internal/model"
	"github.com/hitoshi/paylink/internal/phone"
	"github.com/hitoshi/paylink/internal/verify"
)

// verifyService は電話番号認証の操作面。
type verifyService interface {
	SendCode(ctx context.Context, phoneNumber string) (verify.SendResult, error)
	CheckCode(ctx context.Context, phoneNumber, code string) (bool, error)
}

// registryGateway は登録ワークフローが使うコントラクト操作面。
type registryGateway interface {
	IsIdentifierAvailable(ctx context.Context, identifier string) (bool, error)
	HasWallet(ctx context.Context, owner common.Address) (bool, error)
	CreateWalletWithIdentifier(ctx context.Context, identifier string, identifierType model.IdentifierType) (*types.Transaction, error)
	RegisterUser(ctx context.Context, identifier string, identifierType model.IdentifierType, wallet common.Address) (*types.Transaction, error)
	WalletOf(ctx context.Context, owner common.Address) (common.Address, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Flow は進行中の登録ワークフロー。状態機械と送信結果を保持する。
type Flow struct {
	Identifier model.Identifier
	Machine    *Machine

	// SIDとMockCodeは電話番号識別子の場合のみ設定される。
	SID      string
	MockCode string
}

// State は現在のワークフロー状態を返す。
func (f *Flow) State() State {
	return f.Machine.State()
}

// Service は登録ワークフローを駆動するアプリケーションサービス。
// 可用性の事前チェック、SMS認証、チェーン書き込みの順に進める。
type Service struct {
	verify   verifyService
	registry registryGateway
	logger   *slog.Logger
}

// NewService はServiceを生成する。
func NewService(verifySvc verifyService, registry registryGateway, logger *slog.Logger) *Service {
	return &Service{
		verify:   verifySvc,
		registry: registry,
		logger:   logger,
	}
}

// Begin は識別子を検証し、ワークフローを開始する。
// 可用性がAvailable以外の場合は開始を拒否する。
// 電話番号の場合は認証コードを送信し、Verify状態のFlowを返す。
// ユーザー名の場合は認証をスキップし、Processing状態のFlowを返す。
func (s *Service) Begin(ctx context.Context, raw string) (*Flow, error) {
	id, ok := phone.ValidateIdentifier(raw)
	if !ok {
		return nil, model.NewInvalidIdentifierError(raw)
	}

	available, err := s.registry.IsIdentifierAvailable(ctx, id.Value)
	if err != nil {
		// 空き確認が取れないまま登録を進めることはできない。
		s.logger.Warn("availability check failed",
			slog.String("type", string(id.Type)),
			slog.String("error", err.Error()))
		return nil, model.NewAvailabilityPendingError()
	}
	if !available {
		return nil, model.NewIdentifierTakenError(id.Value)
	}

	flow := &Flow{
		Identifier: id,
		Machine:    NewMachine(id.Type),
	}
	if _, err := flow.Machine.Apply(EventSubmit); err != nil {
		return nil, err
	}

	if id.Type == model.IdentifierTypePhone {
		result, err := s.verify.SendCode(ctx, id.Value)
		if err != nil {
			flow.Machine.Apply(EventFail)
			return nil, err
		}
		flow.SID = result.SID
		flow.MockCode = result.MockCode
		flow.Machine.Apply(EventCodeSent)
	}

	s.logger.Info("registration flow started",
		slog.String("type", string(id.Type)),
		slog.String("state", string(flow.State())))
	return flow, nil
}

// ResendCode は認証コードを再送する。Verify状態の電話番号フローでのみ有効。
func (s *Service) ResendCode(ctx context.Context, flow *Flow) error {
	if _, err := flow.Machine.Apply(EventCodeSent); err != nil {
		return err
	}

	result, err := s.verify.SendCode(ctx, flow.Identifier.Value)
	if err != nil {
		return err
	}
	flow.SID = result.SID
	flow.MockCode = result.MockCode
	return nil
}

// VerifyCode は認証コードを照合し、成功すればProcessingへ進める。
// コード不一致はエラーではなくfalseを返し、状態はVerifyのまま保つ。
func (s *Service) VerifyCode(ctx context.Context, flow *Flow, code string) (bool, error) {
	if flow.State() != StateVerify {
		return false, fmt.Errorf("invalid transition: state=%s event=%s", flow.State(), EventCodeVerified)
	}

	isValid, err := s.verify.CheckCode(ctx, flow.Identifier.Value, code)
	if err != nil {
		return false, err
	}
	if !isValid {
		return false, nil
	}

	if _, err := flow.Machine.Apply(EventCodeVerified); err != nil {
		return false, err
	}
	return true, nil
}

// Register はProcessing状態のフローをチェーンに書き込み、確定まで待つ。
// オーナーにウォレットが既にあれば識別子をそこへ登録し、
// なければウォレット作成と識別子登録を1トランザクションで行う。
// 失敗時は状態機械を巻き戻し、分類済みのエラー種別をログに残す。
func (s *Service) Register(ctx context.Context, flow *Flow, owner common.Address) (*types.Receipt, error) {
	if flow.State() != StateProcessing {
		return nil, fmt.Errorf("invalid transition: state=%s event=%s", flow.State(), EventTxConfirmed)
	}

	receipt, err := s.submit(ctx, flow, owner)
	if err != nil {
		flow.Machine.Apply(EventFail)
		kind := chain.Classify(err)
		s.logger.Error("registration failed",
			slog.String("kind", string(kind)),
			slog.String("state", string(flow.State())),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", kind.Message(), err)
	}

	flow.Machine.Apply(EventTxConfirmed)
	s.logger.Info("identifier registered",
		slog.String("type", string(flow.Identifier.Type)),
		slog.String("tx", receipt.TxHash.Hex()))
	return receipt, nil
}

func (s *Service) submit(ctx context.Context, flow *Flow, owner common.Address) (*types.Receipt, error) {
	hasWallet, err := s.registry.HasWallet(ctx, owner)
	if err != nil {
		return nil, err
	}

	var tx *types.Transaction
	if hasWallet {
		wallet, err := s.registry.WalletOf(ctx, owner)
		if err != nil {
			return nil, err
		}
		tx, err = s.registry.RegisterUser(ctx, flow.Identifier.Value, flow.Identifier.Type, wallet)
		if err != nil {
			return nil, err
		}
	} else {
		tx, err = s.registry.CreateWalletWithIdentifier(ctx, flow.Identifier.Value, flow.Identifier.Type)
		if err != nil {
			return nil, err
		}
	}

	return s.registry.WaitMined(ctx, tx)
}
