package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, verification, chain, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidPhone        = "INVALID_PHONE"
	ErrCodeInvalidCode         = "INVALID_CODE"
	ErrCodeInvalidIdentifier   = "INVALID_IDENTIFIER"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeMissingIdentifier   = "MISSING_IDENTIFIER"
	ErrCodeProviderNotConfig   = "PROVIDER_NOT_CONFIGURED"
	ErrCodeProviderFailed      = "PROVIDER_FAILED"
	ErrCodeIdentifierTaken     = "IDENTIFIER_TAKEN"
	ErrCodeAvailabilityPending = "AVAILABILITY_PENDING"
	ErrCodeResolveFailed       = "RESOLVE_FAILED"
)

// NewInvalidPhoneError はE.164形式でない電話番号のエラーを生成する。
func NewInvalidPhoneError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPhone,
		Message:  "電話番号がE.164形式ではありません。",
		Category: "validation",
		Action:   "+15551234567 のように国番号付きで入力してください。",
	}
}

// NewInvalidCodeError は認証コード形式不正のエラーを生成する。
func NewInvalidCodeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCode,
		Message:  "認証コードは6桁の数字で入力してください。",
		Category: "validation",
		Action:   "SMSで届いた6桁のコードを確認してください。",
	}
}

// NewInvalidIdentifierError は識別子形式不正のエラーを生成する。
func NewInvalidIdentifierError(identifier string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidIdentifier,
		Message:  fmt.Sprintf("識別子の形式が不正です: %s", identifier),
		Category: "validation",
		Action:   "電話番号はE.164形式、ユーザー名は3〜20文字の英数字・ドット・アンダースコアで入力してください。",
	}
}

// NewInvalidAmountError は金額不正のエラーを生成する。
func NewInvalidAmountError(amount string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAmount,
		Message:  fmt.Sprintf("金額の形式が不正です: %s", amount),
		Category: "validation",
		Action:   "正の数値を入力してください。",
	}
}

// NewMissingIdentifierError は識別子未指定のエラーを生成する。
func NewMissingIdentifierError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingIdentifier,
		Message:  "識別子が指定されていません。",
		Category: "validation",
		Action:   "idクエリパラメータに識別子を指定してください。",
	}
}

// NewProviderNotConfiguredError はSMSプロバイダー設定不足のエラーを生成する。
func NewProviderNotConfiguredError() *APIError {
	return &APIError{
		Code:     ErrCodeProviderNotConfig,
		Message:  "SMS認証プロバイダーが設定されていません。",
		Category: "system",
		Action:   "サーバー管理者に連絡してください。",
	}
}

// NewProviderFailedError はSMSプロバイダー呼び出し失敗のエラーを生成する。
func NewProviderFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeProviderFailed,
		Message:  fmt.Sprintf("認証コードの送信に失敗しました: %s", reason),
		Category: "verification",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewIdentifierTakenError は識別子が使用済みの場合のエラーを生成する。
func NewIdentifierTakenError(identifier string) *APIError {
	return &APIError{
		Code:     ErrCodeIdentifierTaken,
		Message:  fmt.Sprintf("この識別子は既に使用されています: %s", identifier),
		Category: "validation",
		Action:   "別の識別子を指定してください。",
	}
}

// NewAvailabilityPendingError は空き確認が未完了の場合のエラーを生成する。
func NewAvailabilityPendingError() *APIError {
	return &APIError{
		Code:     ErrCodeAvailabilityPending,
		Message:  "識別子の空き確認が完了していません。",
		Category: "validation",
		Action:   "確認が完了するまでお待ちください。",
	}
}

// NewResolveFailedError は識別子解決失敗のエラーを生成する。
func NewResolveFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeResolveFailed,
		Message:  fmt.Sprintf("識別子の解決に失敗しました: %s", reason),
		Category: "chain",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
