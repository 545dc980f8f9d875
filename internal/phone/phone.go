// Package phone は電話番号と識別子の形式検証・正規化を提供する。
// すべて純粋関数であり、panicせず、ネットワークアクセスも行わない。
// 電話関連のネットワーク呼び出しの前に必ずここのガードを通すこと。
package phone

import (
	"regexp"
	"strings"

	"github.com/hitoshi/paylink/internal/model"
)

var (
	// e164Pattern は厳格なE.164形式: + の後に10〜15桁、先頭は1〜9。
	e164Pattern = regexp.MustCompile(`^\+[1-9]\d{9,14}$`)
	// usernamePattern はユーザー名形式: 3〜20文字の英数字・ドット・アンダースコア。
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._]{3,20}$`)
	// nonDigitPattern は数字以外の文字。
	nonDigitPattern = regexp.MustCompile(`\D`)
	// codePattern は6桁の認証コード。
	codePattern = regexp.MustCompile(`^\d{6}$`)
)

// IsValidPhoneNumber はトリム後の文字列が厳格なE.164形式かどうかを返す。
func IsValidPhoneNumber(s string) bool {
	return e164Pattern.MatchString(strings.TrimSpace(s))
}

// NormalizeE164 は電話番号を厳格なE.164形式に正規化する。
// 既に厳格な形式ならそのまま返す。そうでない場合、元の文字列が
// + で始まっていることを要求する（国番号を推測できないため）。
// 数字以外を除去して + を付け直し、再検証に失敗した場合はokがfalseになる。
func NormalizeE164(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	trimmed := strings.TrimSpace(s)

	if e164Pattern.MatchString(trimmed) {
		return trimmed, true
	}

	// 国番号を推測できないため、元の入力に + を要求する
	if !strings.HasPrefix(trimmed, "+") {
		return "", false
	}

	normalized := "+" + nonDigitPattern.ReplaceAllString(trimmed, "")
	if !e164Pattern.MatchString(normalized) {
		return "", false
	}
	return normalized, true
}

// IsValidUsername はユーザー名形式かどうかを返す。
func IsValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

// IsValidCode は6桁の数字の認証コードかどうかを返す。
func IsValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// DetectType は識別子の種別を判定する。先頭が + なら電話番号、それ以外はユーザー名。
func DetectType(identifier string) model.IdentifierType {
	if strings.HasPrefix(strings.TrimSpace(identifier), "+") {
		return model.IdentifierTypePhone
	}
	return model.IdentifierTypeUsername
}

// ValidateIdentifier は識別子を検証し、正規化済みのIdentifierを返す。
// 電話番号はE.164に正規化され、ユーザー名はそのまま検証される。
func ValidateIdentifier(raw string) (model.Identifier, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return model.Identifier{}, false
	}

	if DetectType(trimmed) == model.IdentifierTypePhone {
		normalized, ok := NormalizeE164(trimmed)
		if !ok {
			return model.Identifier{}, false
		}
		return model.Identifier{Value: normalized, Type: model.IdentifierTypePhone}, true
	}

	if !IsValidUsername(trimmed) {
		return model.Identifier{}, false
	}
	return model.Identifier{Value: trimmed, Type: model.IdentifierTypeUsername}, true
}
