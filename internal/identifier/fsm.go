// Package identifier は識別子登録ワークフローを提供する。
// 画面遷移に依存しない純粋な状態機械として定義し、
// 副作用（コード送信、チェーン書き込み）はServiceが状態機械の外で行う。
package identifier

import (
	"fmt"

	"github.com/hitoshi/paylink/internal/model"
)

// State は登録ワークフローの状態。
type State string

const (
	// StateForm は識別子の入力中。
	StateForm State = "form"
	// StateVerify はSMSコードの確認待ち。電話番号の場合のみ通る。
	StateVerify State = "verify"
	// StateProcessing はチェーンへの書き込みと確定待ち。
	StateProcessing State = "processing"
	// StateSuccess は登録完了。終端状態。
	StateSuccess State = "success"
)

// Event は状態機械への入力。
type Event string

const (
	// EventSubmit はフォームの送信。
	EventSubmit Event = "submit"
	// EventCodeSent は確認コードの送信完了。再送時にも発火する。
	EventCodeSent Event = "code_sent"
	// EventCodeVerified はコード検証の成功。
	EventCodeVerified Event = "code_verified"
	// EventTxConfirmed はトランザクションのブロック取り込み確認。
	EventTxConfirmed Event = "tx_confirmed"
	// EventFail は現在の状態での処理失敗。
	EventFail Event = "fail"
)

// Machine は識別子種別ごとの遷移規則を持つ状態機械。
// 電話番号はForm→Verify→Processing→Success、
// ユーザー名はVerifyを飛ばしてForm→Processing→Successを辿る。
type Machine struct {
	identifierType model.IdentifierType
	state          State
}

// NewMachine はForm状態の状態機械を生成する。
func NewMachine(t model.IdentifierType) *Machine {
	return &Machine{identifierType: t, state: StateForm}
}

// State は現在の状態を返す。
func (m *Machine) State() State {
	return m.state
}

// Apply はイベントを適用し、遷移後の状態を返す。
// 定義外の遷移はエラーを返し、状態は変化しない。
func (m *Machine) Apply(event Event) (State, error) {
	next, err := transition(m.state, event, m.identifierType)
	if err != nil {
		return m.state, err
	}
	m.state = next
	return next, nil
}

// transition は(状態, イベント)から次状態を決める純粋関数。
func transition(s State, e Event, t model.IdentifierType) (State, error) {
	switch s {
	case StateForm:
		if e == EventSubmit {
			if t == model.IdentifierTypePhone {
				return StateVerify, nil
			}
			return StateProcessing, nil
		}
	case StateVerify:
		switch e {
		case EventCodeSent:
			// 再送。状態は変わらない。
			return StateVerify, nil
		case EventCodeVerified:
			return StateProcessing, nil
		case EventFail:
			return StateForm, nil
		}
	case StateProcessing:
		switch e {
		case EventTxConfirmed:
			return StateSuccess, nil
		case EventFail:
			// 失敗時は種別に応じて戻り先が異なる。
			if t == model.IdentifierTypePhone {
				return StateVerify, nil
			}
			return StateForm, nil
		}
	case StateSuccess:
		// 終端状態。いかなるイベントも受け付けない。
	}
	return s, fmt.Errorf("invalid transition: state=%s event=%s type=%s", s, e, t)
}
