// Package payment は支払いワークフローを提供する。
// 単発払いとバッチ払いを扱い、金額のスケーリングとCSV取り込みもここに置く。
package payment

import "fmt"

// State は支払いワークフローの状態。
type State string

const (
	// StateForm は支払い内容の入力中。
	StateForm State = "form"
	// StateConfirm は確認画面。副作用を持たず、Formへ戻れる。
	StateConfirm State = "confirm"
	// StateSending はトランザクション送信と確定待ち。
	StateSending State = "sending"
	// StateSuccess は支払い完了。終端状態。
	StateSuccess State = "success"
)

// Event は状態機械への入力。
type Event string

const (
	// EventSubmit はフォームの送信。Confirmへ進む。
	EventSubmit Event = "submit"
	// EventBack は確認画面からの差し戻し。
	EventBack Event = "back"
	// EventConfirm は支払いの確定。Sendingへ進む。
	EventConfirm Event = "confirm"
	// EventTxConfirmed はトランザクションの確定。
	EventTxConfirmed Event = "tx_confirmed"
	// EventFail は送信中の失敗。Formへ戻る。
	EventFail Event = "fail"
)

// Machine は支払いワークフローの状態機械。
type Machine struct {
	state State
}

// NewMachine はForm状態の状態機械を生成する。
func NewMachine() *Machine {
	return &Machine{state: StateForm}
}

// State は現在の状態を返す。
func (m *Machine) State() State {
	return m.state
}

// Apply はイベントを適用し、遷移後の状態を返す。
// 定義外の遷移はエラーを返し、状態は変化しない。
func (m *Machine) Apply(event Event) (State, error) {
	next, err := transition(m.state, event)
	if err != nil {
		return m.state, err
	}
	m.state = next
	return next, nil
}

// transition は(状態, イベント)から次状態を決める純粋関数。
func transition(s State, e Event) (State, error) {
	switch s {
	case StateForm:
		if e == EventSubmit {
			return StateConfirm, nil
		}
	case StateConfirm:
		switch e {
		case EventBack:
			return StateForm, nil
		case EventConfirm:
			return StateSending, nil
		}
	case StateSending:
		switch e {
		case EventTxConfirmed:
			return StateSuccess, nil
		case EventFail:
			// 送信失敗はフォームからやり直す。
			return StateForm, nil
		}
	case StateSuccess:
		// 終端状態。
	}
	return s, fmt.Errorf("invalid transition: state=%s event=%s", s, e)
}
