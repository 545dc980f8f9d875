package identifier

import (
	"testing"

	"github.com/hitoshi/paylink/internal/model"
)

func TestMachinePhoneHappyPath(t *testing.T) {
	m := NewMachine(model.IdentifierTypePhone)

	if m.State() != StateForm {
		t.Fatalf("initial state = %v, want %v", m.State(), StateForm)
	}

	steps := []struct {
		event Event
		want  State
	}{
		{EventSubmit, StateVerify},
		{EventCodeSent, StateVerify},
		{EventCodeVerified, StateProcessing},
		{EventTxConfirmed, StateSuccess},
	}
	for _, step := range steps {
		got, err := m.Apply(step.event)
		if err != nil {
			t.Fatalf("Apply(%v) error: %v", step.event, err)
		}
		if got != step.want {
			t.Errorf("Apply(%v) = %v, want %v", step.event, got, step.want)
		}
	}
}

func TestMachineUsernameSkipsVerify(t *testing.T) {
	m := NewMachine(model.IdentifierTypeUsername)

	got, err := m.Apply(EventSubmit)
	if err != nil {
		t.Fatalf("Apply(Submit) error: %v", err)
	}
	if got != StateProcessing {
		t.Errorf("username submit should skip verify: got %v, want %v", got, StateProcessing)
	}
}

func TestMachineProcessingFailureRegresses(t *testing.T) {
	tests := []struct {
		name string
		typ  model.IdentifierType
		want State
	}{
		{"電話番号はVerifyへ戻る", model.IdentifierTypePhone, StateVerify},
		{"ユーザー名はFormへ戻る", model.IdentifierTypeUsername, StateForm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Machine{identifierType: tt.typ, state: StateProcessing}
			got, err := m.Apply(EventFail)
			if err != nil {
				t.Fatalf("Apply(Fail) error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Apply(Fail) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMachineRejectsInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		state State
		event Event
	}{
		{"FormでTxConfirmedは不正", StateForm, EventTxConfirmed},
		{"FormでCodeVerifiedは不正", StateForm, EventCodeVerified},
		{"VerifyでSubmitは不正", StateVerify, EventSubmit},
		{"VerifyでTxConfirmedは不正", StateVerify, EventTxConfirmed},
		{"ProcessingでSubmitは不正", StateProcessing, EventSubmit},
		{"Successは終端", StateSuccess, EventSubmit},
		{"SuccessでFailも不正", StateSuccess, EventFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Machine{identifierType: model.IdentifierTypePhone, state: tt.state}
			got, err := m.Apply(tt.event)
			if err == nil {
				t.Fatalf("Apply(%v) from %v should fail", tt.event, tt.state)
			}
			if got != tt.state {
				t.Errorf("state changed on invalid transition: %v -> %v", tt.state, got)
			}
		})
	}
}
