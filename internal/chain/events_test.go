package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	eventFrom = common.HexToAddress("0x1111111111111111111111111111111111111111")
	eventTo   = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestDecodePaymentSent(t *testing.T) {
	data, err := WalletABI().Events["PaymentSent"].Inputs.NonIndexed().Pack(
		big.NewInt(1500000), "alice_99",
	)
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}

	log := types.Log{
		Topics: []common.Hash{
			PaymentSentTopic(),
			common.BytesToHash(eventFrom.Bytes()),
			common.BytesToHash(eventTo.Bytes()),
		},
		Data: data,
	}

	event, err := DecodePaymentSent(log)
	if err != nil {
		t.Fatalf("DecodePaymentSent() error: %v", err)
	}
	if event.From != eventFrom || event.To != eventTo {
		t.Errorf("addresses = %v -> %v, want %v -> %v", event.From, event.To, eventFrom, eventTo)
	}
	if event.Amount.String() != "1500000" {
		t.Errorf("Amount = %s, want 1500000", event.Amount)
	}
	if event.Identifier != "alice_99" {
		t.Errorf("Identifier = %s, want alice_99", event.Identifier)
	}
}

func TestDecodePaymentReceived(t *testing.T) {
	data, err := WalletABI().Events["PaymentReceived"].Inputs.NonIndexed().Pack(
		big.NewInt(42),
	)
	if err != nil {
		t.Fatalf("pack error: %v", err)
	}

	log := types.Log{
		Topics: []common.Hash{
			PaymentReceivedTopic(),
			common.BytesToHash(eventFrom.Bytes()),
			common.BytesToHash(eventTo.Bytes()),
		},
		Data: data,
	}

	event, err := DecodePaymentReceived(log)
	if err != nil {
		t.Fatalf("DecodePaymentReceived() error: %v", err)
	}
	if event.Amount.String() != "42" {
		t.Errorf("Amount = %s, want 42", event.Amount)
	}
}

func TestDecodeRejectsWrongTopic(t *testing.T) {
	log := types.Log{
		Topics: []common.Hash{
			PaymentReceivedTopic(),
			common.BytesToHash(eventFrom.Bytes()),
			common.BytesToHash(eventTo.Bytes()),
		},
	}
	if _, err := DecodePaymentSent(log); err == nil {
		t.Error("DecodePaymentSent should reject a PaymentReceived log")
	}

	if _, err := DecodePaymentReceived(types.Log{}); err == nil {
		t.Error("DecodePaymentReceived should reject a log without topics")
	}
}
