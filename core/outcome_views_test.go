package core

import (
	"strings"
	"testing"
)

func TestPaymentOutcomeTypedViews(t *testing.T) {
	hash := "0x" + strings.Repeat("ab", 32)
	outcome := Success(SuccessDetails{
		PaymentID:   "p1",
		TxHash:      hash,
		FromAddress: "0x1111111111111111111111111111111111111111",
		ToAddress:   "0x2222222222222222222222222222222222222222",
	})

	from, ok := outcome.PayerAddress()
	if !ok || strings.ToLower(from.Hex()) != outcome.FromAddress {
		t.Fatalf("unexpected payer address %s", from.Hex())
	}
	to, ok := outcome.RecipientAddress()
	if !ok || strings.ToLower(to.Hex()) != outcome.ToAddress {
		t.Fatalf("unexpected recipient address %s", to.Hex())
	}
	txHash, ok := outcome.TransactionHash()
	if !ok || txHash.Hex() != hash {
		t.Fatalf("unexpected tx hash %s", txHash.Hex())
	}
}

func TestPaymentOutcomeTypedViewsRejectMalformedValues(t *testing.T) {
	outcome := Success(SuccessDetails{PaymentID: "p1", TxHash: "0xdeadbeef", FromAddress: "alice", ToAddress: ""})
	if _, ok := outcome.PayerAddress(); ok {
		t.Fatalf("expected malformed payer address to be rejected")
	}
	if _, ok := outcome.RecipientAddress(); ok {
		t.Fatalf("expected empty recipient address to be rejected")
	}
	if _, ok := outcome.TransactionHash(); ok {
		t.Fatalf("expected short tx hash to be rejected")
	}
	bad := Success(SuccessDetails{PaymentID: "p1", TxHash: "0x" + strings.Repeat("zz", 32)})
	if _, ok := bad.TransactionHash(); ok {
		t.Fatalf("expected non-hex tx hash to be rejected")
	}
}

func TestPaymentOutcomeKinds(t *testing.T) {
	if !Success(SuccessDetails{PaymentID: "p"}).IsSuccess() || !Failed("x").IsFailed() || !Cancelled().IsCancelled() {
		t.Fatalf("unexpected outcome kind predicates")
	}
	if Cancelled().IsFailed() || Failed("").IsSuccess() {
		t.Fatalf("outcome predicates must be exclusive")
	}
}
