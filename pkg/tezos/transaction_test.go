package tezos

import (
	"errors"
	"testing"
)

func TestNewTransfer_RejectsOriginated(t *testing.T) {
	src := NewAccount(testPub(t)).Address
	kt1, _ := ParseAddress("KT1B4dQuq8jaMCwjV4c5vxfd14xYXwB9G6Hp")
	if _, err := NewTransfer(src, kt1, 1, DefaultFeeBasis(1)); !errors.Is(err, ErrNotImplicit) {
		t.Errorf("NewTransfer(KT1 target) error = %v", err)
	}
	if _, err := NewTransfer(kt1, src, 1, DefaultFeeBasis(1)); !errors.Is(err, ErrNotImplicit) {
		t.Errorf("NewTransfer(KT1 source) error = %v", err)
	}
	if _, err := NewDelegation(src, kt1, DefaultFeeBasis(1)); !errors.Is(err, ErrNotImplicit) {
		t.Errorf("NewDelegation(KT1 delegate) error = %v", err)
	}
}

func TestTransaction_Reveal(t *testing.T) {
	key := testKey(t)
	src := NewAccount(key.PublicKey()).Address
	fb := EstimateFeeBasis(1, 0, 1000, 0, 9)
	tx, err := NewTransfer(src, src, 500, fb)
	if err != nil {
		t.Fatalf("NewTransfer() error: %v", err)
	}

	contents := tx.Contents(key.PublicKey(), true)
	if len(contents) != 2 {
		t.Fatalf("Contents() with reveal = %d operations", len(contents))
	}
	if contents[0].Operation.Kind() != KindReveal || contents[0].Counter != 10 {
		t.Errorf("first op = %s counter %d", contents[0].Operation.Kind(), contents[0].Counter)
	}
	if contents[1].Operation.Kind() != KindTransaction || contents[1].Counter != 11 {
		t.Errorf("second op = %s counter %d", contents[1].Operation.Kind(), contents[1].Counter)
	}
	if got := tx.Contents(key.PublicKey(), false); len(got) != 1 || got[0].Counter != 10 {
		t.Errorf("Contents() without reveal = %+v", got)
	}
}

func TestTransaction_SerializeAndSign(t *testing.T) {
	key := testKey(t)
	src := NewAccount(key.PublicKey()).Address
	tx, err := NewTransfer(src, src, 500, DefaultFeeBasis(1))
	if err != nil {
		t.Fatalf("NewTransfer() error: %v", err)
	}
	if _, err := tx.Signed(); !errors.Is(err, ErrNotSigned) {
		t.Errorf("Signed() before signing error = %v", err)
	}

	branch := BlockHash{7}
	est := tx.SerializeForFeeEstimation(branch, key.PublicKey(), false)
	if tx.FeeBasis.SizeInBytes != uint64(len(est)) {
		t.Errorf("SizeInBytes = %d, want %d", tx.FeeBasis.SizeInBytes, len(est))
	}

	n := tx.SerializeAndSign(branch, key, false)
	if n != len(est) {
		t.Errorf("signed size %d differs from estimation size %d", n, len(est))
	}
	so, err := tx.Signed()
	if err != nil {
		t.Fatalf("Signed() error: %v", err)
	}
	if err := so.Verify(key.PublicKey()); err != nil {
		t.Errorf("Verify() error: %v", err)
	}
	if tx.Hash() != so.Hash || tx.Hash().IsZero() {
		t.Error("Hash() does not match the signed operation")
	}

	l, err := ParseOperationList(so.Bytes[:len(so.Bytes)-64])
	if err != nil {
		t.Fatalf("ParseOperationList() error: %v", err)
	}
	if l.Branch != branch || l.Contents[0].Fee != tx.Fee() {
		t.Errorf("parsed list = %+v", l)
	}
}
