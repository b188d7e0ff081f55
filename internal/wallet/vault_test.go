package wallet

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Klingon-tech/walletkit-core/internal/fileservice"
	"github.com/Klingon-tech/walletkit-core/internal/storage"
)

func testVault(t *testing.T) *Vault {
	t.Helper()
	svc, err := fileservice.New(storage.NewMemory(), "eth", "mainnet")
	if err != nil {
		t.Fatalf("fileservice.New() error: %v", err)
	}
	return NewVault(svc, fastParams())
}

func TestVault_CreateLoad(t *testing.T) {
	v := testVault(t)
	seed := testSeed(t, "")

	if err := v.Create("main", seed, []byte("pass")); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	got, err := v.Load("main", []byte("pass"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !bytes.Equal(got, seed) {
		t.Error("loaded seed should equal stored seed")
	}

	if _, err := v.Load("main", []byte("wrong")); !errors.Is(err, ErrDecrypt) {
		t.Errorf("Load() with wrong passphrase = %v, want ErrDecrypt", err)
	}
	if err := v.Create("main", seed, []byte("pass")); !errors.Is(err, ErrVaultExists) {
		t.Errorf("duplicate Create() = %v, want ErrVaultExists", err)
	}
	if _, err := v.Load("other", []byte("pass")); !errors.Is(err, ErrVaultNotFound) {
		t.Errorf("Load(missing) = %v, want ErrVaultNotFound", err)
	}
}

func TestVault_ChangePassphrase(t *testing.T) {
	v := testVault(t)
	seed := testSeed(t, "")
	if err := v.Create("main", seed, []byte("old")); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if err := v.ChangePassphrase("main", []byte("bad"), []byte("new")); !errors.Is(err, ErrDecrypt) {
		t.Errorf("ChangePassphrase() with wrong passphrase = %v, want ErrDecrypt", err)
	}
	if err := v.ChangePassphrase("main", []byte("old"), []byte("new")); err != nil {
		t.Fatalf("ChangePassphrase() error: %v", err)
	}
	if _, err := v.Load("main", []byte("old")); err == nil {
		t.Error("old passphrase should no longer open the vault")
	}
	got, err := v.Load("main", []byte("new"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !bytes.Equal(got, seed) {
		t.Error("seed changed across passphrase change")
	}
}

func TestVault_Accounts(t *testing.T) {
	v := testVault(t)
	if err := v.Create("main", testSeed(t, ""), []byte("p")); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	first := AccountEntry{Index: 0, Name: "primary", Address: "0x9858effd232b4033e47d90003d41ec34ecaeda94"}
	if err := v.AddAccount("main", first); err != nil {
		t.Fatalf("AddAccount() error: %v", err)
	}
	if err := v.AddAccount("main", first); err != nil {
		t.Errorf("repeated AddAccount() error: %v", err)
	}
	clash := AccountEntry{Index: 0, Address: "0x0000000000000000000000000000000000000001"}
	if err := v.AddAccount("main", clash); !errors.Is(err, ErrAccountExists) {
		t.Errorf("AddAccount(clash) = %v, want ErrAccountExists", err)
	}

	accts, err := v.Accounts("main")
	if err != nil {
		t.Fatalf("Accounts() error: %v", err)
	}
	if len(accts) != 1 || accts[0] != first {
		t.Errorf("Accounts() = %+v", accts)
	}
}

func TestVault_ListDelete(t *testing.T) {
	v := testVault(t)
	for _, name := range []string{"b", "a"} {
		if err := v.Create(name, testSeed(t, ""), []byte("p")); err != nil {
			t.Fatalf("Create(%s) error: %v", name, err)
		}
	}

	names, err := v.List()
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("List() = %v, want [a b]", names)
	}

	if err := v.Delete("a"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := v.Delete("a"); !errors.Is(err, ErrVaultNotFound) {
		t.Errorf("second Delete() = %v, want ErrVaultNotFound", err)
	}
}

func TestVault_NOPService(t *testing.T) {
	v := NewVault(fileservice.NOP{}, fastParams())
	if err := v.Create("main", testSeed(t, ""), []byte("p")); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if _, err := v.Load("main", []byte("p")); !errors.Is(err, ErrVaultNotFound) {
		t.Errorf("Load() on NOP = %v, want ErrVaultNotFound", err)
	}
}
