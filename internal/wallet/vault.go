package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Klingon-tech/walletkit-core/internal/fileservice"
	"github.com/Klingon-tech/walletkit-core/internal/log"
)

// VaultRecord is the file-service record type holding sealed seeds.
var VaultRecord = fileservice.RecordType{Name: "vault", Version: 1}

// Vault errors.
var (
	ErrVaultExists   = errors.New("vault entry already exists")
	ErrVaultNotFound = errors.New("vault entry not found")
	ErrAccountExists = errors.New("account index already recorded with another address")
)

// vaultEntry is the JSON payload of one vault record.
type vaultEntry struct {
	CreatedAt  time.Time      `json:"created_at"`
	SealedSeed []byte         `json:"sealed_seed"`
	Accounts   []AccountEntry `json:"accounts"`
}

// AccountEntry stores metadata for a derived address.
type AccountEntry struct {
	Index   uint32 `json:"index"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Vault keeps passphrase-sealed seeds in a file service. Seeds are only
// ever returned to the caller; the vault holds no plaintext.
type Vault struct {
	svc    fileservice.Service
	params EncryptionParams
}

// NewVault returns a vault over svc sealing with params.
func NewVault(svc fileservice.Service, params EncryptionParams) *Vault {
	return &Vault{svc: svc, params: params}
}

func vaultContext(name string) []byte {
	return []byte(VaultRecord.Name + "/" + name)
}

// Create seals seed under passphrase as the entry name.
func (v *Vault) Create(name string, seed, passphrase []byte) error {
	if _, err := v.read(name); err == nil {
		return fmt.Errorf("%w: %q", ErrVaultExists, name)
	} else if !errors.Is(err, ErrVaultNotFound) {
		return err
	}

	sealed, err := Seal(seed, passphrase, vaultContext(name), v.params)
	if err != nil {
		return fmt.Errorf("seal seed: %w", err)
	}
	if err := v.write(name, &vaultEntry{
		CreatedAt:  time.Now().UTC(),
		SealedSeed: sealed,
		Accounts:   []AccountEntry{},
	}); err != nil {
		return err
	}
	log.Wallet.Info().Str("name", name).Msg("Vault entry created")
	return nil
}

// Load opens the entry name and returns its seed.
func (v *Vault) Load(name string, passphrase []byte) ([]byte, error) {
	e, err := v.read(name)
	if err != nil {
		return nil, err
	}
	seed, err := Open(e.SealedSeed, passphrase, vaultContext(name))
	if err != nil {
		return nil, fmt.Errorf("open vault %q: %w", name, err)
	}
	return seed, nil
}

// ChangePassphrase re-seals the entry name under a new passphrase.
func (v *Vault) ChangePassphrase(name string, oldPass, newPass []byte) error {
	e, err := v.read(name)
	if err != nil {
		return err
	}
	seed, err := Open(e.SealedSeed, oldPass, vaultContext(name))
	if err != nil {
		return fmt.Errorf("open vault %q: %w", name, err)
	}
	defer zero(seed)
	if e.SealedSeed, err = Seal(seed, newPass, vaultContext(name), v.params); err != nil {
		return fmt.Errorf("seal seed: %w", err)
	}
	return v.write(name, e)
}

// AddAccount records a derived address in the entry's metadata. Adding
// the same index and address twice is a no-op.
func (v *Vault) AddAccount(name string, acct AccountEntry) error {
	e, err := v.read(name)
	if err != nil {
		return err
	}
	for _, existing := range e.Accounts {
		if existing.Index == acct.Index {
			if existing.Address == acct.Address {
				return nil
			}
			return fmt.Errorf("%w: index %d", ErrAccountExists, acct.Index)
		}
	}
	e.Accounts = append(e.Accounts, acct)
	return v.write(name, e)
}

// Accounts returns the recorded accounts of entry name.
func (v *Vault) Accounts(name string) ([]AccountEntry, error) {
	e, err := v.read(name)
	if err != nil {
		return nil, err
	}
	return e.Accounts, nil
}

// List returns the names of all vault entries.
func (v *Vault) List() ([]string, error) {
	var names []string
	err := v.svc.ForEach(VaultRecord, func(key string, _ []byte) error {
		names = append(names, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list vault: %w", err)
	}
	return names, nil
}

// Delete removes the entry name.
func (v *Vault) Delete(name string) error {
	if _, err := v.read(name); err != nil {
		return err
	}
	return v.svc.Delete(VaultRecord, name)
}

func (v *Vault) write(name string, e *vaultEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal vault entry: %w", err)
	}
	if err := v.svc.Put(VaultRecord, name, data); err != nil {
		return fmt.Errorf("write vault entry: %w", err)
	}
	return nil
}

func (v *Vault) read(name string) (*vaultEntry, error) {
	data, err := v.svc.Get(VaultRecord, name)
	if errors.Is(err, fileservice.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrVaultNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read vault entry: %w", err)
	}
	var e vaultEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse vault entry: %w", err)
	}
	return &e, nil
}
