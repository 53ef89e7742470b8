package wallet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Trivium-tech/trivium-wallet/internal/log"
	"github.com/Trivium-tech/trivium-wallet/pkg/crypto"
	"github.com/Trivium-tech/trivium-wallet/pkg/types"
)

// keystoreFile is the on-disk JSON format for an encrypted wallet. Only
// the seed is secret; keys are re-derived from it on load and never
// stored. The public metadata lets the wallet be listed and addresses
// shown without a password.
type keystoreFile struct {
	Version       int                         `json:"version"`
	CreatedAt     time.Time                   `json:"created_at"`
	EncryptedSeed []byte                      `json:"encrypted_seed"`
	AccountID     string                      `json:"account_id"`
	Org           string                      `json:"org"`
	Addresses     []AddressRecord             `json:"addresses"`
	NextIndex     [types.NumCurrencies]uint32 `json:"next_index"`
}

// AddressRecord stores public metadata for one derived address.
type AddressRecord struct {
	Currency types.CurrencyType `json:"currency"`
	Index    uint32             `json:"index"`
	Address  types.Address      `json:"address"`
	PubKey   crypto.PublicKey   `json:"pub_key"`
}

// Info is the public portion of a wallet file.
type Info struct {
	CreatedAt time.Time
	AccountID string
	Org       string
	Addresses []AddressRecord
}

// Identity is the decrypted key material of a wallet: the account and
// one keyed entry per derived address, ready to merge into a ledger
// snapshot.
type Identity struct {
	Account   Account
	Addresses []AddressEntry
}

// Attach copies the identity's key material into a ledger snapshot: the
// account identity replaces the snapshot's, and every snapshot address
// gets its key pair. Fails if the snapshot references an address this
// wallet does not manage.
func (id *Identity) Attach(snap *Snapshot) error {
	snap.Account = id.Account
	for i := range snap.Addresses {
		entry := &snap.Addresses[i]
		found := false
		for j := range id.Addresses {
			if id.Addresses[j].Address != entry.Address {
				continue
			}
			if id.Addresses[j].Currency != entry.Currency {
				return fmt.Errorf("address %s: snapshot says currency %s, wallet says %s",
					entry.Address, entry.Currency, id.Addresses[j].Currency)
			}
			entry.Keys = id.Addresses[j].Keys
			found = true
			break
		}
		if !found {
			return fmt.Errorf("%w: snapshot address %s is not managed by this wallet",
				ErrAddressNotFound, entry.Address)
		}
	}
	return nil
}

// Keystore manages encrypted wallet storage on disk.
type Keystore struct {
	path string
}

// NewKeystore creates a keystore that reads/writes to the given directory.
// The directory is created if it doesn't exist.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

// walletPath returns the file path for a wallet by name.
func (ks *Keystore) walletPath(name string) string {
	return filepath.Join(ks.path, name+".wallet")
}

func validWalletName(name string) error {
	if name == "" {
		return fmt.Errorf("wallet name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("wallet name %q must not contain path separators", name)
	}
	return nil
}

// Create generates a fresh 24-word mnemonic, derives the account from
// it, and writes a new encrypted wallet file. The mnemonic is returned
// exactly once for the user to back up; it is not stored.
func (ks *Keystore) Create(name, passphrase string, password []byte, params EncryptionParams) (string, error) {
	mnemonic, err := GenerateMnemonic()
	if err != nil {
		return "", err
	}
	if err := ks.create(name, mnemonic, passphrase, password, params); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// Import writes a new encrypted wallet file for an existing mnemonic.
// The derived account id (and every later address) is identical on any
// machine importing the same mnemonic and passphrase.
func (ks *Keystore) Import(name, mnemonic, passphrase string, password []byte, params EncryptionParams) error {
	return ks.create(name, mnemonic, passphrase, password, params)
}

func (ks *Keystore) create(name, mnemonic, passphrase string, password []byte, params EncryptionParams) error {
	if err := validWalletName(name); err != nil {
		return err
	}
	path := ks.walletPath(name)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("wallet %q already exists", name)
	}

	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return err
	}
	defer zeroBytes(seed)

	accountKey, err := DeriveAccountKey(seed)
	if err != nil {
		return fmt.Errorf("derive account key: %w", err)
	}
	accountID := crypto.AccountID(accountKey.Hex())
	accountKey.Zero()

	encrypted, err := Encrypt(seed, password, params)
	if err != nil {
		return fmt.Errorf("encrypt seed: %w", err)
	}

	kf := keystoreFile{
		Version:       1,
		CreatedAt:     time.Now().UTC(),
		EncryptedSeed: encrypted,
		AccountID:     accountID,
		Addresses:     []AddressRecord{},
	}
	if err := ks.writeFile(path, &kf); err != nil {
		return err
	}

	log.Keystore.Info().Str("wallet", name).Str("account", accountID).Msg("wallet created")
	return nil
}

// Load decrypts a wallet and rebuilds its full identity: the account key
// pair plus one keyed entry per recorded address. Every derived address
// is checked against the stored metadata, so a tampered wallet file is
// rejected.
func (ks *Keystore) Load(name string, password []byte) (*Identity, error) {
	kf, err := ks.readFile(ks.walletPath(name))
	if err != nil {
		return nil, err
	}

	seed, err := Decrypt(kf.EncryptedSeed, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt wallet: %w", err)
	}
	defer zeroBytes(seed)

	accountKey, err := DeriveAccountKey(seed)
	if err != nil {
		return nil, fmt.Errorf("derive account key: %w", err)
	}
	if got := crypto.AccountID(accountKey.Hex()); got != kf.AccountID {
		return nil, fmt.Errorf("wallet %q: account id mismatch (file %s, derived %s)", name, kf.AccountID, got)
	}

	id := &Identity{
		Account: Account{
			ID:   kf.AccountID,
			Org:  kf.Org,
			Keys: KeyPair{Priv: accountKey.Hex(), Pub: accountKey.Public()},
		},
		Addresses: make([]AddressEntry, 0, len(kf.Addresses)),
	}

	for _, rec := range kf.Addresses {
		key, err := DeriveAddressKey(seed, rec.Currency, rec.Index)
		if err != nil {
			return nil, fmt.Errorf("derive address %d/%d: %w", rec.Currency, rec.Index, err)
		}
		addr, err := crypto.DeriveAddress(key.Public())
		if err != nil {
			return nil, fmt.Errorf("derive address %d/%d: %w", rec.Currency, rec.Index, err)
		}
		if addr != rec.Address {
			return nil, fmt.Errorf("wallet %q: stored address %s does not match derived %s", name, rec.Address, addr)
		}
		id.Addresses = append(id.Addresses, AddressEntry{
			Address:  rec.Address,
			Currency: rec.Currency,
			Keys:     KeyPair{Priv: key.Hex(), Pub: key.Public()},
		})
	}
	return id, nil
}

// NewAddress derives the next address for a currency, records its public
// metadata, and advances that currency's derivation index.
func (ks *Keystore) NewAddress(name string, password []byte, currency types.CurrencyType) (AddressRecord, error) {
	if !currency.Valid() {
		return AddressRecord{}, fmt.Errorf("invalid currency %d", currency)
	}

	path := ks.walletPath(name)
	kf, err := ks.readFile(path)
	if err != nil {
		return AddressRecord{}, err
	}

	seed, err := Decrypt(kf.EncryptedSeed, password)
	if err != nil {
		return AddressRecord{}, fmt.Errorf("decrypt wallet: %w", err)
	}
	defer zeroBytes(seed)

	index := kf.NextIndex[currency]
	key, err := DeriveAddressKey(seed, currency, index)
	if err != nil {
		return AddressRecord{}, fmt.Errorf("derive address key: %w", err)
	}
	addr, err := crypto.DeriveAddress(key.Public())
	if err != nil {
		return AddressRecord{}, fmt.Errorf("derive address: %w", err)
	}

	rec := AddressRecord{
		Currency: currency,
		Index:    index,
		Address:  addr,
		PubKey:   key.Public(),
	}
	key.Zero()

	kf.Addresses = append(kf.Addresses, rec)
	kf.NextIndex[currency]++
	if err := ks.writeFile(path, kf); err != nil {
		return AddressRecord{}, err
	}

	log.Keystore.Info().
		Str("wallet", name).
		Stringer("currency", currency).
		Uint32("index", index).
		Str("address", string(addr)).
		Msg("address derived")
	return rec, nil
}

// SetOrg updates the wallet's organization membership. Org is public
// metadata, so no password is needed.
func (ks *Keystore) SetOrg(name, org string) error {
	path := ks.walletPath(name)
	kf, err := ks.readFile(path)
	if err != nil {
		return err
	}
	kf.Org = org
	return ks.writeFile(path, kf)
}

// Info returns the public portion of a wallet file.
func (ks *Keystore) Info(name string) (*Info, error) {
	kf, err := ks.readFile(ks.walletPath(name))
	if err != nil {
		return nil, err
	}
	return &Info{
		CreatedAt: kf.CreatedAt,
		AccountID: kf.AccountID,
		Org:       kf.Org,
		Addresses: kf.Addresses,
	}, nil
}

// List returns the names of all wallet files in the keystore.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ext := filepath.Ext(name); ext == ".wallet" {
			names = append(names, name[:len(name)-len(ext)])
		}
	}
	return names, nil
}

// Delete removes a wallet file.
func (ks *Keystore) Delete(name string) error {
	path := ks.walletPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("wallet %q not found", name)
	}
	if err := os.Remove(path); err != nil {
		return err
	}
	log.Keystore.Info().Str("wallet", name).Msg("wallet deleted")
	return nil
}

func (ks *Keystore) writeFile(path string, kf *keystoreFile) error {
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write wallet: %w", err)
	}
	return nil
}

func (ks *Keystore) readFile(path string) (*keystoreFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse wallet: %w", err)
	}
	if kf.Version != 1 {
		return nil, fmt.Errorf("unsupported wallet version: %d", kf.Version)
	}
	return &kf, nil
}
