package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/yndnr/snapshot-merger/internal/core/domain"
	"github.com/yndnr/snapshot-merger/internal/infra/fsutil"
)

const (
	// GenesisFile is the genesis file name inside a ledger directory.
	GenesisFile = "genesis.bin"
	// AccountsDir is the account database directory inside a ledger directory.
	AccountsDir = "accounts"
	// MaxGenesisSize caps the genesis file size.
	MaxGenesisSize = 10 << 20
)

// Loader reads ledger directories. It is safe for concurrent use.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger selects slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load opens the ledger at dir read-only and reads every account into
// memory. Any failure is reported as domain.ErrLedgerLoad.
func (l *Loader) Load(ctx context.Context, dir string) (*domain.Ledger, error) {
	start := time.Now()
	accountsDir := filepath.Join(dir, AccountsDir)
	if info, err := os.Stat(accountsDir); err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("%s is not a directory", accountsDir)
		}
		return nil, domain.ErrLedgerLoad.WithDetails(dir).WithCause(err)
	}

	db, err := openDB(accountsDir, true, l.logger)
	if err != nil {
		return nil, domain.ErrLedgerLoad.WithDetails(dir).WithCause(err)
	}
	defer db.Close()

	ledger, err := l.read(ctx, db, dir)
	if err != nil {
		return nil, domain.ErrLedgerLoad.WithDetails(dir).WithCause(err)
	}

	l.logger.Info("ledger loaded",
		"dir", dir,
		"accounts", ledger.Store.Len(),
		"slot", ledger.Store.Slot(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return ledger, nil
}

func (l *Loader) read(ctx context.Context, db *badger.DB, dir string) (*domain.Ledger, error) {
	ledger := &domain.Ledger{Dir: dir}

	err := db.View(func(txn *badger.Txn) error {
		slot, err := readUint64(txn, keySlot)
		if err != nil {
			return fmt.Errorf("read slot: %w", err)
		}
		capitalization, err := readUint64(txn, keyCapitalization)
		if err != nil {
			return fmt.Errorf("read capitalization: %w", err)
		}

		item, err := txn.Get(keyGenesisAccounts)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("read genesis accounts: %w", err)
		default:
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read genesis accounts: %w", err)
			}
			if ledger.GenesisAccounts, err = decodeAddresses(raw); err != nil {
				return fmt.Errorf("decode genesis accounts: %w", err)
			}
		}

		store := domain.NewStore(slot, capitalization)
		progress := rate.Sometimes{Every: 250_000, Interval: 10 * time.Second}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = accountPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("read account: %w", err)
			}
			a, err := decodeAccount(item.KeyCopy(nil), value)
			if err != nil {
				return fmt.Errorf("decode account %x: %w", item.Key(), err)
			}
			if err := store.Insert(a); err != nil {
				return err
			}
			progress.Do(func() {
				l.logger.Info("loading accounts", "dir", dir, "loaded", humanize.Comma(int64(store.Len())))
			})
		}

		ledger.Store = store
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

func readUint64(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if err != nil {
		return 0, err
	}
	var v uint64
	err = item.Value(func(val []byte) error {
		v, err = decodeUint64(val)
		return err
	})
	return v, err
}

// GenesisBytes reads <dir>/genesis.bin. Files larger than MaxGenesisSize
// are rejected. Any failure is reported as domain.ErrGenesisRead.
func (l *Loader) GenesisBytes(dir string) ([]byte, error) {
	return ReadGenesis(filepath.Join(dir, GenesisFile))
}

// ReadGenesis reads a genesis file at an arbitrary path with the same
// limits as GenesisBytes.
func ReadGenesis(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.ErrGenesisRead.WithDetails(path).WithCause(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxGenesisSize+1))
	if err != nil {
		return nil, domain.ErrGenesisRead.WithDetails(path).WithCause(err)
	}
	if len(data) > MaxGenesisSize {
		return nil, domain.ErrGenesisRead.WithDetailsf("%s is larger than %s", path, humanize.IBytes(MaxGenesisSize))
	}
	return data, nil
}

// Write creates a ledger directory at dir from ledger and genesis. dir
// must not already contain an account database. Any failure is reported
// as domain.ErrIOFailure.
func Write(dir string, ledger *domain.Ledger, genesis []byte, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	accountsDir := filepath.Join(dir, AccountsDir)
	if exists, err := fsutil.Exists(accountsDir); err != nil {
		return domain.ErrIOFailure.WithDetails(accountsDir).WithCause(err)
	} else if exists {
		return domain.ErrIOFailure.WithDetailsf("%s already exists", accountsDir)
	}
	if err := os.MkdirAll(accountsDir, 0755); err != nil {
		return domain.ErrIOFailure.WithDetails(accountsDir).WithCause(err)
	}

	if err := writeAccounts(accountsDir, ledger, logger); err != nil {
		return domain.ErrIOFailure.WithDetails(accountsDir).WithCause(err)
	}
	if err := fsutil.WriteFileAtomic(filepath.Join(dir, GenesisFile), genesis); err != nil {
		return domain.ErrIOFailure.WithDetails(dir).WithCause(err)
	}

	logger.Info("ledger written", "dir", dir, "accounts", ledger.Store.Len(), "slot", ledger.Store.Slot())
	return nil
}

func writeAccounts(accountsDir string, ledger *domain.Ledger, logger *slog.Logger) (err error) {
	db, err := openDB(accountsDir, false, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close db: %w", cerr)
		}
	}()

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	for _, a := range ledger.Store.Accounts() {
		if err := wb.Set(accountKey(a.Address), encodeAccount(a)); err != nil {
			return fmt.Errorf("write account %s: %w", a.Address, err)
		}
	}
	meta := []struct {
		key   []byte
		value []byte
	}{
		{keySlot, encodeUint64(ledger.Store.Slot())},
		{keyCapitalization, encodeUint64(ledger.Store.Capitalization())},
		{keyGenesisAccounts, encodeAddresses(ledger.GenesisAccounts)},
	}
	for _, m := range meta {
		if err := wb.Set(m.key, m.value); err != nil {
			return fmt.Errorf("write %s: %w", m.key, err)
		}
	}
	return wb.Flush()
}
