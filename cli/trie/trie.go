package trie

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/nspcc-dev/unitrie/cli/options"
	"github.com/nspcc-dev/unitrie/pkg/config"
	"github.com/nspcc-dev/unitrie/pkg/core/storage"
	"github.com/nspcc-dev/unitrie/pkg/core/unitrie"
	"github.com/nspcc-dev/unitrie/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// dbVersion is the version of the on-disk format written to SYSVersion.
const dbVersion = "unitrie-1"

var rootKey = storage.DataUniTrieAux.Bytes()

// NewCommands returns 'db' command.
func NewCommands() []cli.Command {
	dumpFlags := append([]cli.Flag{
		cli.StringFlag{
			Name:  "out, o",
			Usage: "Output file (stdout if not given)",
		},
	}, options.ConfigFlags...)
	stressFlags := append([]cli.Flag{
		cli.IntFlag{
			Name:  "accounts, n",
			Usage: "Number of accounts to create",
			Value: 10000,
		},
		cli.IntFlag{
			Name:  "batches, b",
			Usage: "Number of batches accounts are committed in",
			Value: 50,
		},
		cli.Float64Flag{
			Name:  "alpha, a",
			Usage: "Probability of an account having code",
		},
		cli.IntFlag{
			Name:  "collapse",
			Usage: "Depth the trie is collapsed to after every batch",
			Value: 8,
		},
	}, options.ConfigFlags...)
	return []cli.Command{{
		Name:  "db",
		Usage: "Persisted UniTrie operations",
		Subcommands: []cli.Command{
			{
				Name:      "put",
				Usage:     "Put a key-value pair into the trie",
				UsageText: "put <hex key> <hex value>",
				Action:    put,
				Flags:     options.ConfigFlags,
			},
			{
				Name:      "get",
				Usage:     "Get the value of the key",
				UsageText: "get <hex key>",
				Action:    get,
				Flags:     options.ConfigFlags,
			},
			{
				Name:      "delete",
				Usage:     "Delete the key from the trie",
				UsageText: "delete <hex key>",
				Action:    del,
				Flags:     options.ConfigFlags,
			},
			{
				Name:   "root",
				Usage:  "Print the current state root",
				Action: root,
				Flags:  options.ConfigFlags,
			},
			{
				Name:      "dump",
				Usage:     "Dump all key-value pairs of the trie as JSON",
				UsageText: "dump [--out file]",
				Action:    dump,
				Flags:     dumpFlags,
			},
			{
				Name:   "stats",
				Usage:  "Print trie node statistics",
				Action: stats,
				Flags:  options.ConfigFlags,
			},
			{
				Name:      "stress",
				Usage:     "Insert random accounts and measure the time it takes",
				UsageText: "stress [--accounts N] [--batches B] [--alpha A]",
				Action:    stress,
				Flags:     stressFlags,
			},
		},
	}}
}

// db is an opened trie database.
type db struct {
	cfg   config.ApplicationConfiguration
	log   *zap.Logger
	store *storage.MemCachedStore
	ts    *unitrie.TrieStore
	trie  *unitrie.Trie
}

func openDB(ctx *cli.Context) (*db, error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}
	log, _, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return nil, err
	}
	ps, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return nil, fmt.Errorf("could not open DB: %w", err)
	}
	d, err := newDB(ps, cfg.ApplicationConfiguration, log)
	if err != nil {
		_ = ps.Close()
		return nil, err
	}
	return d, nil
}

func newDB(ps storage.Store, cfg config.ApplicationConfiguration, log *zap.Logger) (*db, error) {
	ver, err := storage.Version(ps)
	if err == nil && ver != dbVersion {
		return nil, fmt.Errorf("DB version mismatch: %q, expected %q", ver, dbVersion)
	} else if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("can't read DB version: %w", err)
	}

	store := storage.NewMemCachedStore(ps)
	ts, err := unitrie.NewTrieStore(store, cfg.UniTrie.NodeCacheSize, log)
	if err != nil {
		return nil, err
	}
	h := unitrie.EmptyRootHash
	data, err := store.Get(rootKey)
	switch {
	case err == nil:
		h, err = util.Uint256DecodeBytesBE(data)
		if err != nil {
			return nil, fmt.Errorf("invalid state root: %w", err)
		}
	case !errors.Is(err, storage.ErrKeyNotFound):
		return nil, fmt.Errorf("can't read state root: %w", err)
	}
	log.Debug("trie opened", zap.Stringer("root", h))
	return &db{
		cfg:   cfg,
		log:   log,
		store: store,
		ts:    ts,
		trie:  unitrie.NewTrieFromHash(h, ts),
	}, nil
}

// commit flushes the trie and persists it along with the new state root.
func (d *db) commit() error {
	err := d.trie.Flush()
	if err != nil {
		d.store.Rollback()
		return err
	}
	h := d.trie.StateRoot()
	d.store.Put(rootKey, h.BytesBE())
	if err := storage.PutVersion(d.store, dbVersion); err != nil {
		d.store.Rollback()
		return fmt.Errorf("failed to store DB version: %w", err)
	}
	if ce := d.log.Check(zap.DebugLevel, "persisting trie"); ce != nil {
		b := d.store.GetBatch()
		ce.Write(zap.Int("put", len(b.Put)), zap.Int("deleted", len(b.Deleted)))
	}
	n, err := d.store.Persist()
	if err != nil {
		return fmt.Errorf("failed to persist trie: %w", err)
	}
	d.log.Debug("trie persisted", zap.Stringer("root", h), zap.Int("keys", n))
	return nil
}

func (d *db) close() {
	if err := d.store.Close(); err != nil {
		d.log.Error("failed to close DB", zap.Error(err))
	}
	_ = d.log.Sync()
}

func parseHexArgs(ctx *cli.Context, names ...string) ([][]byte, error) {
	args := ctx.Args()
	if len(args) != len(names) {
		return nil, fmt.Errorf("expected %d arguments: %s", len(names), strings.Join(names, ", "))
	}
	res := make([][]byte, len(args))
	for i, arg := range args {
		b, err := hex.DecodeString(strings.TrimPrefix(arg, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", names[i], err)
		}
		res[i] = b
	}
	return res, nil
}

// withDB opens the database, runs f over it and converts errors into exit
// errors.
func withDB(ctx *cli.Context, f func(*db) error) error {
	d, err := openDB(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer d.close()
	if err := f(d); err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

func put(ctx *cli.Context) error {
	args, err := parseHexArgs(ctx, "key", "value")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return withDB(ctx, func(d *db) error {
		if err := d.trie.Put(args[0], args[1]); err != nil {
			return err
		}
		if err := d.commit(); err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, d.trie.StateRoot().StringBE())
		return nil
	})
}

func get(ctx *cli.Context) error {
	args, err := parseHexArgs(ctx, "key")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return withDB(ctx, func(d *db) error {
		v, err := d.trie.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, hex.EncodeToString(v))
		return nil
	})
}

func del(ctx *cli.Context) error {
	args, err := parseHexArgs(ctx, "key")
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return withDB(ctx, func(d *db) error {
		if err := d.trie.Delete(args[0]); err != nil {
			return err
		}
		if err := d.commit(); err != nil {
			return err
		}
		fmt.Fprintln(ctx.App.Writer, d.trie.StateRoot().StringBE())
		return nil
	})
}

func root(ctx *cli.Context) error {
	if len(ctx.Args()) != 0 {
		return cli.NewExitError("no arguments expected", 1)
	}
	return withDB(ctx, func(d *db) error {
		fmt.Fprintln(ctx.App.Writer, d.trie.StateRoot().StringBE())
		return nil
	})
}
