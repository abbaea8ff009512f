package trie

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/nspcc-dev/unitrie/pkg/core/unitrie"
	"github.com/nspcc-dev/unitrie/pkg/services/metrics"
	"github.com/nspcc-dev/unitrie/pkg/util"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// maxLookups limits the number of addresses remembered for lookups.
const maxLookups = 1_000_000

// shortCode is the code put into accounts selected by alpha, it's long
// enough to be stored by reference.
var shortCode = []byte{
	0x60, 0x80, 0x60, 0x40, 0x52, 0x34, 0x80, 0x15, 0x60, 0x0f, 0x57, 0x60,
	0x00, 0x80, 0xfd, 0x5b, 0x50, 0x60, 0x04, 0x36, 0x10, 0x60, 0x28, 0x57,
	0x60, 0x00, 0x35, 0x60, 0xe0, 0x1c, 0x80, 0x63, 0x60, 0xfe, 0x47, 0xb1,
	0x14, 0x60, 0x2d, 0x57, 0x5b, 0x60, 0x00, 0x80, 0xfd, 0x5b, 0x00,
}

// StressResult is the outcome of a stress run.
type StressResult struct {
	Accounts int
	Found    int
	Insert   time.Duration
	Lookup   time.Duration
	Stats    PathStats
}

// accountValue returns a serialized account with the given balance.
func accountValue(balance uint64) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, balance)
	return v
}

// Stress creates accounts random accounts in batches, committing every batch
// and collapsing the trie to collapseDepth afterwards. Each account gets code
// with alpha probability. All created accounts are looked up at the end.
func (d *db) Stress(accounts, batches int, alpha float64, collapseDepth int) (StressResult, error) {
	var (
		res       = StressResult{Accounts: accounts}
		addresses = make([]util.Uint160, 0, min(accounts, maxLookups))
		perBatch  = accounts / batches
		start     = time.Now()
	)
	for batch := 0; batch < batches; batch++ {
		n := perBatch
		if batch == batches-1 {
			n = accounts - perBatch*(batches-1)
		}
		for i := 0; i < n; i++ {
			var addr util.Uint160
			_, _ = rand.Read(addr[:])
			if len(addresses) < maxLookups {
				addresses = append(addresses, addr)
			}
			if err := d.trie.Put(unitrie.AccountKey(addr), accountValue(100000)); err != nil {
				return res, err
			}
			if rand.Float64() < alpha {
				if err := d.trie.Put(unitrie.AccountCodeKey(addr), shortCode); err != nil {
					return res, err
				}
			}
		}
		if err := d.commit(); err != nil {
			return res, err
		}
		d.trie.Collapse(collapseDepth)
		d.log.Info("batch committed",
			zap.Int("batch", batch),
			zap.Int("accounts", n),
			zap.Duration("elapsed", time.Since(start)),
			zap.Stringer("root", d.trie.StateRoot()))
	}
	res.Insert = time.Since(start)

	var err error
	res.Stats, err = CollectStats(d.trie)
	if err != nil {
		return res, err
	}

	start = time.Now()
	for _, addr := range addresses {
		_, err := d.trie.Get(unitrie.AccountKey(addr))
		if err == nil {
			res.Found++
		} else if !errors.Is(err, unitrie.ErrNotFound) {
			return res, err
		}
	}
	res.Lookup = time.Since(start)
	return res, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func stress(ctx *cli.Context) error {
	var (
		accounts = ctx.Int("accounts")
		batches  = ctx.Int("batches")
		alpha    = ctx.Float64("alpha")
	)
	switch {
	case accounts <= 0:
		return cli.NewExitError("positive number of accounts is required", 1)
	case batches <= 0 || batches > accounts:
		return cli.NewExitError("number of batches must be in [1, accounts]", 1)
	case alpha < 0 || alpha > 1:
		return cli.NewExitError("alpha must be in [0, 1]", 1)
	}
	return withDB(ctx, func(d *db) error {
		prometheus := metrics.NewPrometheusService(d.cfg.Prometheus, d.log)
		pprof := metrics.NewPprofService(d.cfg.Pprof, d.log)
		for _, srv := range []*metrics.Service{prometheus, pprof} {
			if err := srv.Start(); err != nil {
				return fmt.Errorf("failed to start service: %w", err)
			}
			defer srv.ShutDown()
		}

		fmt.Fprintf(ctx.App.Writer, "Inserting %d accounts\n", accounts)
		res, err := d.Stress(accounts, batches, alpha, ctx.Int("collapse"))
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "Insert elapsed: %.3fs\n", res.Insert.Seconds())
		fmt.Fprintf(ctx.App.Writer, "Stats: %s\n", res.Stats)
		fmt.Fprintf(ctx.App.Writer, "Looked up for %d accounts, found %d, elapsed = %.3fs\n",
			min(res.Accounts, maxLookups), res.Found, res.Lookup.Seconds())
		fmt.Fprintf(ctx.App.Writer, "Root: %s\n", d.trie.StateRoot().StringBE())
		return nil
	})
}
