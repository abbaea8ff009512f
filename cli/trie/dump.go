package trie

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/unitrie/pkg/core/unitrie"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

// KVPair represents a key-value pair.
type KVPair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// DumpTrie writes all key-value pairs of the trie as JSON objects (one per
// pair) to w in key order. It returns the number of pairs written.
func DumpTrie(tr *unitrie.Trie, w io.Writer) (int, error) {
	var (
		count   int
		encErr  error
		encoder = json.NewEncoder(w)
	)
	err := tr.Traverse(func(path, value []byte) bool {
		encErr = encoder.Encode(KVPair{
			Key:   hex.EncodeToString(unitrie.PathToKey(path)),
			Value: hex.EncodeToString(value),
		})
		if encErr != nil {
			return true
		}
		count++
		return false
	})
	if err != nil {
		return count, err
	}
	if encErr != nil {
		return count, fmt.Errorf("error encoding key-value pair: %w", encErr)
	}
	return count, nil
}

func dump(ctx *cli.Context) error {
	if len(ctx.Args()) != 0 {
		return cli.NewExitError("no arguments expected", 1)
	}
	return withDB(ctx, func(d *db) (err error) {
		var w io.Writer = ctx.App.Writer
		if out := ctx.String("out"); out != "" {
			f, fErr := os.Create(out)
			if fErr != nil {
				return fmt.Errorf("error creating file: %w", fErr)
			}
			defer func() {
				if cErr := f.Close(); cErr != nil && err == nil {
					err = fmt.Errorf("error closing file: %w", cErr)
				}
			}()
			w = f
		}
		n, err := DumpTrie(d.trie, w)
		if err != nil {
			return err
		}
		d.log.Info("trie dumped", zap.Int("pairs", n), zap.Stringer("root", d.trie.StateRoot()))
		return nil
	})
}
