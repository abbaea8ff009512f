package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/nspcc-dev/unitrie/cli/trie"
	"github.com/nspcc-dev/unitrie/pkg/config"
	"github.com/urfave/cli"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "UniTrie\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a UniTrie instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "unitrie"
	ctl.Version = config.Version
	ctl.Usage = "Binary path-compressed Merkle trie tool"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, trie.NewCommands()...)
	return ctl
}
