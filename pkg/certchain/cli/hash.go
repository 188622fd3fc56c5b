package cli

import (
	"fmt"
	"os"

	"github.com/certchain/certchain/pkg/certchain/content"
	"github.com/certchain/certchain/pkg/fingerprint"
)

func (cmd *HashCmd) Run(cli *CLI) error {
	data, err := os.ReadFile(cmd.File)
	if err != nil {
		return err
	}
	id, err := content.ComputeCID(data)
	if err != nil {
		return err
	}
	fmt.Printf("hash:       %s\ncontent id: %s\nsize:       %d\n", fingerprint.HashBytes(data), id, len(data))
	return nil
}
