package dump

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spatialwire/geomcodec/ewkb"
)

var Cmd = &cobra.Command{
	Use:   "dump HEX",
	Short: "decode an EWKB hex literal and print the shape tree; pass '-' to read the literal from stdin",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(cmd, args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

const maxCoordsFlag = "max-coords"

func init() {
	Cmd.Flags().IntP(maxCoordsFlag, "m", 8, "coordinates to print per sequence before eliding, 0 for all")
}

func run(cmd *cobra.Command, args []string) error {
	maxCoords, err := cmd.Flags().GetInt(maxCoordsFlag)
	if err != nil {
		return fmt.Errorf("get flag '%v': %w", maxCoordsFlag, err)
	}

	raw := args[0]
	if raw == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}

		raw = string(data)
	}

	literal := strings.TrimPrefix(strings.TrimSpace(raw), "\\x")

	data, err := hex.DecodeString(literal)
	if err != nil {
		return fmt.Errorf("decode hex literal: %w", err)
	}

	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("unmarshal geometry: %w", err)
	}

	WriteTree(os.Stdout, g, maxCoords)

	return nil
}
