package scan

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var Cmd = &cobra.Command{
	Use:   "scan QUERY",
	Short: "run a query against a PostGIS database and dump decoded geometry columns",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := run(cmd, args); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

const (
	dsnFlag       = "dsn"
	formatFlag    = "format"
	maxCoordsFlag = "max-coords"
)

// outputFormat is a pflag.Value restricted to the supported renderings.
type outputFormat string

const (
	formatTree outputFormat = "tree"
	formatHex  outputFormat = "hex"
)

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string { return string(*f) }

func (f *outputFormat) Type() string { return "format" }

func (f *outputFormat) Set(v string) error {
	switch outputFormat(v) {
	case formatTree, formatHex:
		*f = outputFormat(v)
		return nil
	default:
		return fmt.Errorf("must be one of '%v', '%v'", formatTree, formatHex)
	}
}

var format = formatTree

func init() {
	Cmd.Flags().StringP(dsnFlag, "d", "", "PostgreSQL connection string")
	Cmd.Flags().VarP(&format, formatFlag, "f", "geometry rendering: tree or hex")
	Cmd.Flags().IntP(maxCoordsFlag, "m", 8, "coordinates to print per sequence before eliding, 0 for all")

	if err := Cmd.MarkFlagRequired(dsnFlag); err != nil {
		log.Fatal(err)
	}
}
