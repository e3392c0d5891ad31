package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spatialwire/geomcodec/app/dump"
	"github.com/spatialwire/geomcodec/app/scan"
)

var rootCmd = &cobra.Command{
	Use:   "geomcodec",
	Short: "EWKB geometry codec tooling",
}

func init() {
	rootCmd.AddCommand(dump.Cmd)
	rootCmd.AddCommand(scan.Cmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
