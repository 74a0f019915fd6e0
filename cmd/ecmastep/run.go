package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/ecmastep"
	"github.com/timewinder-dev/ecmastep/compile"
	"github.com/timewinder-dev/ecmastep/compute"
	"github.com/timewinder-dev/ecmastep/interp"
)

var (
	printResult bool
	maxSteps    int
)

var runCmd = &cobra.Command{
	Use:   "run [FILE]",
	Short: "Run a script to completion",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCommand,
}

func init() {
	runCmd.Flags().BoolVar(&printResult, "print", false, "Print the completion value of the script")
	runCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "Abort after this many machine steps (overrides the config)")
}

func runCommand(cmd *cobra.Command, args []string) error {
	path, err := scriptPath(args)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.Engine.MaxSteps = maxSteps
	}
	e := ecmastep.New(cfg)
	p, err := e.CompileFile(path)
	if err != nil {
		return describeError(err)
	}
	v, err := e.Run(p)
	if err != nil {
		return describeError(err)
	}
	if printResult {
		fmt.Println(color.Green.Sprint(e.Format(v)))
	}
	return nil
}

// describeError colours the error kinds a script run can end with.
func describeError(err error) error {
	var (
		ce *compile.Error
		te *interp.ThrowError
		fe *compute.FatalError
	)
	switch {
	case errors.As(err, &ce):
		fmt.Fprintln(os.Stderr, color.Red.Sprint("SyntaxError: ")+ce.Error())
	case errors.As(err, &te):
		fmt.Fprintln(os.Stderr, color.Red.Sprint("Uncaught ")+te.Message)
		if at := te.Location(); !at.IsZero() {
			fmt.Fprintln(os.Stderr, color.Gray.Sprint("    at "+at.String()))
		}
		for _, f := range te.Frames() {
			fmt.Fprintln(os.Stderr, color.Gray.Sprintf("    in %s called from %s", f.Name, f.Call))
		}
	case errors.As(err, &fe):
		fmt.Fprintln(os.Stderr, color.Magenta.Sprint("Engine error: ")+fe.Err.Error())
	default:
		return err
	}
	return errors.New("script failed")
}
