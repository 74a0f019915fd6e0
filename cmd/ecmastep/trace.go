package main

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/timewinder-dev/ecmastep"
	"github.com/timewinder-dev/ecmastep/cas"
	"github.com/timewinder-dev/ecmastep/debug"
	"github.com/timewinder-dev/ecmastep/inspect"
)

var (
	dumpPath  string
	cacheSize int
	showVars  bool
)

var traceCmd = &cobra.Command{
	Use:   "trace [FILE]",
	Short: "Step through every statement and print each state",
	Long: "trace runs a script one statement boundary at a time. Each state is stored " +
		"in a content-addressed store; the printed hash is the same whenever the " +
		"script revisits a state.",
	Args: cobra.MaximumNArgs(1),
	RunE: traceCommand,
}

func init() {
	traceCmd.Flags().StringVar(&dumpPath, "dump", "", "Write every snapshot as msgpack to this file")
	traceCmd.Flags().IntVar(&cacheSize, "cache", 256, "Size of the snapshot LRU cache")
	traceCmd.Flags().BoolVar(&showVars, "vars", false, "Print the bindings of the innermost scope at each step")
}

type traceResult struct {
	steps  int
	unique int
}

func traceCommand(cmd *cobra.Command, args []string) error {
	path, err := scriptPath(args)
	if err != nil {
		return err
	}
	e := ecmastep.New(cfg)
	p, err := e.CompileFile(path)
	if err != nil {
		return describeError(err)
	}

	var dump *os.File
	if dumpPath != "" {
		dump, err = os.Create(dumpPath)
		if err != nil {
			return err
		}
		defer dump.Close()
	}

	mem := cas.NewMemoryCAS()
	store := cas.NewLRUCache(mem, cacheSize)
	s := e.Debug(p, nil, nil)
	end, res, err := trace(s, store, func(n int, h cas.Hash, snap *inspect.Snapshot) error {
		revisit := ""
		if visits := store.Visits(h); len(visits) > 1 {
			revisit = color.Yellow.Sprintf(" (seen at step %d)", visits[0])
		}
		fmt.Printf("%5d  %s  %s%s\n", n, color.Cyan.Sprint(h), snap.Location, revisit)
		if showVars {
			stored, err := cas.Retrieve[*inspect.Snapshot](store, h)
			if err != nil {
				return err
			}
			if len(stored.Environments) > 0 {
				for _, b := range stored.Environments[0].Bindings {
					fmt.Printf("         %s = %s\n", b.Name, b.Value)
				}
			}
		}
		if dump != nil {
			return snap.Serialize(dump)
		}
		return nil
	})
	if err != nil {
		return err
	}
	stats := store.Stats()
	log.Debug().Int("hits", stats.Hits).Int("misses", stats.Misses).Int("entries", mem.Len()).Msg("trace: cache")

	fmt.Printf("%d steps, %d distinct states\n", res.steps, res.unique)
	if _, err := end.Result(); err != nil {
		return describeError(err)
	}
	return nil
}

// trace steps s to its end, storing a snapshot of every paused state in
// store and handing it to visit. It returns the ended session.
func trace(s debug.Session, store cas.CAS, visit func(step int, h cas.Hash, snap *inspect.Snapshot) error) (debug.Session, traceResult, error) {
	var res traceResult
	for s.State() == debug.Paused {
		snap := inspect.Capture(s.Context())
		snap.Location = s.Location()
		h, err := store.Put(snap)
		if err != nil {
			return s, res, fmt.Errorf("storing step %d: %w", res.steps, err)
		}
		if len(store.Visits(h)) == 0 {
			res.unique++
		}
		store.RecordVisit(h, res.steps)
		if err := visit(res.steps, h, snap); err != nil {
			return s, res, err
		}
		res.steps++
		s = s.Step()
	}
	return s, res, nil
}
