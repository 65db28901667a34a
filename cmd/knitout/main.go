// Command knitout runs a knitout program to completion against an
// in-memory machine simulation, mirroring run_knitout.py's command-line
// entry point.
package main

import (
	"flag"
	"os"

	"github.com/knitout-go/knitout"
	"github.com/knitout-go/knitout/internal/logio"
	"github.com/knitout-go/knitout/machinesim"
)

func main() {
	var (
		trace    bool
		dump     bool
		organize bool
	)
	flag.BoolVar(&trace, "trace", false, "log each closed carriage pass")
	flag.BoolVar(&dump, "dump", false, "print the executed program after running")
	flag.BoolVar(&organize, "organize", false, "canonicalize header order in the dump")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	args := flag.Args()
	if len(args) != 1 {
		log.Errorf("usage: knitout <file.k>")
		return
	}

	warn := func(w knitout.Warning) { log.Printf("WARN", "%s", w.What) }

	opts := []knitout.ExecuterOption{
		knitout.WithWarnFunc(warn),
		knitout.WithMachineFactory(func(spec knitout.MachineSpec) knitout.Machine {
			return machinesim.New(spec, machinesim.WithWarnFunc(warn))
		}),
	}
	if trace {
		opts = append(opts, knitout.WithLogf(log.Leveledf("TRACE")))
	}

	executed, err := knitout.ExecuteFile(args[0], opts...)
	if err != nil {
		log.Errorf("%v", err)
		return
	}

	if dump {
		out := executed
		if organize {
			out = out.Organize(false, false, false, false)
		}
		log.ErrorIf(out.WriteTo(os.Stdout))
	}
}
