// Command meshbool runs mesh booleans from the command line.
//
//	meshbool run --op difference base.stl hole.obj -o out.stl
//	meshbool check part.obj
//	meshbool eval design.lisp -o out.obj
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "meshbool: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	env := &environment{stdout: stdout, stderr: stderr}

	app := cli.NewApp()
	app.Name = "meshbool"
	app.Usage = "boolean operations on closed triangle meshes"
	app.Version = Version
	app.Writer = stdout
	app.ErrWriter = stderr
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Before = env.setupLogging

	kernelFlags := []cli.Flag{
		cli.StringFlag{
			Name:   "kernel, k",
			Value:  "sdfx",
			Usage:  "boolean kernel: sdfx or cork",
			EnvVar: "MESHBOOL_KERNEL",
		},
		cli.IntFlag{
			Name:   "cells",
			Value:  0,
			Usage:  "marching cubes resolution for the sdfx kernel (0 for default)",
			EnvVar: "MESHBOOL_SDF_CELLS",
		},
		cli.BoolFlag{
			Name:   "serialize",
			Usage:  "run one kernel call at a time",
			EnvVar: "MESHBOOL_SERIALIZE",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "combine two mesh files",
			Description: `
Read two closed meshes (.obj or .stl), combine them with the selected boolean
operation and write the result. Both inputs must be solids.`,
			ArgsUsage: "a.obj b.stl",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "op",
					Value: "union",
					Usage: "union, intersection or difference",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "out.obj",
					Usage: "output file (.obj or .stl)",
				},
			}, kernelFlags...),
			Action: env.runBoolean,
		},
		{
			Name:      "check",
			Usage:     "validate mesh files and report whether they are solid",
			ArgsUsage: "part1.obj part2.stl ...",
			Flags:     kernelFlags,
			Action:    env.checkMeshes,
		},
		{
			Name:  "eval",
			Usage: "evaluate a mesh script",
			Description: `
Evaluate a Lisp script built from cube, box, translate, scale, union,
intersection, difference and load. The value of the last expression is written
to the output file. load reads files relative to the script directory.`,
			ArgsUsage: "design.lisp",
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "out.obj",
					Usage: "output file (.obj or .stl)",
				},
				cli.DurationFlag{
					Name:  "timeout",
					Usage: "evaluation time limit (0 for default)",
				},
			}, kernelFlags...),
			Action: env.evalScript,
		},
		{
			Name:   "version",
			Usage:  "print the version",
			Action: env.printVersion,
		},
	}
	return app
}
