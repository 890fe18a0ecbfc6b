package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/mattn/go-isatty"

	"github.com/cinderlang/cinder/internal/config"
	"github.com/cinderlang/cinder/internal/diagnostics"
	"github.com/cinderlang/cinder/internal/docgen"
	"github.com/cinderlang/cinder/internal/modules"
	"github.com/cinderlang/cinder/internal/pipeline"
	"github.com/cinderlang/cinder/internal/typer"
	"github.com/cinderlang/cinder/internal/typesystem"
)

func main() {
	var (
		configPath = flag.String("config", "cinder.yaml", "compiler configuration file")
		backend    = flag.String("backend", "", "override the configured backend")
		mainClass  = flag.String("main", "", "class whose static main drives generation")
		excludes   = flag.String("exclude", "", "comma separated type paths to mark extern")
		dump       = flag.Bool("dump", false, "print the resolved type of each input")
		emitDocs   = flag.Bool("docs", false, "print the XML shape of generated types")
		noColor    = flag.Bool("no-color", false, "disable colored diagnostics")
		version    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Printf("cinderc %s\n", config.Version)
		return
	}

	opts := config.Default()
	if data, err := os.Stat(*configPath); err == nil && !data.IsDir() {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		opts = loaded
	}
	if *backend != "" {
		opts.Backend = *backend
	}
	if *mainClass != "" {
		opts.Main = *mainClass
	}
	if *excludes != "" {
		opts.Excludes = append(opts.Excludes, strings.Split(*excludes, ",")...)
	}

	registry := modules.NewRegistry()
	modules.BuildStd(registry)

	g := typer.NewGlobals(opts, registry)
	g.Reporter = &diagnostics.Reporter{
		Out:   os.Stderr,
		Color: !*noColor && isatty.IsTerminal(os.Stderr.Fd()),
	}

	ctx, err := typer.NewContext(g)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	pctx := &pipeline.Context{Typer: ctx}
	for _, file := range flag.Args() {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		pctx.Inputs = append(pctx.Inputs, pipeline.Input{Name: file, Data: data})
	}

	pctx = pipeline.New(pipeline.TypeProcessor{}, pipeline.FinalizeProcessor{}).Run(pctx)
	for _, err := range pctx.Errors {
		if ds, ok := err.(*diagnostics.DisplaySignal); ok {
			fmt.Println(ds.T.String())
			continue
		}
		g.Reporter.Report(err)
	}

	if *dump {
		for _, te := range pctx.Typed {
			fmt.Println(te.T)
		}
	}

	var excludePaths []typesystem.Path
	for _, x := range opts.Excludes {
		excludePaths = append(excludePaths, parsePath(x))
	}
	types, mods, err := ctx.Generate(opts.Main, excludePaths)
	if err != nil {
		g.Reporter.Report(err)
	} else {
		glog.V(1).Infof("generated %d types from %d modules", len(types), len(mods))
		if *emitDocs {
			for _, d := range types {
				s, err := docgen.GenTypeString(d)
				if err != nil {
					g.Reporter.Report(err)
					continue
				}
				fmt.Println(s)
			}
		}
	}

	glog.Flush()
	if g.Reporter.Errors > 0 {
		os.Exit(1)
	}
}

func parsePath(s string) typesystem.Path {
	parts := strings.Split(s, ".")
	return typesystem.Path{Pack: parts[:len(parts)-1], Name: parts[len(parts)-1]}
}
