package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/mfkiwl/xocfe/conf"
	"github.com/mfkiwl/xocfe/diag"
	"github.com/mfkiwl/xocfe/parsers"
	"github.com/mfkiwl/xocfe/scopes"
	"github.com/mfkiwl/xocfe/semantics"
	"github.com/mfkiwl/xocfe/tokenizers"
	"github.com/mfkiwl/xocfe/types"
)

func main() {
	app := &cli.App{
		Name:      "xocfe",
		Usage:     "parse and semantically check one C translation unit",
		ArgsUsage: "<file.c>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dump",
				Usage:   "redirect the scope dump to `PATH`",
				EnvVars: []string{"XOCFE_DUMP"},
			},
			&cli.StringFlag{
				Name:  "conf",
				Usage: "target description `YAML`",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "trace front-end phases",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one source file is required")
	}
	srcPath := c.Args().First()
	if !strings.HasSuffix(strings.ToLower(srcPath), ".c") {
		return errors.Errorf("'%s' is not a .c file", srcPath)
	}

	if c.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	target, err := conf.Load(c.String("conf"))
	if err != nil {
		return err
	}
	types.Configure(target)

	tkz, err := tokenizers.New(srcPath)
	if err != nil {
		return errors.Wrapf(err, "cannot open '%s'", srcPath)
	}
	defer tkz.Finish()

	tracker := diag.NewTracker(target.ErrorLimit)

	start := time.Now()
	p := parsers.New(tkz, tracker, target)
	global := p.ParseTranslationUnit()
	log.Debugf("parsed %s in %s", srcPath, time.Since(start))

	start = time.Now()
	engine := semantics.NewTypeEngine(tracker)
	engine.Run(global)
	log.Debugf("type transform in %s", time.Since(start))

	tracker.Print(os.Stderr)

	out := os.Stdout
	if dumpPath := c.String("dump"); dumpPath != "" {
		f, err := os.Create(dumpPath)
		if err != nil {
			return errors.Wrapf(err, "cannot create dump file '%s'", dumpPath)
		}
		defer f.Close()
		out = f
	}
	fmt.Fprintf(out, "%s - (%d) error(s), (%d) warning(s)\n",
		srcPath, tracker.ErrorCount(), tracker.WarningCount())
	scopes.Dump(out, global, 0)

	// semantic errors still exit 0: the front end is a diagnostic tool
	return nil
}
