/*
 * main.go, part of gobalance.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//creb balances chemical equations from the command line.
//
//	creb [flags] "H2 + O2 = H2O" ["N2 + H2 = NH3" ...]
//
//Without equations in the arguments or a -f file, equations are read from the
//standard input, one per line (or one JSON request per line, with -json).
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	balance "github.com/rmera/gobalance"
	"github.com/rmera/gobalance/baljson"
	"github.com/rmera/gobalance/balplot"
	"github.com/rmera/gobalance/eqf"
	"github.com/rmera/gobalance/internal/config"
	"github.com/rmera/gobalance/internal/logging"
)

//exit codes
const (
	exitOK     = 0
	exitFailed = 1 //at least one equation could not be balanced, or is not balanced with -check
	exitUsage  = 2
)

type options struct {
	config  string
	integer bool
	pivot   int
	strict  bool
	json    bool
	input   string
	output  string
	plot    string
	check   bool
	verbose bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("creb", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var o options
	fs.StringVar(&o.config, "config", "", "YAML configuration file")
	fs.BoolVar(&o.integer, "int", false, "scale the coefficients to the smallest integers")
	fs.IntVar(&o.pivot, "pivot", -1, "index of the species whose coefficient is fixed to 1 (-1 is the last one)")
	fs.BoolVar(&o.strict, "strict", false, "reject symbols that are not chemical elements")
	fs.BoolVar(&o.json, "json", false, "write (and read, from the standard input) JSON, one object per line")
	fs.StringVar(&o.input, "f", "", "equation file to balance (.zst, .gz, .flate, .lzw or plain)")
	fs.StringVar(&o.output, "o", "", "write the balanced equations to this equation file")
	fs.StringVar(&o.plot, "plot", "", "save a bar chart of the atom balance to this file (one equation only)")
	fs.BoolVar(&o.check, "check", false, "only report whether the equations, as written, are balanced")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, `usage: creb [flags] "H2 + O2 = H2O" ...`)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	cfg, err := config.Load(o.config)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	//flags given explicitly win over the configuration
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "int":
			cfg.Balance.Integers = o.integer
		case "pivot":
			cfg.Balance.Pivot = o.pivot
		case "strict":
			cfg.Balance.Strict = o.strict
		case "json":
			if o.json {
				cfg.Output.Format = "json"
			}
		case "v":
			if o.verbose {
				cfg.Log.Level = "debug"
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	defer log.Sync()
	c := &cli{cfg: cfg, opts: o, log: log, stdout: stdout, stderr: stderr}
	c.setColors()

	if cfg.Output.Format == "json" && o.input == "" && fs.NArg() == 0 {
		n, err := baljson.Serve(stdin, stdout, *cfg.BalanceOptions(), c.newBalancer)
		log.Debug("served json requests", zap.Int("requests", n))
		if err != nil {
			fmt.Fprintln(stderr, c.red(err.Error()))
			return exitFailed
		}
		return exitOK
	}
	equations, header, err := c.equations(fs.Args(), stdin)
	if err != nil {
		fmt.Fprintln(stderr, c.red(err.Error()))
		return exitUsage
	}
	if o.plot != "" && len(equations) != 1 {
		fmt.Fprintf(stderr, "-plot needs exactly one equation, got %d\n", len(equations))
		return exitUsage
	}
	if o.check {
		return c.checkAll(equations)
	}
	return c.balanceAll(equations, header)
}

type cli struct {
	cfg    *config.Config
	opts   options
	log    *zap.Logger
	stdout io.Writer
	stderr io.Writer
	green  func(a ...interface{}) string
	red    func(a ...interface{}) string
	bold   func(a ...interface{}) string
}

func (c *cli) setColors() {
	g := color.New(color.FgGreen)
	r := color.New(color.FgRed)
	b := color.New(color.FgRed, color.Bold)
	if !c.cfg.Output.Color {
		g.DisableColor()
		r.DisableColor()
		b.DisableColor()
	}
	c.green, c.red, c.bold = g.SprintFunc(), r.SprintFunc(), b.SprintFunc()
}

func (c *cli) newBalancer(o *balance.Options) *balance.Balancer {
	return balance.NewBalancer(o, c.log)
}

//equations collects the equations to work on, from the arguments, the -f file or the
//standard input, in that order of preference. The header of the file, if any, is returned.
func (c *cli) equations(args []string, stdin io.Reader) ([]string, map[string]string, error) {
	if len(args) > 0 {
		return args, nil, nil
	}
	if c.opts.input != "" {
		return eqf.ReadAll(c.opts.input)
	}
	var ret []string
	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		l := strings.TrimSpace(sc.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		ret = append(ret, l)
	}
	return ret, nil, sc.Err()
}

//report writes the error for one equation.
func (c *cli) report(equation string, err error) {
	kind := balance.KindOf(err)
	if kind == 0 {
		fmt.Fprintf(c.stderr, "%s %s: %s\n", c.red("error"), equation, err)
		return
	}
	var be *balance.Error
	msg := err.Error()
	if errors.As(err, &be) {
		msg = be.Message()
	}
	fmt.Fprintf(c.stderr, "%s %s: %s: %s\n", c.red("error"), equation, c.bold(kind.String()), msg)
}

func (c *cli) balanceAll(equations []string, header map[string]string) int {
	B := c.newBalancer(c.cfg.BalanceOptions())
	var w *eqf.Writer
	if c.opts.output != "" {
		h := map[string]string{
			"integers": strconv.FormatBool(c.cfg.Balance.Integers),
			"pivot":    strconv.Itoa(c.cfg.Balance.Pivot),
		}
		for k, v := range header {
			if _, ok := h[k]; !ok {
				h[k] = v
			}
		}
		var err error
		w, err = eqf.NewWriter(c.opts.output, h)
		if err != nil {
			fmt.Fprintln(c.stderr, c.red(err.Error()))
			return exitUsage
		}
		defer w.Close()
	}
	asJSON := c.cfg.Output.Format == "json"
	ret := exitOK
	for _, eq := range equations {
		R, err := B.Balance(eq)
		if err != nil {
			ret = exitFailed
		}
		switch {
		case asJSON:
			if jerr := baljson.NewResult(eq, R, err).Send(c.stdout); jerr != nil {
				fmt.Fprintln(c.stderr, c.red(jerr.Error()))
				return exitFailed
			}
		case err != nil:
			c.report(eq, err)
		default:
			fmt.Fprintln(c.stdout, c.green(R.Text))
		}
		if err != nil {
			continue
		}
		if w != nil {
			if err := w.WNext(R.Text); err != nil {
				fmt.Fprintln(c.stderr, c.red(err.Error()))
				return exitFailed
			}
		}
		if c.opts.plot != "" {
			if err := balplot.BarChart(R, "", c.opts.plot); err != nil {
				fmt.Fprintln(c.stderr, c.red(err.Error()))
				return exitFailed
			}
		}
	}
	if w != nil {
		if err := w.Close(); err != nil {
			fmt.Fprintln(c.stderr, c.red(err.Error()))
			return exitFailed
		}
		c.log.Debug("equation file written", zap.String("file", c.opts.output), zap.Int("equations", w.Len()))
	}
	return ret
}

func (c *cli) checkAll(equations []string) int {
	ret := exitOK
	for _, eq := range equations {
		ok, err := balance.IsBalanced(eq)
		switch {
		case err != nil:
			c.report(eq, err)
			ret = exitFailed
		case ok:
			fmt.Fprintf(c.stdout, "%s %s\n", c.green("balanced"), eq)
		default:
			fmt.Fprintf(c.stdout, "%s %s\n", c.red("unbalanced"), eq)
			ret = exitFailed
		}
	}
	return ret
}
