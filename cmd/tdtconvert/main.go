/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// tdtconvert translates EPC identifiers between representation levels.
//
//	tdtconvert -schemes schemes -level PURE_IDENTITY \
//	    -hints "taglength=96;filter=3;gs1companyprefixlength=7" \
//	    "gtin=00037000302414;serial=1041970"
//
// With no identifier arguments it reads identifiers from stdin, one per
// line. -json switches the report to one JSON object per input.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	tagdata "github.com/intel/rsp-sw-toolkit-im-suite-tagdata"
	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/markup"
	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/tdt"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// config mirrors the optional YAML configuration file; flags win over it.
type config struct {
	Schemes string            `yaml:"schemes"`
	Aux     string            `yaml:"aux"`
	Hints   map[string]string `yaml:"hints"`
}

type result struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("tdtconvert", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemeDir := fs.String("schemes", "", "directory of TDT scheme files")
	auxPath := fs.String("aux", "", "path to "+markup.AuxTableName+" (default: <schemes>/"+markup.AuxTableName+" if present)")
	configPath := fs.String("config", "", "YAML config file (schemes, aux, hints)")
	hintsArg := fs.String("hints", "", "';'-separated key=value hints")
	level := fs.String("level", "", "target level (BINARY, TAG_ENCODING, PURE_IDENTITY, LEGACY, LEGACY_AI, ONS_HOSTNAME)")
	asJSON := fs.Bool("json", false, "emit one JSON object per input")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tdtconvert -schemes <dir> -level <LEVEL> [-hints k=v;...] [identifier...]\n\n")
		fmt.Fprintln(stderr, "Translates EPC identifiers between representation levels of their scheme.")
		fmt.Fprintln(stderr)
		fmt.Fprintln(stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var cfg config
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			fmt.Fprintf(stderr, "error: config %s: %v\n", *configPath, err)
			return 1
		}
	}
	if *schemeDir != "" {
		cfg.Schemes = *schemeDir
	}
	if *auxPath != "" {
		cfg.Aux = *auxPath
	}
	if cfg.Schemes == "" {
		fmt.Fprintln(stderr, "error: -schemes (or a config file) is required")
		fs.Usage()
		return 2
	}
	if *level == "" {
		fmt.Fprintln(stderr, "error: -level is required")
		fs.Usage()
		return 2
	}
	if cfg.Aux == "" {
		candidate := filepath.Join(cfg.Schemes, markup.AuxTableName)
		if _, err := os.Stat(candidate); err == nil {
			cfg.Aux = candidate
		}
	}

	hints, err := tagdata.ParseHints(*hintsArg)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	for k, v := range cfg.Hints {
		if _, ok := hints[k]; !ok {
			hints[k] = v
		}
	}
	target, err := tdt.ParseLevelType(*level)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	engine, err := tagdata.New(cfg.Schemes, cfg.Aux)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	ids := fs.Args()
	if len(ids) == 0 {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				ids = append(ids, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(stderr, "error: reading stdin: %v\n", err)
			return 1
		}
	}

	enc := json.NewEncoder(stdout)
	failures := 0
	for _, id := range ids {
		out, err := engine.Translate(id, hints, target)
		if *asJSON {
			r := result{Input: id, Output: out}
			if err != nil {
				r.Output = ""
				r.Error = err.Error()
			}
			if encErr := enc.Encode(r); encErr != nil {
				fmt.Fprintf(stderr, "error: %v\n", encErr)
				return 1
			}
		} else if err != nil {
			fmt.Fprintf(stderr, "error: %s: %v\n", id, err)
		} else {
			fmt.Fprintln(stdout, out)
		}
		if err != nil {
			failures++
		}
	}
	if failures > 0 {
		return 1
	}
	return 0
}
