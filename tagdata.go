/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package tagdata translates EPC identifiers between the representation
// levels of their coding scheme (BINARY, TAG_ENCODING, PURE_IDENTITY,
// LEGACY, LEGACY_AI, ONS_HOSTNAME), driven entirely by tag data
// translation markup files.
//
// Build an Engine once from a scheme directory, then call Translate from
// any number of goroutines:
//
//	engine, err := tagdata.New("schemes", "schemes/ManagerTranslation.xml")
//	...
//	bits, err := engine.TranslateParams(
//	    "gtin=00037000302414;serial=1041970",
//	    "taglength=96;filter=3;gs1companyprefixlength=7",
//	    "BINARY")
package tagdata

import (
	"strings"
	"sync"

	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/markup"
	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/tdt"
)

// Engine owns a compiled scheme set and the company-prefix table. The
// set is immutable; Refresh replaces it wholesale, so translations that
// are in flight keep the set they started with and never observe a
// half-loaded one.
type Engine struct {
	schemeDir string
	auxPath   string

	mu  sync.RWMutex
	set *tdt.SchemeSet
}

// New loads every *.xml scheme file under schemeDir plus the auxiliary
// company-prefix table at auxPath (empty to skip) and compiles them.
func New(schemeDir, auxPath string) (*Engine, error) {
	e := &Engine{schemeDir: schemeDir, auxPath: auxPath}
	if err := e.Refresh(); err != nil {
		return nil, err
	}
	return e, nil
}

// Refresh reloads and recompiles the scheme directory and auxiliary
// table, swapping the new set in atomically. On failure the engine keeps
// its previous set.
func (e *Engine) Refresh() error {
	schemes, err := markup.LoadDir(e.schemeDir)
	if err != nil {
		return err
	}

	var prefixes []markup.PrefixEntry
	if e.auxPath != "" {
		if prefixes, err = markup.LoadPrefixEntries(e.auxPath); err != nil {
			return err
		}
	}

	set, err := tdt.NewSchemeSet(schemes, prefixes)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.set = set
	e.mu.Unlock()
	return nil
}

// Translate converts one identifier to the target level of its scheme.
// See tdt.SchemeSet.Translate for the pipeline.
func (e *Engine) Translate(id string, hints map[string]string, target tdt.LevelType) (string, error) {
	e.mu.RLock()
	set := e.set
	e.mu.RUnlock()
	return set.Translate(id, hints, target)
}

// TranslateParams is Translate with string-encoded parameters: hints as a
// ";"-separated list of key=value pairs (empty pairs ignored, whitespace
// trimmed) and the target level by its markup spelling, case-sensitively.
func (e *Engine) TranslateParams(id, hints, target string) (string, error) {
	h, err := ParseHints(hints)
	if err != nil {
		return "", err
	}
	level, err := tdt.ParseLevelType(target)
	if err != nil {
		return "", err
	}
	return e.Translate(id, h, level)
}

// ParseHints parses a ";"-separated key=value hint string.
func ParseHints(s string) (map[string]string, error) {
	hints := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		eq := strings.IndexByte(pair, '=')
		if eq <= 0 {
			return nil, tdterrors.Errorf(tdterrors.InvalidArgument,
				"hint %q is not of the form key=value", pair)
		}
		hints[strings.TrimSpace(pair[:eq])] = strings.TrimSpace(pair[eq+1:])
	}
	return hints, nil
}
