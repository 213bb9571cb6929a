/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package markup

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// AuxTableName is the file name of the company-prefix auxiliary table.
// LoadDir skips it; LoadPrefixEntries reads it.
const AuxTableName = "ManagerTranslation.xml"

// LoadDir parses every *.xml scheme file directly under dir and returns
// the schemes they define, sorted by name. Files parse concurrently; the
// accumulated list is only handed back once every file has finished, so
// callers never observe a partial set.
func LoadDir(dir string) ([]Scheme, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read scheme directory %s", dir)
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		schemes  []Scheme
		firstErr error
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".xml") || name == AuxTableName {
			continue
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			def, err := DecodeFile(path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			schemes = append(schemes, def.Schemes...)
		}(filepath.Join(dir, name))
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if len(schemes) == 0 {
		return nil, errors.Errorf("no scheme definitions found in %s", dir)
	}
	sort.Slice(schemes, func(i, j int) bool { return schemes[i].Name < schemes[j].Name })
	return schemes, nil
}

// PrefixEntry is one row of the company-prefix auxiliary table, mapping a
// 64-bit company-prefix index to a GS1 company prefix.
type PrefixEntry struct {
	Index         string `xml:"index,attr"`
	CompanyPrefix string `xml:"companyPrefix,attr"`
}

type prefixTable struct {
	Entries []PrefixEntry `xml:"entry"`
}

// LoadPrefixEntries reads the company-prefix auxiliary table at path.
func LoadPrefixEntries(path string) ([]PrefixEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open auxiliary table %s", path)
	}
	defer f.Close()

	var table prefixTable
	if err := xml.NewDecoder(f).Decode(&table); err != nil {
		return nil, errors.Wrapf(err, "auxiliary table %s", path)
	}
	return table.Entries, nil
}
