/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

// Package markup deserializes EPC tag data translation markup files and
// the company-prefix auxiliary table. It holds the document exactly as
// written; compiling it into an executable scheme set is the tdt
// package's job.
package markup

import (
	"encoding/xml"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Definition is the root of a tag data translation markup document.
type Definition struct {
	XMLName xml.Name `xml:"epcTagDataTranslation"`
	Version string   `xml:"version,attr"`
	Date    string   `xml:"date,attr"`
	Schemes []Scheme `xml:"scheme"`
}

// Scheme describes one coding scheme (SGTIN-96, SSCC-96, ...) as a set of
// representation levels.
type Scheme struct {
	Name      string  `xml:"name,attr"`
	TagLength int     `xml:"tagLength,attr"`
	OptionKey string  `xml:"optionKey,attr"`
	Levels    []Level `xml:"level"`
}

// Level is one representation of a scheme: BINARY, TAG_ENCODING,
// PURE_IDENTITY, LEGACY, LEGACY_AI, or ONS_HOSTNAME.
type Level struct {
	Type        string   `xml:"type,attr"`
	PrefixMatch string   `xml:"prefixMatch,attr"`
	Options     []Option `xml:"option"`
	Rules       []Rule   `xml:"rule"`
}

// Option is a disambiguated variant of a level, typically keyed by
// company-prefix length.
type Option struct {
	OptionKey string  `xml:"optionKey,attr"`
	Pattern   string  `xml:"pattern,attr"`
	Grammar   string  `xml:"grammar,attr"`
	Fields    []Field `xml:"field"`
}

// Field maps one capturing group of an option's pattern to a named token.
// Optional attributes stay strings here; absence is the empty string.
type Field struct {
	Seq            int    `xml:"seq,attr"`
	Name           string `xml:"name,attr"`
	Length         string `xml:"length,attr"`
	CharacterSet   string `xml:"characterSet,attr"`
	Compaction     string `xml:"compaction,attr"`
	BitPadDir      string `xml:"bitPadDir,attr"`
	PadChar        string `xml:"padChar,attr"`
	PadDir         string `xml:"padDir,attr"`
	DecimalMinimum string `xml:"decimalMinimum,attr"`
	DecimalMaximum string `xml:"decimalMaximum,attr"`
}

// Rule derives an additional token while translating through its level.
type Rule struct {
	Type         string `xml:"type,attr"`
	NewFieldName string `xml:"newFieldName,attr"`
	CharacterSet string `xml:"characterSet,attr"`
	Function     string `xml:"function,attr"`
}

// Decode reads a single markup document.
func Decode(r io.Reader) (*Definition, error) {
	var def Definition
	if err := xml.NewDecoder(r).Decode(&def); err != nil {
		return nil, errors.Wrap(err, "unable to decode translation markup")
	}
	return &def, nil
}

// DecodeFile reads the markup document at path.
func DecodeFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open scheme file %s", path)
	}
	defer f.Close()

	def, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "scheme file %s", path)
	}
	return def, nil
}
