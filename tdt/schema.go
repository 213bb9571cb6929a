/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package tdt

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/bitcodec"
	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/markup"
)

// SchemeSet is a compiled, immutable set of coding schemes plus the
// company-prefix auxiliary table. Build one with NewSchemeSet; it is then
// safe for concurrent Translate calls.
type SchemeSet struct {
	schemes       []*Scheme
	prefixByIndex map[string]string
	indexByPrefix map[string]string
}

// Scheme is one compiled coding scheme.
type Scheme struct {
	Name      string
	TagLength int
	OptionKey string
	Levels    []*Level
}

// Level is one compiled representation level of its scheme.
type Level struct {
	Scheme      *Scheme
	Type        LevelType
	PrefixMatch string
	Options     []*Option
	Rules       []*Rule
}

// Option is one compiled variant of a level. Its pattern is anchored and
// its grammar is split into emission tokens.
type Option struct {
	Level     *Level
	OptionKey string
	Pattern   *regexp.Regexp
	Grammar   []string
	Fields    []*Field

	fieldsByName map[string]*Field
}

// Field is one compiled field of an option. Zero values mean "attribute
// absent": Length 0, Compaction 0, nil CharacterSet, nil Min/Max,
// bitcodec.PadNone directions.
type Field struct {
	Name         string
	Seq          int
	Length       int
	CharacterSet *regexp.Regexp
	Compaction   int
	BitPadDir    bitcodec.PadDir
	PadDir       bitcodec.PadDir
	PadChar      byte
	Min          *big.Int
	Max          *big.Int
}

// RuleType separates rules run against the input level from rules run
// against the output level.
type RuleType int

const (
	// ExtractRule rules derive canonical fields from the input tokens.
	ExtractRule RuleType = iota
	// FormatRule rules derive the output level's representation fields.
	FormatRule
)

// Rule is one compiled derivation rule.
type Rule struct {
	Type         RuleType
	NewFieldName string
	CharacterSet *regexp.Regexp
	Function     string

	call ruleCall
}

// Schemes returns the compiled schemes in the order they were passed to
// NewSchemeSet (markup.LoadDir hands them over sorted by name).
func (s *SchemeSet) Schemes() []*Scheme {
	return s.schemes
}

// NewSchemeSet compiles markup schemes and company-prefix entries into an
// immutable scheme set, verifying the authoring invariants: every pattern
// compiles, every field seq points at a capturing group of its option's
// pattern, and every BINARY option's field widths sum to the scheme's tag
// length.
func NewSchemeSet(schemes []markup.Scheme, prefixes []markup.PrefixEntry) (*SchemeSet, error) {
	set := &SchemeSet{
		prefixByIndex: make(map[string]string, len(prefixes)),
		indexByPrefix: make(map[string]string, len(prefixes)),
	}
	for _, entry := range prefixes {
		set.prefixByIndex[entry.Index] = entry.CompanyPrefix
		set.indexByPrefix[entry.CompanyPrefix] = entry.Index
	}

	for i := range schemes {
		scheme, err := compileScheme(&schemes[i])
		if err != nil {
			return nil, err
		}
		set.schemes = append(set.schemes, scheme)
	}
	return set, nil
}

func compileScheme(ms *markup.Scheme) (*Scheme, error) {
	if ms.Name == "" {
		return nil, tdterrors.New(tdterrors.InvalidSchemeFile, "scheme without a name")
	}
	if ms.TagLength <= 0 {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"scheme %s: tagLength must be positive, not %d", ms.Name, ms.TagLength)
	}

	scheme := &Scheme{
		Name:      ms.Name,
		TagLength: ms.TagLength,
		OptionKey: ms.OptionKey,
	}
	for li := range ms.Levels {
		level, err := compileLevel(scheme, &ms.Levels[li])
		if err != nil {
			return nil, err
		}
		scheme.Levels = append(scheme.Levels, level)
	}
	return scheme, nil
}

func compileLevel(scheme *Scheme, ml *markup.Level) (*Level, error) {
	typ, err := ParseLevelType(ml.Type)
	if err != nil {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"scheme %s: unknown level type %q", scheme.Name, ml.Type)
	}

	level := &Level{
		Scheme:      scheme,
		Type:        typ,
		PrefixMatch: ml.PrefixMatch,
	}
	for oi := range ml.Options {
		option, err := compileOption(level, &ml.Options[oi])
		if err != nil {
			return nil, err
		}
		level.Options = append(level.Options, option)
	}
	for ri := range ml.Rules {
		rule, err := compileRule(scheme, &ml.Rules[ri])
		if err != nil {
			return nil, err
		}
		level.Rules = append(level.Rules, rule)
	}
	return level, nil
}

func compileOption(level *Level, mo *markup.Option) (*Option, error) {
	where := level.Scheme.Name + "/" + string(level.Type) + " option " + mo.OptionKey

	// Patterns match the whole identifier; the wrapping group is
	// non-capturing so field seq indexes are unaffected.
	pattern, err := regexp.Compile("^(?:" + mo.Pattern + ")$")
	if err != nil {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"%s: bad pattern %q: %v", where, mo.Pattern, err)
	}

	grammar := strings.Fields(mo.Grammar)
	if len(grammar) == 0 {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"%s: empty grammar", where)
	}

	option := &Option{
		Level:        level,
		OptionKey:    mo.OptionKey,
		Pattern:      pattern,
		Grammar:      grammar,
		fieldsByName: make(map[string]*Field, len(mo.Fields)),
	}

	bitSum := 0
	for fi := range mo.Fields {
		field, err := compileField(where, &mo.Fields[fi])
		if err != nil {
			return nil, err
		}
		if field.Seq < 1 || field.Seq > pattern.NumSubexp() {
			return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
				"%s: field %s seq %d is outside the pattern's %d groups",
				where, field.Name, field.Seq, pattern.NumSubexp())
		}
		option.Fields = append(option.Fields, field)
		option.fieldsByName[field.Name] = field
		bitSum += field.Length
	}

	if level.Type == Binary && bitSum != level.Scheme.TagLength {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"%s: field widths sum to %d bits, tagLength is %d",
			where, bitSum, level.Scheme.TagLength)
	}
	return option, nil
}

func compileField(where string, mf *markup.Field) (*Field, error) {
	if mf.Name == "" {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"%s: field without a name", where)
	}
	field := &Field{Name: mf.Name, Seq: mf.Seq}

	var err error
	if mf.Length != "" {
		if field.Length, err = strconv.Atoi(mf.Length); err != nil || field.Length <= 0 {
			return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
				"%s: field %s: bad length %q", where, mf.Name, mf.Length)
		}
	}
	if mf.CharacterSet != "" {
		if field.CharacterSet, err = compileCharacterSet(mf.CharacterSet); err != nil {
			return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
				"%s: field %s: bad characterSet %q: %v", where, mf.Name, mf.CharacterSet, err)
		}
	}
	if mf.Compaction != "" {
		if field.Compaction, err = parseCompaction(mf.Compaction); err != nil {
			return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
				"%s: field %s: bad compaction %q", where, mf.Name, mf.Compaction)
		}
	}
	if field.BitPadDir, err = parsePadDir(mf.BitPadDir); err != nil {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"%s: field %s: bad bitPadDir %q", where, mf.Name, mf.BitPadDir)
	}
	if field.PadDir, err = parsePadDir(mf.PadDir); err != nil {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"%s: field %s: bad padDir %q", where, mf.Name, mf.PadDir)
	}
	switch len(mf.PadChar) {
	case 0:
		if field.PadDir != bitcodec.PadNone {
			field.PadChar = '0'
		}
	case 1:
		field.PadChar = mf.PadChar[0]
	default:
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"%s: field %s: padChar %q must be a single character", where, mf.Name, mf.PadChar)
	}
	if field.Min, err = parseBound(mf.DecimalMinimum); err != nil {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"%s: field %s: bad decimalMinimum %q", where, mf.Name, mf.DecimalMinimum)
	}
	if field.Max, err = parseBound(mf.DecimalMaximum); err != nil {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"%s: field %s: bad decimalMaximum %q", where, mf.Name, mf.DecimalMaximum)
	}
	return field, nil
}

func compileRule(scheme *Scheme, mr *markup.Rule) (*Rule, error) {
	rule := &Rule{
		NewFieldName: mr.NewFieldName,
		Function:     mr.Function,
	}
	switch mr.Type {
	case "EXTRACT":
		rule.Type = ExtractRule
	case "FORMAT":
		rule.Type = FormatRule
	default:
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"scheme %s: unknown rule type %q", scheme.Name, mr.Type)
	}
	if rule.NewFieldName == "" {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"scheme %s: rule %q without newFieldName", scheme.Name, mr.Function)
	}

	var err error
	if rule.call, err = parseRuleCall(mr.Function); err != nil {
		return nil, tdterrors.Wrapf(err, "scheme %s", scheme.Name)
	}
	if mr.CharacterSet != "" {
		if rule.CharacterSet, err = compileCharacterSet(mr.CharacterSet); err != nil {
			return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
				"scheme %s: rule %s: bad characterSet %q: %v",
				scheme.Name, mr.NewFieldName, mr.CharacterSet, err)
		}
	}
	return rule, nil
}

// compileCharacterSet anchors a markup character-set fragment; the
// trailing * is implied when the fragment doesn't already end with one.
func compileCharacterSet(cs string) (*regexp.Regexp, error) {
	if !strings.HasSuffix(cs, "*") {
		cs += "*"
	}
	return regexp.Compile("^" + cs + "$")
}

// parseCompaction accepts the markup spellings "5-bit", "5bit" and "5".
func parseCompaction(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimSuffix(s, "bit"), "-")
	return strconv.Atoi(s)
}

func parsePadDir(s string) (bitcodec.PadDir, error) {
	switch s {
	case "":
		return bitcodec.PadNone, nil
	case "LEFT":
		return bitcodec.PadLeft, nil
	case "RIGHT":
		return bitcodec.PadRight, nil
	}
	return bitcodec.PadNone, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
		"bad pad direction %q", s)
}

func parseBound(s string) (*big.Int, error) {
	if s == "" {
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, tdterrors.Errorf(tdterrors.InvalidSchemeFile, "bad decimal bound %q", s)
	}
	return v, nil
}
