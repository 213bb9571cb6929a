/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package tdt

import (
	"math/big"
	"strconv"
	"strings"

	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
)

// ruleCall is the parsed form of a rule's function attribute:
// name(arg1,arg2,...). The language is flat; nested calls are rejected
// at compile time. Arguments keep their written spelling; binding
// against the token map happens per evaluation.
type ruleCall struct {
	name string
	args []string
}

// ruleFunc computes one rule function over resolved arguments.
type ruleFunc func(s *SchemeSet, tokens map[string]string, args []string) (string, error)

// arity bounds per function; max -1 means unbounded.
type arity struct{ min, max int }

var ruleFuncs = map[string]ruleFunc{
	"tablelookup": evalTableLookup,
	"length":      evalLength,
	"gs1checksum": evalGS1Checksum,
	"substr":      evalSubstr,
	"concat":      evalConcat,
	"add":         arithFunc("add"),
	"subtract":    arithFunc("subtract"),
	"multiply":    arithFunc("multiply"),
	"divide":      arithFunc("divide"),
	"mod":         arithFunc("mod"),
}

var ruleArity = map[string]arity{
	"tablelookup": {4, 4},
	"length":      {1, 1},
	"gs1checksum": {1, 1},
	"substr":      {2, 3},
	"concat":      {1, -1},
	"add":         {2, 2},
	"subtract":    {2, 2},
	"multiply":    {2, 2},
	"divide":      {2, 2},
	"mod":         {2, 2},
}

// parseRuleCall parses name(arg1,...,argN), splitting arguments on commas
// outside quotes. Parentheses inside the argument list mean a nested
// call, which the rule language does not have.
func parseRuleCall(fn string) (ruleCall, error) {
	var call ruleCall

	open := strings.IndexByte(fn, '(')
	if open <= 0 || !strings.HasSuffix(fn, ")") {
		return call, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"malformed rule function %q", fn)
	}
	call.name = strings.ToLower(strings.TrimSpace(fn[:open]))

	inner := fn[open+1 : len(fn)-1]
	if strings.TrimSpace(inner) != "" {
		var quote byte
		start := 0
		for i := 0; i < len(inner); i++ {
			c := inner[i]
			switch {
			case quote != 0:
				if c == quote {
					quote = 0
				}
			case c == '\'' || c == '"':
				quote = c
			case c == ',':
				call.args = append(call.args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			case c == '(' || c == ')':
				return call, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
					"rule function %q: nested calls are not supported", fn)
			}
		}
		if quote != 0 {
			return call, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
				"rule function %q: unterminated quote", fn)
		}
		call.args = append(call.args, strings.TrimSpace(inner[start:]))
	}

	if _, ok := ruleFuncs[call.name]; !ok {
		return call, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"unknown rule function %q", call.name)
	}
	a := ruleArity[call.name]
	if len(call.args) < a.min || (a.max >= 0 && len(call.args) > a.max) {
		return call, tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"rule function %q takes %d..%d arguments, not %d", call.name, a.min, a.max, len(call.args))
	}
	return call, nil
}

// evalRules runs the level's rules of the requested type in document
// order. Each result may be checked against the rule's character set and
// is then bound in the token map. A rule may overwrite a value that came
// from tokenization or caller hints (same-level round trips re-derive
// representation fields), but rebinding a name an earlier rule produced
// is a scheme-file error.
func (s *SchemeSet) evalRules(level *Level, typ RuleType, tokens map[string]string, ruleDefined map[string]bool) error {
	for _, r := range level.Rules {
		if r.Type != typ {
			continue
		}
		v, err := ruleFuncs[r.call.name](s, tokens, r.call.args)
		if err != nil {
			return tdterrors.Wrapf(err, "rule %s=%s", r.NewFieldName, r.Function)
		}
		if r.CharacterSet != nil && !r.CharacterSet.MatchString(v) {
			return tdterrors.Errorf(tdterrors.InvalidCharacterSet,
				"rule %s: %q is outside its character set %s", r.NewFieldName, v, r.CharacterSet)
		}
		if ruleDefined[r.NewFieldName] {
			return tdterrors.Errorf(tdterrors.DuplicateField,
				"rule %s redefines a rule-derived field", r.NewFieldName)
		}
		ruleDefined[r.NewFieldName] = true
		tokens[r.NewFieldName] = v
	}
	return nil
}

// resolveArg binds one rule argument: a token-map hit wins, otherwise the
// argument is a literal (quotes stripped).
func resolveArg(tokens map[string]string, arg string) string {
	if v, ok := tokens[arg]; ok {
		return v
	}
	lit, _ := unquote(arg)
	return lit
}

func unquote(arg string) (string, bool) {
	if len(arg) >= 2 {
		if (arg[0] == '\'' && arg[len(arg)-1] == '\'') ||
			(arg[0] == '"' && arg[len(arg)-1] == '"') {
			return arg[1 : len(arg)-1], true
		}
	}
	return arg, false
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func evalTableLookup(s *SchemeSet, tokens map[string]string, args []string) (string, error) {
	key := resolveArg(tokens, args[0])
	table, _ := unquote(args[1])
	if table != "tdt64bitcpi" {
		return "", tdterrors.Errorf(tdterrors.TableNotFound, "unknown table %q", table)
	}
	if len(s.prefixByIndex) == 0 {
		return "", tdterrors.Errorf(tdterrors.TableNotFound,
			"table %q: auxiliary table not loaded", table)
	}

	var m map[string]string
	keyColumn, _ := unquote(args[2])
	switch keyColumn {
	case "index":
		m = s.prefixByIndex
	case "companyprefix":
		m = s.indexByPrefix
	default:
		return "", tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"table %q has no column %q", table, keyColumn)
	}

	v, ok := m[key]
	if !ok {
		return "", tdterrors.Errorf(tdterrors.MissingTableKey,
			"table %q has no entry for %s=%q", table, keyColumn, key)
	}
	return v, nil
}

func evalLength(_ *SchemeSet, tokens map[string]string, args []string) (string, error) {
	return strconv.Itoa(len(resolveArg(tokens, args[0]))), nil
}

// evalGS1Checksum computes the GS1 mod-10 check digit: scanning digits
// right to left, offset i weighs -3 when even and -1 when odd; the final
// normalization maps the negative total back into a single digit.
func evalGS1Checksum(_ *SchemeSet, tokens map[string]string, args []string) (string, error) {
	d := resolveArg(tokens, args[0])
	total := 0
	for i := 0; i < len(d); i++ {
		c := d[len(d)-1-i]
		if c < '0' || c > '9' {
			return "", tdterrors.Errorf(tdterrors.ArithmeticError,
				"gs1checksum of non-decimal %q", d)
		}
		if i%2 == 0 {
			total -= 3 * int(c-'0')
		} else {
			total -= int(c - '0')
		}
	}
	return strconv.Itoa((10 + total%10) % 10), nil
}

// evalSubstr takes a 0-based start and an optional length.
func evalSubstr(_ *SchemeSet, tokens map[string]string, args []string) (string, error) {
	v := resolveArg(tokens, args[0])
	start, err := strconv.Atoi(resolveArg(tokens, args[1]))
	if err != nil || start < 0 || start > len(v) {
		return "", tdterrors.Errorf(tdterrors.OutOfRange,
			"substr start %q is outside %q", args[1], v)
	}
	if len(args) == 2 {
		return v[start:], nil
	}
	n, err := strconv.Atoi(resolveArg(tokens, args[2]))
	if err != nil || n < 0 || start+n > len(v) {
		return "", tdterrors.Errorf(tdterrors.OutOfRange,
			"substr length %q is outside %q from %d", args[2], v, start)
	}
	return v[start : start+n], nil
}

// evalConcat joins its arguments. Quoted arguments are literals, unquoted
// ones resolve against the token map; an unbound name that isn't a plain
// number can only come from a mis-authored rule.
func evalConcat(_ *SchemeSet, tokens map[string]string, args []string) (string, error) {
	var b strings.Builder
	for _, arg := range args {
		if lit, quoted := unquote(arg); quoted {
			b.WriteString(lit)
			continue
		}
		if v, ok := tokens[arg]; ok {
			b.WriteString(v)
			continue
		}
		if !isDecimal(arg) {
			return "", tdterrors.Errorf(tdterrors.InvalidSchemeFile,
				"concat argument %q is not bound", arg)
		}
		b.WriteString(arg)
	}
	return b.String(), nil
}

// arithFunc builds the integer arithmetic rule for one operator. Values
// stay strings everywhere else in the engine; arithmetic is the one place
// they become integers, and tag fields exceed 64 bits, so math/big.
func arithFunc(op string) ruleFunc {
	return func(_ *SchemeSet, tokens map[string]string, args []string) (string, error) {
		a, aok := new(big.Int).SetString(resolveArg(tokens, args[0]), 10)
		b, bok := new(big.Int).SetString(resolveArg(tokens, args[1]), 10)
		if !aok || !bok {
			return "", tdterrors.Errorf(tdterrors.ArithmeticError,
				"%s of non-integer arguments %q, %q", op, args[0], args[1])
		}
		r := new(big.Int)
		switch op {
		case "add":
			r.Add(a, b)
		case "subtract":
			r.Sub(a, b)
		case "multiply":
			r.Mul(a, b)
		case "divide":
			if b.Sign() == 0 {
				return "", tdterrors.New(tdterrors.ArithmeticError, "division by zero")
			}
			r.Quo(a, b)
		case "mod":
			if b.Sign() == 0 {
				return "", tdterrors.New(tdterrors.ArithmeticError, "mod by zero")
			}
			r.Mod(a, b)
		}
		return r.String(), nil
	}
}
