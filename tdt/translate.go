/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package tdt

import (
	"net/url"
	"strings"

	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
)

// Translate converts one identifier to the target representation level of
// its own scheme. The identifier is trimmed and percent-decoded, its
// (scheme, level, option) is selected with the caller's hints, the input
// option's fields are tokenized, the input level's EXTRACT rules and the
// output level's FORMAT rules derive the remaining fields, and the output
// option's grammar assembles the result.
//
// Hints join the token map after tokenization without overwriting
// captured fields, which is how values absent from the input
// representation (filter, company-prefix length) reach the output.
func (s *SchemeSet) Translate(id string, hints map[string]string, target LevelType) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", tdterrors.New(tdterrors.InvalidArgument, "empty identifier")
	}
	if !target.valid() {
		return "", tdterrors.Errorf(tdterrors.InvalidArgument,
			"unknown target level %q", string(target))
	}
	if u, err := url.PathUnescape(id); err == nil {
		id = u
	}

	in, err := s.selectInput(id, hints)
	if err != nil {
		return "", err
	}
	out, err := s.selectOutput(in, target)
	if err != nil {
		return "", err
	}

	tokens := make(map[string]string)
	if err := tokenize(in.option, out.option, id, tokens); err != nil {
		return "", tdterrors.Wrapf(err, "%s", in)
	}
	for k, v := range hints {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, bound := tokens[k]; !bound {
			tokens[k] = strings.TrimSpace(v)
		}
	}

	ruleDefined := make(map[string]bool)
	if err := s.evalRules(in.level, ExtractRule, tokens, ruleDefined); err != nil {
		return "", tdterrors.Wrapf(err, "%s", in)
	}
	if err := s.evalRules(out.level, FormatRule, tokens, ruleDefined); err != nil {
		return "", tdterrors.Wrapf(err, "%s", out)
	}

	result, err := emit(out.option, tokens, target)
	if err != nil {
		return "", tdterrors.Wrapf(err, "%s", out)
	}
	return result, nil
}
