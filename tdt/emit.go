/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package tdt

import (
	"net/url"
	"strings"

	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/bitcodec"
	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
)

// emit produces the output identifier. For a BINARY target the option's
// fields are first re-encoded to bit strings in place; then the grammar
// is walked left to right, literals (quoted tokens) verbatim and field
// names through the token map.
func emit(out *Option, tokens map[string]string, target LevelType) (string, error) {
	if target == Binary {
		if err := encodeBinaryFields(out, tokens); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	for _, g := range out.Grammar {
		if g[0] == '\'' {
			b.WriteString(strings.Trim(g, "'"))
			continue
		}
		v, ok := tokens[g]
		if !ok {
			return "", tdterrors.Errorf(tdterrors.InvalidArgument,
				"no value for output field %s; missing hint?", g)
		}
		if target == TagEncoding || target == PureIdentity {
			if u, err := url.PathUnescape(v); err == nil {
				v = u
			}
		}
		b.WriteString(v)
	}
	return b.String(), nil
}

// encodeBinaryFields turns each bound token into a width-exact bit
// string: text padding first, then character compaction or decimal
// conversion, then directional zero-fill to the field's bit length.
// Constant bits (header, partition) are emitted by the grammar as
// literals. They have no binding unless the input was itself BINARY, and
// a field with no binding is skipped here; when they are bound, their
// encoded value is simply never emitted.
func encodeBinaryFields(out *Option, tokens map[string]string) error {
	for _, f := range out.Fields {
		token, ok := tokens[f.Name]
		if !ok {
			continue
		}

		if f.PadChar != 0 && f.PadDir != bitcodec.PadNone {
			token = bitcodec.ApplyPadChar(token, f.PadDir, f.PadChar, f.Length)
		}

		var err error
		if f.Compaction != 0 {
			if err = checkCharset(f, token); err != nil {
				return err
			}
			if token, err = bitcodec.StringToBinary(token, f.Compaction); err != nil {
				return tdterrors.Wrapf(err, "field %s", f.Name)
			}
		} else {
			if err = checkRange(f, token); err != nil {
				return err
			}
			if token, err = bitcodec.DecToBin(token); err != nil {
				return tdterrors.Wrapf(err, "field %s", f.Name)
			}
		}

		if f.BitPadDir != bitcodec.PadNone {
			token = bitcodec.ApplyPadChar(token, f.BitPadDir, '0', f.Length)
		}
		tokens[f.Name] = token
	}
	return nil
}
