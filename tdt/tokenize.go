/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package tdt

import (
	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/bitcodec"
	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
)

// tokenize captures the input option's fields out of the identifier and
// binds them by name. Text-level captures are taken as written; BINARY
// captures are decoded per field (character compaction or big-integer
// decimal, after directional bit-padding is stripped) and then reconciled
// against the output option's text padding, so a 24-bit company prefix
// decodes to "37000" and leaves here as "0037000" when the output field
// declares a left zero-pad to 7.
func tokenize(in, out *Option, id string, tokens map[string]string) error {
	m := in.Pattern.FindStringSubmatch(id)
	if m == nil {
		return tdterrors.Errorf(tdterrors.NoMatch,
			"%q no longer matches its selected option", id)
	}

	binary := in.Level.Type == Binary
	for _, f := range in.Fields {
		raw := m[f.Seq]

		var token string
		if binary {
			var err error
			if f.Compaction != 0 {
				if f.BitPadDir != bitcodec.PadNone {
					raw = bitcodec.StripBitPadding(raw, f.BitPadDir, f.Compaction)
				}
				if token, err = bitcodec.BinaryToString(raw, f.Compaction); err != nil {
					return tdterrors.Wrapf(err, "field %s", f.Name)
				}
				if err = checkCharset(f, token); err != nil {
					return err
				}
			} else {
				if f.BitPadDir != bitcodec.PadNone {
					raw = bitcodec.StripBitPadding(raw, f.BitPadDir, 0)
				}
				if token, err = bitcodec.BinToDec(raw); err != nil {
					return tdterrors.Wrapf(err, "field %s", f.Name)
				}
				if err = checkRange(f, token); err != nil {
					return err
				}
			}

			if err = reconcilePadding(f, out.fieldsByName[f.Name], &token); err != nil {
				return err
			}
		} else {
			token = raw
			if err := checkCharset(f, token); err != nil {
				return err
			}
			if err := checkRange(f, token); err != nil {
				return err
			}
		}

		if _, dup := tokens[f.Name]; dup {
			return tdterrors.Errorf(tdterrors.DuplicateField,
				"option declares field %s twice", f.Name)
		}
		tokens[f.Name] = token
	}
	return nil
}

// reconcilePadding aligns a binary-decoded token with the text padding of
// the corresponding output field. Padding declared on both sides is a
// scheme-authoring error; input-side padding strips, output-side padding
// applies.
func reconcilePadding(in, out *Field, token *string) error {
	inPad := in.PadDir != bitcodec.PadNone
	outPad := out != nil && out.PadDir != bitcodec.PadNone
	switch {
	case inPad && outPad:
		return tdterrors.Errorf(tdterrors.InvalidSchemeFile,
			"field %s declares text padding at both input and output levels", in.Name)
	case inPad:
		*token = bitcodec.StripPadChar(*token, in.PadDir, in.PadChar)
	case outPad:
		*token = bitcodec.ApplyPadChar(*token, out.PadDir, out.PadChar, out.Length)
	}
	return nil
}
