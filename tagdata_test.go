/* Apache v2 license
 * Copyright (C) 2019 Intel Corporation
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package tagdata

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/intel/rsp-sw-toolkit-im-suite-expect"
	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/tdt"
)

const (
	sgtinHints = "taglength=96;filter=3;gs1companyprefixlength=7"

	// SGTIN-96 for gtin 00037000302414, serial 1041970, filter 3
	sgtin96Bits = "00110000" + "011" + "101" +
		"000000001001000010001000" +
		"00000111011000100001" +
		"00000000000000000011111110011000110010"

	sgtin96Legacy = "gtin=00037000302414;serial=1041970"
	sgtin96AI     = "(01)00037000302414(21)1041970"
	sgtin96Tag    = "urn:epc:tag:sgtin-96:3.0037000.030241.1041970"
	sgtin96Pure   = "urn:epc:id:sgtin:0037000.030241.1041970"
	sgtin96ONS    = "030241.0037000.sgtin.id.onsepc.com"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New("schemes", "schemes/ManagerTranslation.xml")
	if err != nil {
		t.Fatalf("unable to build engine: %v", err)
	}
	return engine
}

func TestTranslate_sgtin96(t *testing.T) {
	engine := newEngine(t)

	type test struct {
		name, in, target, expected string
	}
	for i, tt := range []test{
		{"legacy to binary", sgtin96Legacy, "BINARY", sgtin96Bits},
		{"ai to binary", sgtin96AI, "BINARY", sgtin96Bits},
		{"tag to binary", sgtin96Tag, "BINARY", sgtin96Bits},
		{"pure to binary", sgtin96Pure, "BINARY", sgtin96Bits},
		{"binary to pure", sgtin96Bits, "PURE_IDENTITY", sgtin96Pure},
		{"binary to tag", sgtin96Bits, "TAG_ENCODING", sgtin96Tag},
		{"binary to legacy", sgtin96Bits, "LEGACY", sgtin96Legacy},
		{"binary to ai", sgtin96Bits, "LEGACY_AI", sgtin96AI},
		{"binary to ons", sgtin96Bits, "ONS_HOSTNAME", sgtin96ONS},
		{"legacy to pure", sgtin96Legacy, "PURE_IDENTITY", sgtin96Pure},
		{"legacy to tag", sgtin96Legacy, "TAG_ENCODING", sgtin96Tag},
		{"tag to legacy", sgtin96Tag, "LEGACY", sgtin96Legacy},
		{"pure to ai", sgtin96Pure, "LEGACY_AI", sgtin96AI},
		{"ai to ons", sgtin96AI, "ONS_HOSTNAME", sgtin96ONS},
	} {
		t.Run(fmt.Sprintf("%02d_%s", i, tt.name), func(t *testing.T) {
			w := expect.WrapT(t)
			got, err := engine.TranslateParams(tt.in, sgtinHints, tt.target)
			w.ShouldSucceed(err)
			w.ShouldBeEqual(got, tt.expected)
		})
	}
}

func TestTranslate_roundTrips(t *testing.T) {
	engine := newEngine(t)
	hints, err := ParseHints(sgtinHints)
	if err != nil {
		t.Fatal(err)
	}

	for i, level := range []tdt.LevelType{
		tdt.Binary, tdt.TagEncoding, tdt.PureIdentity, tdt.Legacy, tdt.LegacyAI,
	} {
		t.Run(fmt.Sprintf("%02d_%s", i, level), func(t *testing.T) {
			w := expect.WrapT(t)

			there, err := engine.Translate(sgtin96Legacy, hints, level)
			w.StopOnMismatch().ShouldSucceed(err)

			// translating to the same level again must be a fixed point
			again, err := engine.Translate(there, hints, level)
			w.ShouldSucceed(err)
			w.ShouldBeEqual(again, there)

			back, err := engine.Translate(there, hints, tdt.Legacy)
			w.ShouldSucceed(err)
			w.ShouldBeEqual(back, sgtin96Legacy)
		})
	}
}

func TestTranslate_binaryLength(t *testing.T) {
	engine := newEngine(t)
	w := expect.WrapT(t)

	for _, tc := range []struct {
		in, hints string
		bits      int
	}{
		{sgtin96Legacy, sgtinHints, 96},
		{"(00)006141411234567890", "taglength=96;filter=3;companyprefixlength=7", 96},
		{"urn:epc:tag:gid-96:5.17.42", "", 96},
		{"urn:epc:id:sgtin:0037000.030241.1041970", "taglength=64;filter=3", 64},
	} {
		got, err := engine.TranslateParams(tc.in, tc.hints, "BINARY")
		w.As(tc.in).StopOnMismatch().ShouldSucceed(err)
		w.As(tc.in).ShouldHaveLength(got, tc.bits)
		w.As(tc.in).ShouldBeEqual(strings.Trim(got, "01"), "")
	}
}

func TestTranslate_sscc96(t *testing.T) {
	engine := newEngine(t)
	w := expect.WrapT(t)

	const ai = "(00)006141411234567890"
	const hints = "taglength=96;filter=3;companyprefixlength=7"

	bits, err := engine.TranslateParams(ai, hints, "BINARY")
	w.StopOnMismatch().ShouldSucceed(err)
	w.ShouldHaveLength(bits, 96)

	// SSCC-96 header is 0x31
	w.ShouldBeEqual(bits[:8], "00110001")
	// partition 5 for a 7-digit company prefix
	w.ShouldBeEqual(bits[11:14], "101")
	// the low 24 bits are reserved zeros
	w.ShouldBeEqual(bits[72:], strings.Repeat("0", 24))

	back, err := engine.TranslateParams(bits, hints, "LEGACY_AI")
	w.ShouldSucceed(err)
	w.ShouldBeEqual(back, ai)

	pure, err := engine.TranslateParams(bits, hints, "PURE_IDENTITY")
	w.ShouldSucceed(err)
	w.ShouldBeEqual(pure, "urn:epc:id:sscc:0614141.0123456789")

	tag, err := engine.TranslateParams(pure, hints, "TAG_ENCODING")
	w.ShouldSucceed(err)
	w.ShouldBeEqual(tag, "urn:epc:tag:sscc-96:3.0614141.0123456789")
}

func TestTranslate_gid96(t *testing.T) {
	engine := newEngine(t)
	w := expect.WrapT(t)

	// all three fields at their maximums fill the tag with ones
	bits, err := engine.TranslateParams(
		"urn:epc:tag:gid-96:268435455.16777215.68719476735", "", "BINARY")
	w.StopOnMismatch().ShouldSucceed(err)
	w.ShouldBeEqual(bits, "00110101"+strings.Repeat("1", 88))

	pure, err := engine.TranslateParams(bits, "", "PURE_IDENTITY")
	w.ShouldSucceed(err)
	w.ShouldBeEqual(pure, "urn:epc:id:gid:268435455.16777215.68719476735")

	tag, err := engine.TranslateParams(pure, "", "TAG_ENCODING")
	w.ShouldSucceed(err)
	w.ShouldBeEqual(tag, "urn:epc:tag:gid-96:268435455.16777215.68719476735")

	_, err = engine.TranslateParams("urn:epc:tag:gid-96:268435456.0.0", "", "BINARY")
	w.ShouldFail(err)
	w.ShouldBeEqual(tdterrors.KindOf(err), tdterrors.AboveMaximum)
}

func TestTranslate_sgtin64_companyPrefixTable(t *testing.T) {
	engine := newEngine(t)
	w := expect.WrapT(t)

	const bits64 = "10" + "011" + "00000000000001" +
		"00000111011000100001" + "0000011111110011000110010"

	// encoding consults the reverse company-prefix index
	got, err := engine.TranslateParams(sgtin96Pure, "taglength=64;filter=3", "BINARY")
	w.StopOnMismatch().ShouldSucceed(err)
	w.ShouldBeEqual(got, bits64)

	// decoding consults the forward index
	tag, err := engine.TranslateParams(bits64, "", "TAG_ENCODING")
	w.ShouldSucceed(err)
	w.ShouldBeEqual(tag, "urn:epc:tag:sgtin-64:3.0037000.030241.1041970")

	pure, err := engine.TranslateParams(bits64, "", "PURE_IDENTITY")
	w.ShouldSucceed(err)
	w.ShouldBeEqual(pure, sgtin96Pure)

	// a company prefix missing from the table cannot be encoded
	_, err = engine.TranslateParams(
		"urn:epc:id:sgtin:9999999.030241.1", "taglength=64;filter=3", "BINARY")
	w.ShouldFail(err)
	w.ShouldBeEqual(tdterrors.KindOf(err), tdterrors.MissingTableKey)
}

func TestTranslate_sgtin198_compaction(t *testing.T) {
	engine := newEngine(t)
	w := expect.WrapT(t)

	const tag = "urn:epc:tag:sgtin-198:3.0037000.030241.ABC123"
	const hints = "taglength=198;filter=3;gs1companyprefixlength=7"

	bits, err := engine.TranslateParams(tag, hints, "BINARY")
	w.StopOnMismatch().ShouldSucceed(err)
	w.ShouldHaveLength(bits, 198)
	w.ShouldBeEqual(bits[:8], "00110110")

	back, err := engine.TranslateParams(bits, hints, "TAG_ENCODING")
	w.ShouldSucceed(err)
	w.ShouldBeEqual(back, tag)

	// percent-encoded serials decode on the way in
	pure, err := engine.TranslateParams(
		"urn:epc:id:sgtin:0037000.030241.AB%2FCD", hints, "PURE_IDENTITY")
	w.ShouldSucceed(err)
	w.ShouldBeEqual(pure, "urn:epc:id:sgtin:0037000.030241.AB/CD")
}

func TestTranslate_errors(t *testing.T) {
	engine := newEngine(t)

	type test struct {
		name, in, hints, target string
		kind                    tdterrors.Kind
	}
	for i, tt := range []test{
		{"pure sgtin without taglength is ambiguous",
			sgtin96Pure, "filter=3", "BINARY", tdterrors.AmbiguousMatch},
		{"non-digit serial leaves the character set",
			"urn:epc:id:sgtin:0037000.030241.10A1970", "taglength=96;filter=3", "BINARY",
			tdterrors.InvalidCharacterSet},
		{"filter above its maximum",
			sgtin96Legacy, "taglength=96;filter=8;gs1companyprefixlength=7", "BINARY",
			tdterrors.AboveMaximum},
		{"filter below its minimum",
			sgtin96Legacy, "taglength=96;filter=-1;gs1companyprefixlength=7", "BINARY",
			tdterrors.BelowMinimum},
		{"serial too large for the tag",
			"gtin=00037000302414;serial=274877906944", sgtinHints, "BINARY",
			tdterrors.AboveMaximum},
		{"unknown identifier", "no-such-identifier", "", "BINARY", tdterrors.NoMatch},
		{"legacy needs its option key hint",
			sgtin96Legacy, "taglength=96;filter=3", "BINARY", tdterrors.NoMatch},
		{"empty identifier", "", "", "BINARY", tdterrors.InvalidArgument},
		{"bad taglength hint", sgtin96Legacy, "taglength=ninety-six", "BINARY",
			tdterrors.InvalidArgument},
		{"tag output needs the filter hint",
			sgtin96Legacy, "taglength=96;gs1companyprefixlength=7", "TAG_ENCODING",
			tdterrors.InvalidArgument},
	} {
		t.Run(fmt.Sprintf("%02d_%s", i, tt.name), func(t *testing.T) {
			w := expect.WrapT(t)
			_, err := engine.TranslateParams(tt.in, tt.hints, tt.target)
			w.StopOnMismatch().ShouldFail(err)
			w.ShouldBeEqual(tdterrors.KindOf(err), tt.kind)
		})
	}

	w := expect.WrapT(t)
	_, err := engine.TranslateParams(sgtin96Legacy, sgtinHints, "binary")
	w.ShouldFail(err)
	w.ShouldBeEqual(tdterrors.KindOf(err), tdterrors.InvalidArgument)

	_, err = engine.TranslateParams(sgtin96Legacy, "not-a-hint", "BINARY")
	w.ShouldFail(err)
	w.ShouldBeEqual(tdterrors.KindOf(err), tdterrors.InvalidArgument)
}

func TestParseHints(t *testing.T) {
	w := expect.WrapT(t)

	h, err := ParseHints(" taglength=96; ;filter=3 ;gs1companyprefixlength=7;")
	w.StopOnMismatch().ShouldSucceed(err)
	w.ShouldHaveLength(h, 3)
	w.ShouldBeEqual(h["taglength"], "96")
	w.ShouldBeEqual(h["filter"], "3")
	w.ShouldBeEqual(h["gs1companyprefixlength"], "7")

	h, err = ParseHints("")
	w.ShouldSucceed(err)
	w.ShouldHaveLength(h, 0)

	_, err = ParseHints("taglength")
	w.ShouldFail(err)
	_, err = ParseHints("=96")
	w.ShouldFail(err)
}

func TestEngine_refreshAndConcurrency(t *testing.T) {
	engine := newEngine(t)
	w := expect.WrapT(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				got, err := engine.TranslateParams(sgtin96Legacy, sgtinHints, "BINARY")
				if err != nil {
					errs <- err
					return
				}
				if got != sgtin96Bits {
					errs <- fmt.Errorf("unexpected translation %q", got)
					return
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		w.StopOnMismatch().ShouldSucceed(engine.Refresh())
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNew_badPaths(t *testing.T) {
	w := expect.WrapT(t)

	_, err := New("no-such-dir", "")
	w.ShouldFail(err)

	_, err = New("schemes", "no-such-aux.xml")
	w.ShouldFail(err)
}
