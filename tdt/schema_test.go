package tdt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/intel/rsp-sw-toolkit-im-suite-expect"
	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
	"github.com/intel/rsp-sw-toolkit-im-suite-tagdata/markup"
)

// compile parses inline markup and compiles it, so invariant tests can
// hand in small, deliberately broken documents.
func compile(t *testing.T, doc string) (*SchemeSet, error) {
	t.Helper()
	def, err := markup.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("markup did not parse: %v", err)
	}
	return NewSchemeSet(def.Schemes, nil)
}

func TestCompile_invariants(t *testing.T) {
	type test struct {
		name, doc string
	}

	wrap := func(scheme string) string {
		return `<epcTagDataTranslation version="1.6" date="2019-06-21">` + scheme + `</epcTagDataTranslation>`
	}

	for i, tt := range []test{
		{"bad pattern", wrap(`
			<scheme name="X" tagLength="8">
			  <level type="BINARY" prefixMatch="0">
			    <option optionKey="0" pattern="([01]{8" grammar="value">
			      <field seq="1" name="value" length="8"/>
			    </option>
			  </level>
			</scheme>`)},
		{"seq outside groups", wrap(`
			<scheme name="X" tagLength="8">
			  <level type="BINARY" prefixMatch="0">
			    <option optionKey="0" pattern="([01]{8})" grammar="value">
			      <field seq="2" name="value" length="8"/>
			    </option>
			  </level>
			</scheme>`)},
		{"binary widths do not cover tagLength", wrap(`
			<scheme name="X" tagLength="16">
			  <level type="BINARY" prefixMatch="0">
			    <option optionKey="0" pattern="([01]{8})" grammar="value">
			      <field seq="1" name="value" length="8"/>
			    </option>
			  </level>
			</scheme>`)},
		{"unknown level type", wrap(`
			<scheme name="X" tagLength="8">
			  <level type="BINARYISH" prefixMatch="0">
			    <option optionKey="0" pattern="([01]{8})" grammar="value">
			      <field seq="1" name="value" length="8"/>
			    </option>
			  </level>
			</scheme>`)},
		{"unknown rule function", wrap(`
			<scheme name="X" tagLength="8">
			  <level type="BINARY" prefixMatch="0">
			    <option optionKey="0" pattern="([01]{8})" grammar="value">
			      <field seq="1" name="value" length="8"/>
			    </option>
			    <rule type="EXTRACT" newFieldName="y" function="frobnicate(value)"/>
			  </level>
			</scheme>`)},
		{"unknown rule type", wrap(`
			<scheme name="X" tagLength="8">
			  <level type="BINARY" prefixMatch="0">
			    <option optionKey="0" pattern="([01]{8})" grammar="value">
			      <field seq="1" name="value" length="8"/>
			    </option>
			    <rule type="DERIVE" newFieldName="y" function="length(value)"/>
			  </level>
			</scheme>`)},
		{"empty grammar", wrap(`
			<scheme name="X" tagLength="8">
			  <level type="BINARY" prefixMatch="0">
			    <option optionKey="0" pattern="([01]{8})" grammar="">
			      <field seq="1" name="value" length="8"/>
			    </option>
			  </level>
			</scheme>`)},
		{"no name", wrap(`
			<scheme tagLength="8">
			  <level type="BINARY" prefixMatch="0"/>
			</scheme>`)},
		{"bad pad direction", wrap(`
			<scheme name="X" tagLength="8">
			  <level type="BINARY" prefixMatch="0">
			    <option optionKey="0" pattern="([01]{8})" grammar="value">
			      <field seq="1" name="value" length="8" bitPadDir="UP"/>
			    </option>
			  </level>
			</scheme>`)},
	} {
		t.Run(fmt.Sprintf("%02d_%s", i, tt.name), func(t *testing.T) {
			w := expect.WrapT(t)
			_, err := compile(t, tt.doc)
			w.ShouldFail(err)
			w.ShouldBeEqual(tdterrors.KindOf(err), tdterrors.InvalidSchemeFile)
		})
	}
}

func TestCompile_anchorsKeepGroupIndexes(t *testing.T) {
	w := expect.WrapT(t)
	set, err := compile(t, `<epcTagDataTranslation version="1.6" date="2019-06-21">
		<scheme name="X" tagLength="8">
		  <level type="BINARY" prefixMatch="0">
		    <option optionKey="0" pattern="([01]{4})([01]{4})" grammar="hi lo">
		      <field seq="1" name="hi" length="4"/>
		      <field seq="2" name="lo" length="4"/>
		    </option>
		  </level>
		</scheme>
	</epcTagDataTranslation>`)
	w.StopOnMismatch().ShouldSucceed(err)

	opt := set.Schemes()[0].Levels[0].Options[0]
	w.ShouldBeEqual(opt.Pattern.NumSubexp(), 2)
	// the anchoring wrapper must not shift capture groups, and partial
	// matches must not be accepted
	w.ShouldBeTrue(opt.Pattern.MatchString("01101100"))
	w.ShouldBeFalse(opt.Pattern.MatchString("011011001"))
	m := opt.Pattern.FindStringSubmatch("01101100")
	w.ShouldBeEqual(m[1], "0110")
	w.ShouldBeEqual(m[2], "1100")
}
