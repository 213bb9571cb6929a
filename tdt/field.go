package tdt

import (
	"math/big"

	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
)

// checkCharset verifies a token against its field's declared character
// set. Fields without a character set accept anything.
func checkCharset(f *Field, token string) error {
	if f.CharacterSet == nil {
		return nil
	}
	if !f.CharacterSet.MatchString(token) {
		return tdterrors.Errorf(tdterrors.InvalidCharacterSet,
			"field %s: %q is outside its character set %s", f.Name, token, f.CharacterSet)
	}
	return nil
}

// checkRange verifies a decimal token against its field's declared
// bounds. Tokens that don't parse as decimal are not range-checked, and
// an absent bound is not enforced.
func checkRange(f *Field, token string) error {
	if f.Min == nil && f.Max == nil {
		return nil
	}
	v, ok := new(big.Int).SetString(token, 10)
	if !ok {
		return nil
	}
	if f.Min != nil && v.Cmp(f.Min) < 0 {
		return tdterrors.Errorf(tdterrors.BelowMinimum,
			"field %s: %s is below the minimum %s", f.Name, token, f.Min)
	}
	if f.Max != nil && v.Cmp(f.Max) > 0 {
		return tdterrors.Errorf(tdterrors.AboveMaximum,
			"field %s: %s is above the maximum %s", f.Name, token, f.Max)
	}
	return nil
}
