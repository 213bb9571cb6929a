package tdt

import (
	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
)

// LevelType names a representation level of a coding scheme.
type LevelType string

const (
	Binary       = LevelType("BINARY")
	TagEncoding  = LevelType("TAG_ENCODING")
	PureIdentity = LevelType("PURE_IDENTITY")
	Legacy       = LevelType("LEGACY")
	LegacyAI     = LevelType("LEGACY_AI")
	ONSHostname  = LevelType("ONS_HOSTNAME")
)

// ParseLevelType parses the markup spelling of a level type. The match is
// case-sensitive: "binary" is not a level.
func ParseLevelType(s string) (LevelType, error) {
	switch LevelType(s) {
	case Binary, TagEncoding, PureIdentity, Legacy, LegacyAI, ONSHostname:
		return LevelType(s), nil
	}
	return "", tdterrors.Errorf(tdterrors.InvalidArgument, "unknown level type %q", s)
}

func (t LevelType) valid() bool {
	_, err := ParseLevelType(string(t))
	return err == nil
}

// optionByRegexOnly reports whether input options at this level are
// disambiguated by their pattern alone. The remaining levels (LEGACY,
// LEGACY_AI, ONS_HOSTNAME) share one pattern across options and need the
// scheme's option key hint to pick one.
func (t LevelType) optionByRegexOnly() bool {
	switch t {
	case Binary, TagEncoding, PureIdentity:
		return true
	}
	return false
}
