package tdt

import (
	"strconv"
	"strings"

	tdterrors "github.com/intel/rsp-sw-toolkit-im-suite-tagdata/errors"
)

// selection is one (scheme, level, option) triple.
type selection struct {
	scheme *Scheme
	level  *Level
	option *Option
}

func (sel selection) String() string {
	return sel.scheme.Name + "/" + string(sel.level.Type) + " option " + sel.option.OptionKey
}

// selectInput resolves the (scheme, level, option) an identifier arrives
// at. A level is a candidate only when it declares a prefix and the
// identifier starts with it (output-only levels such as ONS_HOSTNAME
// declare none); the taglength hint, when present, restricts schemes; the
// option's anchored pattern must accept the whole identifier; and levels
// whose options share one pattern (LEGACY, LEGACY_AI, ONS_HOSTNAME) also
// require the scheme's option-key hint to equal the option's key.
//
// Scheme files are authored so that a legal identifier lands on exactly
// one triple; zero is NoMatch, more than one is AmbiguousMatch.
func (s *SchemeSet) selectInput(id string, hints map[string]string) (selection, error) {
	tagLength := -1
	if tl, ok := hints["taglength"]; ok && strings.TrimSpace(tl) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(tl))
		if err != nil {
			return selection{}, tdterrors.Errorf(tdterrors.InvalidArgument,
				"taglength hint %q is not an integer", tl)
		}
		tagLength = n
	}

	var found []selection
	for _, scheme := range s.schemes {
		if tagLength >= 0 && scheme.TagLength != tagLength {
			continue
		}
		for _, level := range scheme.Levels {
			if level.PrefixMatch == "" || !strings.HasPrefix(id, level.PrefixMatch) {
				continue
			}
			for _, option := range level.Options {
				if !option.Pattern.MatchString(id) {
					continue
				}
				if !level.Type.optionByRegexOnly() &&
					option.OptionKey != hints[scheme.OptionKey] {
					continue
				}
				found = append(found, selection{scheme: scheme, level: level, option: option})
			}
		}
	}

	switch len(found) {
	case 0:
		return selection{}, tdterrors.Errorf(tdterrors.NoMatch,
			"no scheme option matches %q", id)
	case 1:
		return found[0], nil
	}

	names := make([]string, len(found))
	for i, sel := range found {
		names[i] = sel.String()
	}
	return selection{}, tdterrors.Errorf(tdterrors.AmbiguousMatch,
		"%q matches %s", id, strings.Join(names, " and "))
}

// selectOutput finds the target level's option with the same option key
// within the input's scheme.
func (s *SchemeSet) selectOutput(in selection, target LevelType) (selection, error) {
	for _, level := range in.scheme.Levels {
		if level.Type != target {
			continue
		}
		for _, option := range level.Options {
			if option.OptionKey == in.option.OptionKey {
				return selection{scheme: in.scheme, level: level, option: option}, nil
			}
		}
	}
	return selection{}, tdterrors.Errorf(tdterrors.NoMatch,
		"scheme %s has no %s option %q", in.scheme.Name, target, in.option.OptionKey)
}
