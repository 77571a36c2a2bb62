// Package codec implements the canonical document name scheme.
//
// A configuration document is identified by the triple
// (module, experiment, version) and serialized to the file name
//
//	{module}_{experiment}_v{version}.yaml
//
// Decoding splits on underscores and takes the first segment as the
// module and the last as the version token. Experiment names may
// contain underscores and survive the round trip; module names may
// NOT - an underscore in a module name mis-splits on decode. This is
// a documented ambiguity of the format, not something the codec
// guards against.
package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/confman-io/confman/internal/errs"
)

// Extension is the only accepted document file extension.
const Extension = ".yaml"

// Name is a decoded document file name.
type Name struct {
	Module     string
	Experiment string
	Version    float64
}

// String returns the canonical file name for the triple.
func (n Name) String() string {
	return Encode(n.Module, n.Experiment, n.Version)
}

// Encode builds the canonical document file name from its parts.
func Encode(module, experiment string, version float64) string {
	return fmt.Sprintf("%s_%s_v%s%s", module, experiment, FormatVersion(version), Extension)
}

// FormatVersion renders a version number for embedding in a file name.
// Integral values keep a trailing ".0" so that encode/decode round-trips
// ("v1.0", never "v1").
func FormatVersion(version float64) string {
	s := strconv.FormatFloat(version, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Decode parses a document file name back into its parts.
//
// Validation order:
//  1. The extension must be exactly ".yaml".
//  2. The stem must split into at least 3 underscore-delimited segments.
//  3. The last segment must start with a literal "v" followed by a
//     parseable floating-point number.
//
// The experiment name is everything between the first segment and the
// version segment, with embedded underscores preserved.
func Decode(name string) (Name, error) {
	if !strings.HasSuffix(name, Extension) {
		return Name{}, errs.InvalidArgument("extension should be %q but got %q", Extension, name)
	}

	stem := strings.TrimSuffix(name, Extension)
	segments := strings.Split(stem, "_")
	if len(segments) < 3 {
		return Name{}, errs.InvalidArgument("name should follow (module)_(experiment)_v(version)%s but got %q", Extension, name)
	}

	module := segments[0]

	versionToken := segments[len(segments)-1]
	if !strings.HasPrefix(versionToken, "v") {
		return Name{}, errs.InvalidArgument("version segment should be v(version) but got %q", versionToken)
	}
	version, err := strconv.ParseFloat(versionToken[1:], 64)
	if err != nil {
		return Name{}, errs.InvalidArgument("version should be a number but got %q", versionToken[1:])
	}

	experiment := strings.Join(segments[1:len(segments)-1], "_")

	return Name{Module: module, Experiment: experiment, Version: version}, nil
}
