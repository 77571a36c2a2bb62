package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/confman-io/confman/internal/codec"
	"github.com/confman-io/confman/internal/docstore"
	"github.com/confman-io/confman/internal/errs"
	"github.com/confman-io/confman/internal/manager"
)

// docTarget is a resolved document selector: either a full file name
// decoded through the codec, or a (module, version, experiment)
// triple.
type docTarget struct {
	byName bool
	name   string
	ref    manager.Ref
}

// parseDocTarget resolves positional arguments. One argument must be a
// .yaml file name; two arguments are <module> <version>.
func parseDocTarget(args []string, experiment string) (docTarget, error) {
	if len(args) == 1 {
		if !strings.HasSuffix(args[0], codec.Extension) {
			return docTarget{}, WrapExitError(ExitCommandError,
				fmt.Sprintf("expected <module> <version> or a %s file name", codec.Extension), nil)
		}
		return docTarget{byName: true, name: args[0]}, nil
	}

	version, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return docTarget{}, WrapExitError(ExitCommandError,
			fmt.Sprintf("version must be a number, got %q", args[1]), nil)
	}
	return docTarget{ref: manager.Ref{Module: args[0], Version: version, Experiment: experiment}}, nil
}

// parsePayload builds a document payload from --file and --set flags.
// --set values parse as YAML scalars so "lr=0.01" stays a number and
// "name=adam" a string. Returns nil when neither flag was given.
func parsePayload(sets []string, file string) (docstore.Document, error) {
	var doc docstore.Document

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "read payload file", err)
		}
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, errs.InvalidArgument("payload file %q is not valid YAML: %v", file, err)
		}
		mapping, ok := v.(map[string]any)
		if !ok {
			return nil, errs.InvalidArgument("payload file %q is not a mapping", file)
		}
		doc = docstore.Document(mapping)
	}

	for _, kv := range sets {
		key, raw, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, errs.InvalidArgument("--set expects key=value, got %q", kv)
		}
		if doc == nil {
			doc = docstore.Document{}
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		doc[key] = v
	}

	return doc, nil
}
