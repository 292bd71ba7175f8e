// SPDX-License-Identifier: MPL-2.0

package command

import (
	"slices"
	"strconv"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// cloudDebugFlag is always passed to the cloud CLI so failure signatures
// reach stderr.
const cloudDebugFlag = "--debug"

// shellSpecial lists characters that make an argument need quoting.
const shellSpecial = " \t\n\"'`$\\|&;<>()*?[]{}~#!"

// Summarize returns the shell-like rendering of the invocation: the program
// followed by its arguments, with file arguments shown as "@<relative path>".
// It is deterministic for a given builder and doubles as the cache context.
func (b *Builder) Summarize() string {
	name := b.kind.String()
	if b.engine != nil {
		if p, err := b.engine.resolver.Resolve(b.kind); err == nil {
			name = p.Name
		}
	}

	args := b.effectiveArgs()
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, quoteArg(name))
	for _, a := range args {
		parts = append(parts, quoteArg(a))
	}
	return strings.Join(parts, " ")
}

// effectiveArgs are the arguments actually passed, before file arguments are
// materialized.
func (b *Builder) effectiveArgs() []string {
	args := slices.Clone(b.args)
	if b.kind == KindCloudCLI && !slices.Contains(args, cloudDebugFlag) {
		args = append(args, cloudDebugFlag)
	}
	return args
}

func quoteArg(s string) string {
	if s != "" && !strings.ContainsAny(s, shellSpecial) {
		return s
	}
	q, err := syntax.Quote(s, syntax.LangBash)
	if err != nil {
		// Not representable in bash, e.g. contains a NUL byte.
		return strconv.Quote(s)
	}
	return q
}
