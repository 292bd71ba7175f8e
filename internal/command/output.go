// SPDX-License-Identifier: MPL-2.0

package command

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/importctl/importctl/pkg/types"
)

const (
	// shortenThreshold is the largest line count Shorten leaves untouched.
	shortenThreshold = 1000
	// shortenKeep is the number of lines kept at each end of a shortened stream.
	shortenKeep = 500

	truncationMarkerPrefix = "... ["
	truncationMarkerFormat = truncationMarkerPrefix + "%d lines truncated] ..."
)

// Output is the normalized result of a finished process.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode types.ExitCode
}

// Success reports whether the process exited with code 0.
func (o *Output) Success() bool {
	return o.ExitCode.IsSuccess()
}

// Shorten returns a copy suitable for logging: a stream with more than 1000
// lines keeps its first and last 500 lines around one truncation marker line.
// Shorter streams are returned unchanged.
func (o *Output) Shorten() *Output {
	return &Output{
		Stdout:   shortenStream(o.Stdout),
		Stderr:   shortenStream(o.Stderr),
		ExitCode: o.ExitCode,
	}
}

// Equal reports whether both outputs are byte-identical.
func (o *Output) Equal(other *Output) bool {
	if o == nil || other == nil {
		return o == other
	}
	return o.ExitCode == other.ExitCode &&
		bytes.Equal(o.Stdout, other.Stdout) &&
		bytes.Equal(o.Stderr, other.Stderr)
}

// Hash returns a SHA-256 digest over exit code and both streams. Equal
// outputs have equal hashes.
func (o *Output) Hash() [sha256.Size]byte {
	h := sha256.New()
	fmt.Fprintf(h, "%d\x00%d\x00", o.ExitCode, len(o.Stdout))
	h.Write(o.Stdout)
	h.Write(o.Stderr)
	var sum [sha256.Size]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

// String summarizes the output without its content.
func (o *Output) String() string {
	return fmt.Sprintf("exit %s, %d bytes stdout, %d bytes stderr", o.ExitCode, len(o.Stdout), len(o.Stderr))
}

func shortenStream(b []byte) []byte {
	body, trailingNewline := bytes.CutSuffix(b, []byte("\n"))
	lines := bytes.Split(body, []byte("\n"))
	if len(lines) <= shortenThreshold {
		return b
	}
	// An already shortened stream is left as-is.
	if len(lines) == 2*shortenKeep+1 && bytes.HasPrefix(lines[shortenKeep], []byte(truncationMarkerPrefix)) {
		return b
	}

	marker := fmt.Appendf(nil, truncationMarkerFormat, len(lines)-2*shortenKeep)
	kept := make([][]byte, 0, 2*shortenKeep+1)
	kept = append(kept, lines[:shortenKeep]...)
	kept = append(kept, marker)
	kept = append(kept, lines[len(lines)-shortenKeep:]...)

	out := bytes.Join(kept, []byte("\n"))
	if trailingNewline {
		out = append(out, '\n')
	}
	return out
}
