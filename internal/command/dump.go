// SPDX-License-Identifier: MPL-2.0

package command

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// dumpTimeLayout prefixes dump directory names so they sort chronologically.
const dumpTimeLayout = "20060102_150405"

// dump writes the failure artifacts of an invocation and returns the dump
// directory. Dumps live under the cache entry when one is configured and
// under the engine's failure root otherwise. Dumping is best effort: a
// failure is logged and "" is returned.
func (e *Engine) dump(b *Builder, summary string, out *Output, cause error) string {
	base := e.failureRoot
	if dir, ok := b.CacheEntryDir(); ok {
		base = dir
	}
	now := e.clock.Now()
	dir := filepath.Join(base, failedDir, now.Format(dumpTimeLayout)+"_"+uuid.NewString())

	if err := e.writeDump(dir, b, summary, out, cause); err != nil {
		slog.Error("failed to write failure dump", "summary", summary, "dir", dir, "error", err)
		return ""
	}
	return dir
}

func (e *Engine) writeDump(dir string, b *Builder, summary string, out *Output, cause error) error {
	if err := writeArtifacts(dir, summary, out, e.clock.Now()); err != nil {
		return err
	}

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if b.output == OutputBehaviourDisplay {
		msg += "\n" + displayNote
	}
	if err := os.WriteFile(filepath.Join(dir, errorFile), []byte(msg+"\n"), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", errorFile, err)
	}

	return writeFileArgs(dir, b.fileArgs)
}
