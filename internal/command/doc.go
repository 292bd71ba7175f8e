// SPDX-License-Identifier: MPL-2.0

// Package command runs external command-line tools (cloud CLI, IaC CLI,
// editor, VCS client) for the import pipeline.
//
// A Builder describes one logical invocation. Running it checks the on-disk
// output cache, materializes file arguments, spawns the resolved program under
// an optional timeout and, on a non-zero exit, classifies stderr to decide
// between failing, sleeping through a rate limit, or re-authenticating behind
// the process-wide login lock. Each of those retries happens at most once.
// Unrecoverable failures are dumped to a timestamped directory for postmortem
// inspection.
//
//	out, err := command.New(command.KindCloudCLI).
//		Args("account", "show", "--output", "json").
//		UseCacheDir("account/show").
//		RunRaw(ctx)
package command
