// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies an Issue in the catalog.
type Id int

const (
	CommandFailedId Id = iota + 1
	CommandTimedOutId
	ExecutableNotFoundId
	CredentialsExpiredId
	RateLimitedId
	ConfigLoadFailedId
	CacheNotConfiguredId
	OutputParseFailedId
	OutputValidationFailedId
	FileArgNotSupportedId
)

type MarkdownMsg string

type HttpLink string

// Issue is a markdown help page shown under an error.
type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue markdown with glamour using the given style
// ("dark", "light", "notty", or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			extraMd += "- <" + string(link) + ">\n"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# The external command failed!

The program exited with a non-zero status and the failure did not match a
known transient signature, so it was not retried.

## Things you can try:
- Open the failure dump printed above; it holds ` + "`context.txt`" + `,
  ` + "`stdout.json`" + `, ` + "`stderr.json`" + ` and every file argument
- Re-run the exact command from ` + "`context.txt`" + ` by hand
- Run with ` + "`--verbose`" + ` to log every invocation summary`,
	}

	commandTimedOutIssue = &Issue{
		id: CommandTimedOutId,
		mdMsg: `
# The command timed out!

The process did not finish within the configured timeout and was killed.
Timeouts are never retried automatically.

## Things you can try:
- Raise the limit:
~~~
$ importctl run --timeout 10m cloud-cli ...
~~~
- Check network connectivity to the cloud provider`,
	}

	executableNotFoundIssue = &Issue{
		id: ExecutableNotFoundId,
		mdMsg: `
# Executable not found!

The program configured for this command kind could not be started.

## Things you can try:
- Install the tool and make sure it is on your PATH
- Point importctl at it explicitly:
~~~cue
executables: {
	cloud_cli: "/usr/local/bin/az"
	iac_cli:   "/usr/local/bin/terraform"
}
~~~
- Set ` + "`IMPORTCTL_USE_TOFU=true`" + ` to use OpenTofu instead of Terraform`,
	}

	credentialsExpiredIssue = &Issue{
		id: CredentialsExpiredId,
		mdMsg: `
# Cloud credentials expired!

The cloud CLI rejected the request because the session token is expired or
invalid. importctl re-authenticates once and retries automatically; this
message means the retry failed as well.

## Things you can try:
~~~
$ importctl login
~~~
- Confirm the right tenant and subscription are selected`,
		extLinks: []HttpLink{"https://learn.microsoft.com/cli/azure/authenticate-azure-cli"},
	}

	rateLimitedIssue = &Issue{
		id: RateLimitedId,
		mdMsg: `
# Rate limited by the cloud provider!

The provider throttled the request. importctl waited and retried once; the
retry was throttled too.

## Things you can try:
- Wait a few minutes and run again
- Enable caching so repeated lookups do not hit the API:
~~~
$ importctl run --cache-dir lookups/accounts --valid-for 1h cloud-cli account list
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or did not match the schema.

## Things you can try:
- Show the path being used:
~~~
$ importctl config path
~~~
- Regenerate a default file:
~~~
$ importctl config init
~~~
- Check ` + "`IMPORTCTL_*`" + ` environment variables for typos`,
	}

	cacheNotConfiguredIssue = &Issue{
		id: CacheNotConfiguredId,
		mdMsg: `
# No cache configured!

The cache can only be busted for a command that has a cache directory.

## Things you can try:
- Pass the cache path:
~~~
$ importctl cache bust lookups/accounts
~~~`,
	}

	outputParseFailedIssue = &Issue{
		id: OutputParseFailedId,
		mdMsg: `
# Could not parse the command output!

The command succeeded but its stdout was not the expected JSON document.

## Things you can try:
- Inspect ` + "`stdout.json`" + ` in the failure dump
- Make sure the command is asked for JSON output (for example ` + "`--output json`" + `)`,
	}

	outputValidationFailedIssue = &Issue{
		id: OutputValidationFailedId,
		mdMsg: `
# The command output was rejected!

The output parsed but did not pass validation.

## Things you can try:
- Inspect ` + "`stdout.json`" + ` and ` + "`error.txt`" + ` in the failure dump
- Check that the selected subscription or workspace is the expected one`,
	}

	fileArgNotSupportedIssue = &Issue{
		id: FileArgNotSupportedId,
		mdMsg: `
# File arguments are not supported here!

Only the cloud CLI accepts ` + "`@file`" + ` arguments.

## Things you can try:
- Pass the content inline, or write it to a file yourself
- Use the ` + "`cloud-cli`" + ` kind`,
	}

	issues = map[Id]*Issue{
		commandFailedIssue.Id():          commandFailedIssue,
		commandTimedOutIssue.Id():        commandTimedOutIssue,
		executableNotFoundIssue.Id():     executableNotFoundIssue,
		credentialsExpiredIssue.Id():     credentialsExpiredIssue,
		rateLimitedIssue.Id():            rateLimitedIssue,
		configLoadFailedIssue.Id():       configLoadFailedIssue,
		cacheNotConfiguredIssue.Id():     cacheNotConfiguredIssue,
		outputParseFailedIssue.Id():      outputParseFailedIssue,
		outputValidationFailedIssue.Id(): outputValidationFailedIssue,
		fileArgNotSupportedIssue.Id():    fileArgNotSupportedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
