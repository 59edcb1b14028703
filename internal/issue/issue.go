// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

// Id identifies a catalog page.
type Id int

const (
	WorkspaceNotFoundId Id = iota + 1
	BuildToolNotFoundId
	BuildozerNotFoundId
	TargetDiscoveryFailedId
	PartialBuildId
	NoArtifactsId
	MalformedArtifactId
	ConfigLoadFailedId
	DependencyIssuesFoundId
	FixFailedId
)

type (
	// MarkdownMsg is catalog page content in Markdown.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is one catalog page.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

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

// Render renders the page with the named glamour style ("dark", "light",
// "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md += "\n- <" + string(link) + ">"
		}
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	workspaceNotFoundIssue = &Issue{
		id: WorkspaceNotFoundId,
		mdMsg: `
# No workspace root!

ccmeta needs the root of the Bazel workspace to build targets and to write
its artifacts.

## Things you can try:
- Run through Bazel, which sets BUILD_WORKSPACE_DIRECTORY:
~~~
$ bazel run @ccmeta//:refresh
~~~

- Or point at the workspace explicitly:
~~~
$ ccmeta refresh --workspace /path/to/workspace
~~~`,
		extLinks: []HttpLink{"https://bazel.build/docs/user-manual#run"},
	}

	buildToolNotFoundIssue = &Issue{
		id: BuildToolNotFoundId,
		mdMsg: `
# Build tool not found!

The configured build tool could not be started.

## Things you can try:
- Install Bazel or Bazelisk and make sure it is on your PATH
- Set the binary explicitly in your configuration:
~~~cue
bazel: binary: "bazelisk"
~~~`,
		extLinks: []HttpLink{"https://github.com/bazelbuild/bazelisk"},
	}

	buildozerNotFoundIssue = &Issue{
		id: BuildozerNotFoundId,
		mdMsg: `
# buildozer not found!

'ccmeta fix' edits BUILD files with buildozer.

## Things you can try:
- Install it:
~~~
$ go install github.com/bazelbuild/buildtools/buildozer@latest
~~~

- Preview the edits without buildozer:
~~~
$ ccmeta fix --dry-run
~~~`,
		extLinks: []HttpLink{"https://github.com/bazelbuild/buildtools/tree/main/buildozer"},
	}

	targetDiscoveryFailedIssue = &Issue{
		id: TargetDiscoveryFailedId,
		mdMsg: `
# Target discovery failed!

The query for C/C++ targets did not succeed, so there is nothing to audit.

## Things you can try:
- Check the target patterns in your configuration (default: //...)
- Run the query yourself to see the full error:
~~~
$ bazel cquery "kind('cc_.* rule', deps(//...))"
~~~`,
	}

	partialBuildIssue = &Issue{
		id: PartialBuildId,
		mdMsg: `
# Partial results

The build finished with errors. Targets that failed to build produced no
metadata and are missing from the report.

## Things you can try:
- Fix the build errors shown above and run 'ccmeta refresh' again
- Narrow the audited targets with bazel.target_patterns`,
	}

	noArtifactsIssue = &Issue{
		id: NoArtifactsId,
		mdMsg: `
# No metadata artifacts

The build reported no export or import records.

## Things you can try:
- Make sure the aspect label in bazel.aspect is correct
- Check that the targets are C/C++ rules`,
	}

	malformedArtifactIssue = &Issue{
		id: MalformedArtifactId,
		mdMsg: `
# Malformed metadata record!

An artifact did not have the expected shape, so no report was written.

Export records need **target** (string), **exports** (list) and
**alwaysused** (bool). Import records need **target** and **imports**.

## Things you can try:
- Regenerate the artifacts with 'ccmeta refresh'
- For hand-written inputs, check the field names and types`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or failed schema validation.

## Things you can try:
- Show the effective configuration:
~~~
$ ccmeta config show
~~~

- Recreate a default configuration file:
~~~
$ ccmeta config init
~~~`,
	}

	dependencyIssuesFoundIssue = &Issue{
		id: DependencyIssuesFoundId,
		mdMsg: `
# Dependency issues found

Some targets include headers from undeclared dependencies, declare
dependencies they never use, or include headers no declared dependency
provides.

## Things you can try:
- Apply the suggested edits:
~~~
$ ccmeta fix
~~~

- Preview them first:
~~~
$ ccmeta fix --dry-run
~~~`,
	}

	fixFailedIssue = &Issue{
		id: FixFailedId,
		mdMsg: `
# Failed to edit BUILD files!

buildozer rejected one of the edits. Edits before it were applied.

## Things you can try:
- Re-run with --dry-run and apply the failing command by hand
- Check that the target still exists and has a deps attribute`,
	}

	issues = map[Id]*Issue{
		workspaceNotFoundIssue.Id():     workspaceNotFoundIssue,
		buildToolNotFoundIssue.Id():     buildToolNotFoundIssue,
		buildozerNotFoundIssue.Id():     buildozerNotFoundIssue,
		targetDiscoveryFailedIssue.Id(): targetDiscoveryFailedIssue,
		partialBuildIssue.Id():          partialBuildIssue,
		noArtifactsIssue.Id():           noArtifactsIssue,
		malformedArtifactIssue.Id():     malformedArtifactIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		dependencyIssuesFoundIssue.Id(): dependencyIssuesFoundIssue,
		fixFailedIssue.Id():             fixFailedIssue,
	}
)

// Values returns every catalog page in Id order.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range slices.Sorted(maps.Keys(issues)) {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the page for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
