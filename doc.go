// # docsync
//
// `docsync` keeps the generated API reference sections of Markdown docs in
// sync with their source. Doc files mark the generated region with token
// comments and `docsync` re-renders everything between them:
//
//	<!-- START TOKEN(Autogenerated API docs|src/index.js) -->
//	...autogenerated, do not edit by hand...
//	<!-- END TOKEN(Autogenerated API docs) -->
//
// The token payload is `name|path`. The path is the source the docs are
// rendered from, resolved relative to the doc file's own directory, and
// defaults to the conventional `src/index.js` entry point when omitted. One
// doc file may carry any number of tokens; they are processed in the order
// they appear in the file.
//
// ## Discovery
//
// Run from the repository root, `docsync` matches every package README
// (`packages/*/README.md`) and every data reference doc
// (`docs/reference-guides/data/*.md`). Files without a START TOKEN marker are
// skipped, as are files that cannot be read.
//
// Positional arguments narrow the run. Each argument is mapped to a package:
// paths under `packages/<name>/` implicate `<name>`, and data doc filenames
// map back through the `data-core-<name>.md` convention (the core package's
// own doc being `data-core-data.md`). Only the implicated packages' README
// and data doc are then matched, which keeps pre-commit runs fast:
//
//	docsync packages/block-editor/src/store/actions.js
//
// ## Substitution
//
// For every token the configured generator is invoked as a child process:
//
//	<generator> <source> --output <doc> --to-token --use-token <name> --ignore <pattern>
//
// The generator rewrites the doc file in place, so the tokens of one file run
// strictly in sequence while distinct doc files are updated concurrently. A
// failed invocation abandons the remaining tokens of that file only; the run
// exits non-zero after all other files finish.
//
// ## Built-in generator
//
// `docsync docgen` implements the generator contract for Go sources: it loads
// the package at the source path, renders its exported API as GitHub-flavored
// Markdown, and splices it into the token region (or writes the whole
// document without `--to-token`). Symbols matching the `--ignore` pattern
// (default `unstable|experimental`, case-insensitive) are left out of the
// output. Repositories documented by another toolchain configure their own
// generator in `docsync.toml`:
//
//	generator = ["node", "bin/docgen.js"]
//	ignore = "unstable|experimental"
//
// ## Watch mode
//
// `docsync --watch` stays running after the initial pass, watching the
// packages tree and the data docs directory. Changes are debounced, mapped to
// the implicated packages, and re-run with the same narrowing rules as the
// positional-argument form.
package main
