package main

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/doc"
	"go/format"
	"go/token"
	"io"
	"regexp"
	"sort"
	"strings"
)

// apiRenderer emits the exported API of a Go package as GitHub-flavored
// Markdown. Symbols whose name matches ignore are omitted, which is how
// unstable and experimental identifiers stay out of published docs.
type apiRenderer struct {
	pkg     *doc.Package
	fileset *token.FileSet
	ignore  *regexp.Regexp
}

func (r *apiRenderer) ignored(name string) bool {
	return r.ignore != nil && r.ignore.MatchString(name)
}

func (r *apiRenderer) renderPackage(w io.Writer) {
	fmt.Fprintf(w, "# package %s\n\n", r.pkg.Name)
	if r.pkg.ImportPath != "" {
		fmt.Fprintf(w, "`import \"%s\"`\n\n", r.pkg.ImportPath)
	}
	if doc := r.docMarkdown(r.pkg.Doc); doc != "" {
		fmt.Fprintln(w, doc)
		fmt.Fprintln(w)
	}
	r.renderSummary(w)
	r.renderAPI(w)
}

// renderAPI emits only the declaration sections, without the package heading
// or doc comment. Token regions embed this form so the surrounding prose of
// the README stays hand-written.
func (r *apiRenderer) renderAPI(w io.Writer) {
	r.renderValuesSection(w, "Constants", r.pkg.Consts)
	r.renderValuesSection(w, "Variables", r.pkg.Vars)
	r.renderFuncsSection(w, "Functions", r.pkg.Funcs, "")
	for _, t := range r.pkg.Types {
		if r.ignored(t.Name) {
			continue
		}
		r.renderTypeDoc(w, t)
	}
}

func (r *apiRenderer) renderSummary(w io.Writer) {
	var entries []string
	for _, v := range r.pkg.Consts {
		if title := r.valueTitle(v); title != "" {
			entries = append(entries, bulletLine(title, r.summaryText(v.Doc)))
		}
	}
	for _, v := range r.pkg.Vars {
		if title := r.valueTitle(v); title != "" {
			entries = append(entries, bulletLine(title, r.summaryText(v.Doc)))
		}
	}
	for _, f := range r.pkg.Funcs {
		if r.ignored(f.Name) {
			continue
		}
		entries = append(entries, bulletLine(r.signature(f.Decl), r.summaryText(f.Doc)))
	}
	for _, t := range r.pkg.Types {
		if r.ignored(t.Name) {
			continue
		}
		entries = append(entries, bulletLine("type "+t.Name, r.summaryText(t.Doc)))
	}
	if len(entries) == 0 {
		return
	}
	sort.Strings(entries)
	for _, entry := range entries {
		fmt.Fprintln(w, entry)
	}
	fmt.Fprintln(w)
}

func (r *apiRenderer) renderTypeDoc(w io.Writer, t *doc.Type) {
	fmt.Fprintf(w, "## type %s\n\n", t.Name)
	r.writeCodeBlock(w, r.formatNode(t.Decl))
	if doc := r.docMarkdown(t.Doc); doc != "" {
		fmt.Fprintln(w, doc)
		fmt.Fprintln(w)
	}
	r.renderValuesSection(w, "Constants", t.Consts)
	r.renderValuesSection(w, "Variables", t.Vars)
	r.renderFuncsSection(w, "Functions returning "+t.Name, t.Funcs, "")
	r.renderFuncsSection(w, "Methods", t.Methods, t.Name)
}

func (r *apiRenderer) renderValuesSection(w io.Writer, title string, values []*doc.Value) {
	kept := values[:0:0]
	for _, v := range values {
		if r.valueTitle(v) == "" {
			continue
		}
		kept = append(kept, v)
	}
	if len(kept) == 0 {
		return
	}
	fmt.Fprintf(w, "### %s\n\n", title)
	for _, v := range kept {
		fmt.Fprintf(w, "#### %s\n\n", r.valueTitle(v))
		r.writeCodeBlock(w, r.formatNode(v.Decl))
		if doc := r.docMarkdown(v.Doc); doc != "" {
			fmt.Fprintln(w, doc)
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

func (r *apiRenderer) renderFuncsSection(w io.Writer, title string, funcs []*doc.Func, receiver string) {
	kept := funcs[:0:0]
	for _, f := range funcs {
		if r.ignored(f.Name) {
			continue
		}
		kept = append(kept, f)
	}
	if len(kept) == 0 {
		return
	}
	fmt.Fprintf(w, "### %s\n\n", title)
	for _, f := range kept {
		name := f.Name
		if receiver != "" {
			name = receiver + "." + f.Name
		}
		fmt.Fprintf(w, "#### %s\n\n", name)
		fmt.Fprintf(w, "```go\n%s\n```\n\n", r.signature(f.Decl))
		if doc := r.docMarkdown(f.Doc); doc != "" {
			fmt.Fprintln(w, doc)
			fmt.Fprintln(w)
		}
	}
	fmt.Fprintln(w)
}

func (r *apiRenderer) writeCodeBlock(w io.Writer, code string) {
	if code == "" {
		return
	}
	fmt.Fprintf(w, "```go\n%s\n```\n\n", strings.TrimSpace(code))
}

func (r *apiRenderer) formatNode(node ast.Node) string {
	if node == nil {
		return ""
	}
	var buf bytes.Buffer
	if err := format.Node(&buf, r.fileset, node); err != nil {
		return ""
	}
	return strings.TrimSpace(buf.String())
}

func (r *apiRenderer) signature(decl *ast.FuncDecl) string {
	if decl == nil || decl.Type == nil {
		return ""
	}
	var buf bytes.Buffer
	buf.WriteString("func ")
	if decl.Recv != nil {
		var recv bytes.Buffer
		_ = format.Node(&recv, r.fileset, decl.Recv)
		buf.WriteString("(")
		buf.WriteString(strings.TrimSpace(recv.String()))
		buf.WriteString(") ")
	}
	buf.WriteString(decl.Name.Name)
	var typ bytes.Buffer
	_ = format.Node(&typ, r.fileset, decl.Type)
	sig := typ.String()
	sig = strings.TrimPrefix(sig, "func")
	buf.WriteString(strings.TrimSpace(sig))
	return strings.TrimSpace(buf.String())
}

// valueTitle joins the non-ignored names of a const or var declaration. The
// whole declaration is dropped when every name is ignored.
func (r *apiRenderer) valueTitle(v *doc.Value) string {
	kept := v.Names[:0:0]
	for _, n := range v.Names {
		if r.ignored(n) {
			continue
		}
		kept = append(kept, n)
	}
	return strings.Join(kept, ", ")
}

func (r *apiRenderer) docMarkdown(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	return dedentMarkdown(trimmed)
}

func dedentMarkdown(src string) string {
	lines := strings.Split(src, "\n")
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := leadingWhitespace(line)
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return src
	}
	for i, line := range lines {
		if len(line) >= minIndent {
			lines[i] = line[minIndent:]
		}
	}
	return strings.Join(lines, "\n")
}

func leadingWhitespace(line string) int {
	count := 0
	for _, r := range line {
		if r == ' ' || r == '\t' {
			count++
			continue
		}
		break
	}
	return count
}

func (r *apiRenderer) summaryText(text string) string {
	md := r.docMarkdown(text)
	if md == "" {
		return ""
	}
	md = strings.ReplaceAll(md, "\n", " ")
	if idx := strings.Index(md, ". "); idx >= 0 {
		return strings.TrimSpace(md[:idx+1])
	}
	return strings.TrimSpace(md)
}

func bulletLine(signature, summary string) string {
	if summary == "" {
		return fmt.Sprintf("- `%s`", signature)
	}
	return fmt.Sprintf("- `%s` — %s", signature, summary)
}
