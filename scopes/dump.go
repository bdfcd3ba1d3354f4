package scopes

import (
	"fmt"
	"io"
	"strings"

	"github.com/mfkiwl/xocfe/types"
)

// Dump renders the scope tree, leaves last, in the human-readable form the
// driver prints after a run.
func Dump(w io.Writer, sc *Scope, indent int) {
	pad := strings.Repeat("  ", indent)
	fmt.Fprintf(w, "%sSCOPE(id:%d, level:%d)\n", pad, sc.ID, sc.Level)

	for _, e := range sc.Enums {
		name := ""
		if e.Name != nil {
			name = e.Name.Name
		}
		fmt.Fprintf(w, "%s  ENUM %s {", pad, name)
		for i, c := range e.Consts {
			if i > 0 {
				fmt.Fprint(w, ", ")
			}
			fmt.Fprintf(w, "%s=%d", c.Name.Name, c.Value)
		}
		fmt.Fprintln(w, "}")
	}
	for _, a := range sc.Structs {
		dumpAggr(w, pad, "STRUCT", a)
	}
	for _, a := range sc.Unions {
		dumpAggr(w, pad, "UNION", a)
	}
	for _, td := range sc.Typedefs {
		fmt.Fprintf(w, "%s  TYPEDEF %s\n", pad, strings.TrimSpace(types.FormatDecl(td)))
	}
	for _, d := range sc.Decls {
		if d.IsTypedef() {
			continue
		}
		fmt.Fprintf(w, "%s  DECL %s", pad, strings.TrimSpace(types.FormatDecl(d)))
		if !d.IsFunDecl() {
			fmt.Fprintf(w, " size:%d", types.DeclSize(d))
		}
		fmt.Fprintln(w)
	}
	for _, sub := range sc.Subs {
		Dump(w, sub, indent+1)
	}
}

func dumpAggr(w io.Writer, pad string, kw string, a *types.Aggr) {
	tag := ""
	if a.Tag != nil {
		tag = a.Tag.Name
	}
	if !a.Complete {
		fmt.Fprintf(w, "%s  %s %s <incomplete>\n", pad, kw, tag)
		return
	}
	fmt.Fprintf(w, "%s  %s %s size:%d {\n", pad, kw, tag, types.AggrSize(a))
	for _, f := range a.Fields {
		fmt.Fprintf(w, "%s    %s ofst:%d", pad, strings.TrimSpace(types.FormatDecl(f)), f.FieldOffset)
		if f.IsBitField() {
			fmt.Fprintf(w, " bitofst:%d", f.BitOffset)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%s  }\n", pad)
}
