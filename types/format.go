package types

import (
	"fmt"
	"strings"
)

// FormatDecl renders a declaration as a space-separated token stream, e.g.
// "int * ( * p ) [ 30 ] ; ". The output round-trips through the parser up
// to whitespace.
func FormatDecl(d *Decl) string {
	var sb strings.Builder
	sb.WriteString(FormatSpec(d.Spec))
	dclr := formatChain(d.Dclr)
	if dclr != "" {
		sb.WriteString(" ")
		sb.WriteString(dclr)
	}
	sb.WriteString(" ; ")
	return sb.String()
}

func FormatTypeName(tn *TypeName) string {
	s := FormatSpec(tn.Spec)
	if dclr := formatChain(tn.Dclr); dclr != "" {
		s += " " + dclr
	}
	return s
}

func FormatSpec(ts *TypeSpec) string {
	parts := []string{}
	for _, sc := range []struct {
		flag Des
		kw   string
	}{
		{STOR_TYPEDEF, "typedef"},
		{STOR_EXTERN, "extern"},
		{STOR_STATIC, "static"},
		{STOR_AUTO, "auto"},
		{STOR_REGISTER, "register"},
		{STOR_INLINE, "inline"},
		{QUAL_CONST, "const"},
		{QUAL_VOLATILE, "volatile"},
		{QUAL_RESTRICT, "restrict"},
	} {
		if ts.Has(sc.flag) {
			parts = append(parts, sc.kw)
		}
	}
	parts = append(parts, baseKindName(ts))
	return strings.Join(parts, " ")
}

func baseKindName(ts *TypeSpec) string {
	if ts.Has(SPEC_STRUCT | SPEC_UNION) {
		kw := "struct"
		if ts.Has(SPEC_UNION) {
			kw = "union"
		}
		if ts.Aggr != nil && ts.Aggr.Tag != nil {
			return kw + " " + ts.Aggr.Tag.Name
		}
		return kw
	}
	if ts.Has(SPEC_ENUM) {
		if ts.Enum != nil && ts.Enum.Name != nil {
			return "enum " + ts.Enum.Name.Name
		}
		return "enum"
	}
	if ts.Has(SPEC_USER_TYPE) {
		if ts.UserType != nil {
			return ts.UserType.Name()
		}
		return "?"
	}

	parts := []string{}
	if ts.Has(SPEC_SIGNED) {
		parts = append(parts, "signed")
	}
	if ts.Has(SPEC_UNSIGNED) {
		parts = append(parts, "unsigned")
	}
	switch {
	case ts.Has(SPEC_VOID):
		parts = append(parts, "void")
	case ts.Has(SPEC_BOOL):
		parts = append(parts, "_Bool")
	case ts.Has(SPEC_CHAR):
		parts = append(parts, "char")
	case ts.Has(SPEC_LONGLONG):
		parts = append(parts, "long", "long")
		if ts.Has(SPEC_DOUBLE) {
			parts = append(parts, "double")
		} else if ts.Has(SPEC_INT) {
			parts = append(parts, "int")
		}
	case ts.Has(SPEC_SHORT):
		parts = append(parts, "short")
		if ts.Has(SPEC_INT) {
			parts = append(parts, "int")
		}
	case ts.Has(SPEC_LONG):
		parts = append(parts, "long")
		switch {
		case ts.Has(SPEC_DOUBLE):
			parts = append(parts, "double")
		case ts.Has(SPEC_FLOAT):
			parts = append(parts, "float")
		case ts.Has(SPEC_INT):
			parts = append(parts, "int")
		}
	case ts.Has(SPEC_FLOAT):
		parts = append(parts, "float")
	case ts.Has(SPEC_DOUBLE):
		parts = append(parts, "double")
	case ts.Has(SPEC_INT):
		parts = append(parts, "int")
	}
	if len(parts) == 0 {
		parts = append(parts, "int")
	}
	return strings.Join(parts, " ")
}

// formatChain prints the canonical chain back in C declarator syntax,
// reinserting parentheses recorded by the paren bit.
func formatChain(head *Dcl) string {
	if head == nil {
		return ""
	}
	s := ""
	open := false
	d := head
	if d.Kind == DCL_ID {
		if d.Sym != nil {
			s = d.Sym.Name
		}
		open = d.Paren
		d = d.Next
	}
	for ; d != nil; d = d.Next {
		switch d.Kind {
		case DCL_POINTER:
			q := formatQualifier(d.Qualifier)
			if q != "" {
				s = "* " + q + " " + s
			} else if s != "" {
				s = "* " + s
			} else {
				s = "*"
			}
			if d.Paren {
				open = true
			}
		case DCL_ARRAY:
			if open {
				s = "( " + s + " )"
				open = false
			}
			if d.DimVal > 0 {
				s = strings.TrimSpace(s) + fmt.Sprintf(" [ %d ]", d.DimVal)
			} else {
				s = strings.TrimSpace(s) + " [ ]"
			}
		case DCL_FUN:
			if open {
				s = "( " + s + " )"
				open = false
			}
			s = strings.TrimSpace(s) + " ( " + formatParams(d) + " )"
		case DCL_VARIADIC:
			s = "..."
		}
	}
	if open {
		s = "( " + s + " )"
	}
	return strings.TrimSpace(s)
}

func formatParams(fun *Dcl) string {
	parts := make([]string, 0, len(fun.Params))
	for _, p := range fun.Params {
		if p.IsVariadicMarker() {
			parts = append(parts, "...")
			continue
		}
		s := FormatSpec(p.Spec)
		if dclr := formatChain(p.Dclr); dclr != "" {
			s += " " + dclr
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, " , ")
}

func formatQualifier(q Des) string {
	parts := []string{}
	if q&QUAL_CONST != 0 {
		parts = append(parts, "const")
	}
	if q&QUAL_VOLATILE != 0 {
		parts = append(parts, "volatile")
	}
	if q&QUAL_RESTRICT != 0 {
		parts = append(parts, "restrict")
	}
	return strings.Join(parts, " ")
}
