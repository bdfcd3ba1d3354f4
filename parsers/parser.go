package parsers

import (
	"strconv"

	"github.com/mfkiwl/xocfe/conf"
	"github.com/mfkiwl/xocfe/diag"
	"github.com/mfkiwl/xocfe/scopes"
	"github.com/mfkiwl/xocfe/symtab"
	tok "github.com/mfkiwl/xocfe/tokenizers"
	"github.com/mfkiwl/xocfe/types"
)

// Parser owns the token stream and the ambient parsing state: the current
// scope handle, the string table and the pragma alignment in effect.
type Parser struct {
	tkz     *tok.Tokenizer
	tracker *diag.Tracker
	strtab  *symtab.Strtab
	scope   *scopes.Stack
	// enum constants resolve through a scoped table mirroring scope nesting
	enumConsts *symtab.Scoped[*types.EnumConst]
	target     conf.Target

	cur tok.Token
	// pragma align value sampled at the start of each declaration
	pragmaAlign int
}

func New(tkz *tok.Tokenizer, tracker *diag.Tracker, target conf.Target) *Parser {
	return &Parser{
		tkz:        tkz,
		tracker:    tracker,
		strtab:     symtab.NewStrtab(),
		scope:      scopes.NewStack(),
		enumConsts: symtab.NewScoped[*types.EnumConst](),
		target:     target,
	}
}

func (p *Parser) next() {
	p.tkz.Advance()
	p.cur = p.tkz.LastToken()
}

func (p *Parser) lookahead() tok.Token {
	return p.tkz.Lookahead()
}

func (p *Parser) line() int {
	return p.cur.Line
}

// match consumes the expected token or reports "miss" and leaves the
// stream untouched.
func (p *Parser) match(kind string) bool {
	if p.cur.T != kind {
		p.tracker.Err(p.line(), "miss '%s'", kind)
		return false
	}
	p.next()
	return true
}

// consumeToSemi implements per-statement recovery: skip up to and
// including the next ';'.
func (p *Parser) consumeToSemi() {
	for p.cur.T != ";" && !p.cur.IsEOF() {
		p.next()
	}
	if p.cur.T == ";" {
		p.next()
	}
}

func (p *Parser) skipBalanced(open string, close string) {
	depth := 1
	for depth > 0 && !p.cur.IsEOF() {
		p.next()
		switch p.cur.T {
		case open:
			depth++
		case close:
			depth--
		}
	}
	if p.cur.T == close {
		p.next()
	}
}

// ParseTranslationUnit drives the whole parse and returns the global
// scope. The current-scope handle is restored to global between
// top-level declarations.
func (p *Parser) ParseTranslationUnit() *scopes.Scope {
	p.next()
	for !p.cur.IsEOF() && !p.tracker.TooManyErrors() {
		p.scope.ReturnToGlobal()
		if p.cur.T == "#" {
			p.parsePragma()
			continue
		}
		if p.cur.T == ";" {
			p.next()
			continue
		}
		p.parseDeclaration()
	}
	return p.scope.Global()
}

// Scopes exposes the scope stack for the later passes.
func (p *Parser) Scopes() *scopes.Stack {
	return p.scope
}

// parsePragma handles "#pragma align (N)" and "#pragma pack (N)"; the
// value takes effect for declarations that start after it.
func (p *Parser) parsePragma() {
	line := p.line()
	p.next()
	if p.cur.T != tok.ID || p.cur.V != "pragma" {
		p.tracker.Err(line, "unsupported preprocessing directive")
		p.next()
		return
	}
	p.next()
	if p.cur.T != tok.ID || (p.cur.V != "align" && p.cur.V != "pack") {
		p.tracker.Warn(line, "unknown pragma '%s' ignored", p.cur.V)
		p.next()
		if p.cur.T == "(" {
			p.skipBalanced("(", ")")
		}
		return
	}
	p.next()
	if !p.match("(") {
		return
	}
	if p.cur.T == ")" {
		// pack() resets to natural alignment
		p.pragmaAlign = 0
		p.next()
		return
	}
	if p.cur.T != tok.NUM {
		p.tracker.Err(line, "pragma alignment must be an integer")
		p.skipBalanced("(", ")")
		return
	}
	v, err := strconv.Atoi(p.cur.V)
	if err != nil || v < 0 {
		p.tracker.Err(line, "illegal alignment value '%s'", p.cur.V)
		v = 0
	}
	p.next()
	p.match(")")
	p.pragmaAlign = v
}
