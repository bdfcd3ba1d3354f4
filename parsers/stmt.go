package parsers

import (
	"github.com/mfkiwl/xocfe/ast"
	"github.com/mfkiwl/xocfe/scopes"
	tok "github.com/mfkiwl/xocfe/tokenizers"
)

// parseCompoundStmt fills sc with the declarations and statements of a
// brace-enclosed block. The scope was already pushed by the caller.
func (p *Parser) parseCompoundStmt(sc *scopes.Scope) {
	if !p.match("{") {
		return
	}
	for p.cur.T != "}" && !p.cur.IsEOF() && !p.tracker.TooManyErrors() {
		if p.isSpecStart(p.cur) {
			p.parseDeclaration()
			continue
		}
		if stmt := p.parseStatement(); stmt != nil {
			sc.AddStmt(stmt)
		}
	}
	if p.cur.T != "}" {
		p.tracker.Err(p.line(), "expected '}'")
		return
	}
	p.next()
}

func (p *Parser) parseStatement() ast.Node {
	switch p.cur.T {
	case ";":
		p.next()
		return nil
	case "{":
		li := p.li()
		sub := p.scope.Push(false)
		p.enumConsts.EnterScope()
		p.parseCompoundStmt(sub)
		p.enumConsts.LeaveScope()
		p.scope.Pop()
		return &ast.CompoundStatement{Scope: sub, LineInfo: li}
	case "if":
		return p.parseIf()
	case "while":
		return p.parseWhile()
	case "do":
		return p.parseDoWhile()
	case "for":
		return p.parseFor()
	case "switch":
		return p.parseSwitch()
	case "case":
		li := p.li()
		p.next()
		expr := p.parseConditionalExp()
		if _, err := evalConstInt(expr); err != nil {
			p.tracker.Err(li.LineNumber, "case label must be a constant")
		}
		p.match(":")
		return &ast.CaseStatement{Expr: expr, LineInfo: li}
	case "default":
		li := p.li()
		p.next()
		p.match(":")
		return &ast.DefaultStatement{LineInfo: li}
	case "break":
		li := p.li()
		p.next()
		p.match(";")
		return &ast.BreakStatement{LineInfo: li}
	case "continue":
		li := p.li()
		p.next()
		p.match(";")
		return &ast.ContinueStatement{LineInfo: li}
	case "return":
		li := p.li()
		p.next()
		var expr ast.Node
		if p.cur.T != ";" {
			expr = p.parseExp()
		}
		p.match(";")
		return &ast.ReturnStatement{Expr: expr, LineInfo: li}
	case "goto":
		li := p.li()
		p.next()
		if p.cur.T != tok.ID {
			p.tracker.Err(li.LineNumber, "expected label after 'goto'")
			p.consumeToSemi()
			return nil
		}
		name := p.cur.V
		p.next()
		p.match(";")
		if fn := p.scope.Cur().FuncScope(); fn != nil {
			fn.RefLabel(name, li.LineNumber)
		}
		return &ast.GotoStatement{Label: name, LineInfo: li}
	case tok.ID:
		if p.lookahead().T == ":" {
			li := p.li()
			name := p.cur.V
			p.next()
			p.next()
			fn := p.scope.Cur().FuncScope()
			if fn != nil {
				if _, dup := fn.FindLabel(name); dup {
					p.tracker.Err(li.LineNumber, "label '%s' already defined", name)
				} else {
					fn.DefineLabel(name, li.LineNumber)
				}
			}
			return &ast.LabelStatement{Name: name, LineInfo: li}
		}
	}

	li := p.li()
	expr := p.parseExp()
	if !p.match(";") {
		p.consumeToSemi()
	}
	return &ast.ExpressionStatement{Expr: expr, LineInfo: li}
}

func (p *Parser) parseIf() ast.Node {
	li := p.li()
	p.next()
	p.match("(")
	cond := p.parseExp()
	p.match(")")
	then := p.parseStatement()
	var els ast.Node
	if p.cur.T == "else" {
		p.next()
		els = p.parseStatement()
	}
	return &ast.IfStatement{Cond: cond, Then: then, Else: els, LineInfo: li}
}

func (p *Parser) parseWhile() ast.Node {
	li := p.li()
	p.next()
	p.match("(")
	cond := p.parseExp()
	p.match(")")
	body := p.parseStatement()
	return &ast.WhileStatement{Cond: cond, Body: body, LineInfo: li}
}

func (p *Parser) parseDoWhile() ast.Node {
	li := p.li()
	p.next()
	body := p.parseStatement()
	if p.cur.T != "while" {
		p.tracker.Err(p.line(), "miss 'while' in do-while")
		return body
	}
	p.next()
	p.match("(")
	cond := p.parseExp()
	p.match(")")
	p.match(";")
	return &ast.DoWhileStatement{Body: body, Cond: cond, LineInfo: li}
}

func (p *Parser) parseFor() ast.Node {
	li := p.li()
	p.next()
	p.match("(")
	var init, cond, post ast.Node
	if p.cur.T != ";" {
		init = p.parseExp()
	}
	p.match(";")
	if p.cur.T != ";" {
		cond = p.parseExp()
	}
	p.match(";")
	if p.cur.T != ")" {
		post = p.parseExp()
	}
	p.match(")")
	body := p.parseStatement()
	return &ast.ForStatement{Init: init, Cond: cond, Post: post, Body: body, LineInfo: li}
}

func (p *Parser) parseSwitch() ast.Node {
	li := p.li()
	p.next()
	p.match("(")
	cond := p.parseExp()
	p.match(")")
	body := p.parseStatement()
	return &ast.SwitchStatement{Cond: cond, Body: body, LineInfo: li}
}
