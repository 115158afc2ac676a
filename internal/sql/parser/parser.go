package parser

import (
	"fmt"
	"strconv"

	"github.com/ItsPalash13/AdvanceDB/internal/sql/lexer"
)

// Parser is a recursive-descent parser over a token stream.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse tokenizes and parses a single SQL statement. A trailing
// semicolon is allowed; trailing garbage is an error.
func Parse(input string) (Statement, error) {
	p := &Parser{tokens: lexer.New(input).Tokenize()}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	if p.current().Type == lexer.TokenSemicolon {
		p.advance()
	}
	if p.current().Type != lexer.TokenEOF {
		return nil, p.errorf("unexpected input after statement: %q", p.current().Literal)
	}
	return stmt, nil
}

func (p *Parser) current() lexer.Token { return p.tokens[p.pos] }

func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	if p.current().Type != tt {
		return lexer.Token{}, p.errorf("expected %s, got %q", what, p.current().Literal)
	}
	return p.advance(), nil
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("parse error at position %d: %s", p.current().Pos, fmt.Sprintf(format, args...))
}

func (p *Parser) parseStatement() (Statement, error) {
	switch p.current().Type {
	case lexer.TokenSelect:
		return p.parseSelect()
	case lexer.TokenCreate:
		return p.parseCreateTable()
	case lexer.TokenInsert:
		return p.parseInsert()
	case lexer.TokenUpdate:
		return p.parseUpdate()
	case lexer.TokenDelete:
		return p.parseDelete()
	default:
		return nil, p.errorf("expected a statement, got %q", p.current().Literal)
	}
}

func (p *Parser) parseSelect() (*SelectStatement, error) {
	p.advance() // SELECT

	stmt := &SelectStatement{Limit: -1}

	for {
		if p.current().Type == lexer.TokenStar {
			p.advance()
			stmt.Columns = append(stmt.Columns, &Star{})
		} else {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, expr)
		}
		if p.current().Type != lexer.TokenComma {
			break
		}
		p.advance()
	}

	if _, err := p.expect(lexer.TokenFrom, "FROM"); err != nil {
		return nil, err
	}
	table, err := p.expect(lexer.TokenIdent, "table name")
	if err != nil {
		return nil, err
	}
	stmt.Table = table.Literal

	if p.current().Type == lexer.TokenWhere {
		p.advance()
		if stmt.Where, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}

	if p.current().Type == lexer.TokenOrder {
		p.advance()
		if _, err := p.expect(lexer.TokenBy, "BY"); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			key := OrderKey{Expr: expr}
			if p.current().Type == lexer.TokenAsc {
				p.advance()
			} else if p.current().Type == lexer.TokenDesc {
				p.advance()
				key.Desc = true
			}
			stmt.OrderBy = append(stmt.OrderBy, key)
			if p.current().Type != lexer.TokenComma {
				break
			}
			p.advance()
		}
	}

	if p.current().Type == lexer.TokenLimit {
		p.advance()
		tok, err := p.expect(lexer.TokenNumber, "LIMIT count")
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(tok.Literal)
		if err != nil || n < 0 {
			return nil, p.errorf("invalid LIMIT %q", tok.Literal)
		}
		stmt.Limit = n
	}

	return stmt, nil
}

func (p *Parser) parseCreateTable() (*CreateTableStatement, error) {
	p.advance() // CREATE
	if _, err := p.expect(lexer.TokenTable, "TABLE"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TokenIdent, "table name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenLParen, "("); err != nil {
		return nil, err
	}

	stmt := &CreateTableStatement{Table: name.Literal}
	for {
		col, err := p.parseColumnDefinition()
		if err != nil {
			return nil, err
		}
		stmt.Columns = append(stmt.Columns, col)
		if p.current().Type == lexer.TokenComma {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.TokenRParen, ")"); err != nil {
		return nil, err
	}
	if len(stmt.Columns) == 0 {
		return nil, p.errorf("CREATE TABLE needs at least one column")
	}
	return stmt, nil
}

func (p *Parser) parseColumnDefinition() (ColumnDefinition, error) {
	var col ColumnDefinition

	name, err := p.expect(lexer.TokenIdent, "column name")
	if err != nil {
		return col, err
	}
	col.Name = name.Literal

	switch p.current().Type {
	case lexer.TokenTypeInteger:
		col.Type = TypeInteger
	case lexer.TokenTypeReal:
		col.Type = TypeReal
	case lexer.TokenTypeText:
		col.Type = TypeText
	case lexer.TokenTypeBoolean:
		col.Type = TypeBoolean
	default:
		return col, p.errorf("expected a column type, got %q", p.current().Literal)
	}
	p.advance()

	for {
		switch p.current().Type {
		case lexer.TokenPrimary:
			p.advance()
			if _, err := p.expect(lexer.TokenKey, "KEY"); err != nil {
				return col, err
			}
			col.PrimaryKey = true
			col.NotNull = true
		case lexer.TokenNot:
			p.advance()
			if _, err := p.expect(lexer.TokenNull, "NULL"); err != nil {
				return col, err
			}
			col.NotNull = true
		default:
			return col, nil
		}
	}
}

func (p *Parser) parseInsert() (*InsertStatement, error) {
	p.advance() // INSERT
	if _, err := p.expect(lexer.TokenInto, "INTO"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TokenIdent, "table name")
	if err != nil {
		return nil, err
	}

	stmt := &InsertStatement{Table: name.Literal}

	if p.current().Type == lexer.TokenLParen {
		p.advance()
		for {
			col, err := p.expect(lexer.TokenIdent, "column name")
			if err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, col.Literal)
			if p.current().Type == lexer.TokenComma {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.TokenRParen, ")"); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(lexer.TokenValues, "VALUES"); err != nil {
		return nil, err
	}

	for {
		if _, err := p.expect(lexer.TokenLParen, "("); err != nil {
			return nil, err
		}
		var row []Expression
		for {
			expr, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			row = append(row, expr)
			if p.current().Type == lexer.TokenComma {
				p.advance()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.TokenRParen, ")"); err != nil {
			return nil, err
		}
		stmt.Rows = append(stmt.Rows, row)
		if p.current().Type == lexer.TokenComma {
			p.advance()
			continue
		}
		break
	}

	return stmt, nil
}

func (p *Parser) parseUpdate() (*UpdateStatement, error) {
	p.advance() // UPDATE
	name, err := p.expect(lexer.TokenIdent, "table name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenSet, "SET"); err != nil {
		return nil, err
	}

	stmt := &UpdateStatement{Table: name.Literal}
	for {
		col, err := p.expect(lexer.TokenIdent, "column name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenEq, "="); err != nil {
			return nil, err
		}
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Set = append(stmt.Set, Assignment{Column: col.Literal, Value: value})
		if p.current().Type == lexer.TokenComma {
			p.advance()
			continue
		}
		break
	}

	if p.current().Type == lexer.TokenWhere {
		p.advance()
		if stmt.Where, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseDelete() (*DeleteStatement, error) {
	p.advance() // DELETE
	if _, err := p.expect(lexer.TokenFrom, "FROM"); err != nil {
		return nil, err
	}
	name, err := p.expect(lexer.TokenIdent, "table name")
	if err != nil {
		return nil, err
	}

	stmt := &DeleteStatement{Table: name.Literal}
	if p.current().Type == lexer.TokenWhere {
		p.advance()
		var err error
		if stmt.Where, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// Expression parsing, lowest precedence first:
// OR < AND < NOT < comparison < additive < multiplicative < unary.

func (p *Parser) parseExpression() (Expression, error) {
	return p.parseOr()
}

func (p *Parser) parseOr() (Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Type == lexer.TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expression, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.current().Type == lexer.TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expression, error) {
	if p.current().Type == lexer.TokenNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Op: "NOT", Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[lexer.TokenType]string{
	lexer.TokenEq:    "=",
	lexer.TokenNotEq: "<>",
	lexer.TokenLt:    "<",
	lexer.TokenLtEq:  "<=",
	lexer.TokenGt:    ">",
	lexer.TokenGtEq:  ">=",
}

func (p *Parser) parseComparison() (Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if op, ok := comparisonOps[p.current().Type]; ok {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.current().Type {
		case lexer.TokenPlus:
			op = "+"
		case lexer.TokenMinus:
			op = "-"
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() (Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.current().Type {
		case lexer.TokenStar:
			op = "*"
		case lexer.TokenSlash:
			op = "/"
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpression{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (Expression, error) {
	if p.current().Type == lexer.TokenMinus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{Op: "-", Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expression, error) {
	switch tok := p.current(); tok.Type {
	case lexer.TokenNumber:
		p.advance()
		if n, err := strconv.ParseInt(tok.Literal, 10, 64); err == nil {
			return &IntegerLiteral{Value: n}, nil
		}
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", tok.Literal)
		}
		return &RealLiteral{Value: f}, nil
	case lexer.TokenString:
		p.advance()
		return &StringLiteral{Value: tok.Literal}, nil
	case lexer.TokenTrue:
		p.advance()
		return &BooleanLiteral{Value: true}, nil
	case lexer.TokenFalse:
		p.advance()
		return &BooleanLiteral{Value: false}, nil
	case lexer.TokenNull:
		p.advance()
		return &NullLiteral{}, nil
	case lexer.TokenIdent:
		p.advance()
		return &Identifier{Name: tok.Literal}, nil
	case lexer.TokenLParen:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenRParen, ")"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, p.errorf("expected an expression, got %q", tok.Literal)
	}
}
