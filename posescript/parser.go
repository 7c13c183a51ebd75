package posescript

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

const (
	TOKEN_COMMAND = iota
	TOKEN_LABEL
	TOKEN_DEGREES
	TOKEN_NUMBER
	TOKEN_NEWLINE
	TOKEN_COMMENT
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[a-z]+`), getToken(TOKEN_COMMAND))
	lexer.Add([]byte(`\$[a-zA-Z_][a-zA-Z0-9_]*`), getToken(TOKEN_LABEL))
	lexer.Add([]byte(`[\+\-]?[0-9]*\.?[0-9]+deg`), getToken(TOKEN_DEGREES))
	lexer.Add([]byte(`[\+\-]?[0-9]*\.?[0-9]+`), getToken(TOKEN_NUMBER))
	lexer.Add([]byte(`(\n|\r|\n\r)+`), getToken(TOKEN_NEWLINE))
	lexer.Add([]byte(`//[^\n]*`), getToken(TOKEN_COMMENT))
	lexer.Add([]byte(`[ \t]+`), skip)
	if err := lexer.Compile(); err != nil {
		panic(err)
	}
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

// Parse reads one command per line:
//
//	roll   <bone> <angle>
//	rotate <bone> <angle> <ax> <ay> <az>
//	reset  [bone]
//
// where <bone> is a bone id or $name and angles are radians or NNdeg.
func Parse(text []byte) ([]*Command, error) {
	scanner, err := lexer.Scanner(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	result := make([]*Command, 0, 16)

	var current *Command
	finish := func() error {
		if current == nil {
			return nil
		}
		if err := current.validate(); err != nil {
			return err
		}
		result = append(result, current)
		current = nil
		return nil
	}

	for Itok, err, eos := scanner.Next(); !eos; Itok, err, eos = scanner.Next() {
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := Itok.(*lexmachine.Token)

		switch tok.Type {
		case TOKEN_COMMAND:
			if current != nil {
				return nil, errors.Errorf("Multiple commands on line %v (%q)", tok.StartLine, tok.Lexeme)
			}
			op, ok := opByName[string(tok.Lexeme)]
			if !ok {
				return nil, errors.Errorf("Unknown command on line %v (%q)", tok.StartLine, tok.Lexeme)
			}
			current = &Command{Op: op, Line: tok.StartLine}
		case TOKEN_LABEL:
			if current == nil {
				return nil, errors.Errorf("Missed command on line %v (%q)", tok.StartLine, tok.Lexeme)
			}
			if current.Bone.set {
				return nil, errors.Errorf("Bone already given on line %v (%q)", tok.StartLine, tok.Lexeme)
			}
			current.Bone = BoneRef{Name: string(tok.Lexeme[1:]), set: true}
		case TOKEN_NUMBER, TOKEN_DEGREES:
			if current == nil {
				return nil, errors.Errorf("Missed command on line %v (%q)", tok.StartLine, tok.Lexeme)
			}
			if !current.Bone.set && tok.Type == TOKEN_NUMBER {
				id, err := strconv.Atoi(string(tok.Lexeme))
				if err != nil {
					return nil, errors.Errorf("Bone id must be integer on line %v (%q)", tok.StartLine, tok.Lexeme)
				}
				current.Bone = BoneRef{Id: id, set: true}
				continue
			}
			value, err := parseAngle(string(tok.Lexeme), tok.Type == TOKEN_DEGREES)
			if err != nil {
				return nil, errors.Errorf("Unknown number format on line %v (%q)", tok.StartLine, tok.Lexeme)
			}
			current.Args = append(current.Args, value)
		case TOKEN_NEWLINE:
			if err := finish(); err != nil {
				return nil, err
			}
		case TOKEN_COMMENT:
			if current != nil {
				current.Comment = strings.TrimSpace(string(tok.Lexeme[2:]))
			}
		}
	}
	if err := finish(); err != nil {
		return nil, err
	}

	return result, nil
}

func parseAngle(s string, degrees bool) (float64, error) {
	if degrees {
		s = strings.TrimSuffix(s, "deg")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if degrees {
		v = v * math.Pi / 180
	}
	return v, nil
}
