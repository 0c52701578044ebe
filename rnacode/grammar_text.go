package rnacode

import (
	"bufio"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseRule parses a single rule spelling such as "S → L S" or "L -> <G|(> S <C|)>".
// Alternatives separated by "|" are not allowed; use ParseRules for those.
func ParseRule(line string) (*Rule, error) {
	rules, err := parseLine(line)
	if err != nil {
		return nil, err
	}
	if len(rules) != 1 {
		return nil, errorf(CodeGrammarInvalid, "expected a single rule in %q", line)
	}
	return rules[0], nil
}

// ParseRules parses one rule per line. Blank lines and lines starting with '#'
// are ignored, and a line may list alternatives separated by "|".
func ParseRules(text string) ([]*Rule, error) {
	var rules []*Rule
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed, err := parseLine(line)
		if err != nil {
			if cerr, ok := IsCodingError(err); ok {
				return nil, errorf(cerr.Code, "line %d: %s", lineNo, cerr.Message)
			}
			return nil, err
		}
		rules = append(rules, parsed...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}

// ParseGrammar parses rules with ParseRules and builds a grammar whose start
// symbol is the left side of the first rule.
func ParseGrammar(name, text string) (*Grammar, error) {
	rules, err := ParseRules(text)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, errorf(CodeGrammarInvalid, "grammar %q has no rules", name)
	}
	return NewGrammarBuilder(name, rules[0].Left).AddRules(rules...).Build()
}

func parseLine(line string) ([]*Rule, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || (fields[1] != "→" && fields[1] != "->") {
		return nil, errorf(CodeGrammarInvalid, "malformed rule %q", line)
	}
	left, err := parseCategory(fields[0])
	if err != nil {
		return nil, err
	}
	if !left.IsNonTerminal() {
		return nil, errorf(CodeGrammarInvalid, "left side of %q is not a nonterminal", line)
	}

	var rules []*Rule
	var right []Category
	flush := func() error {
		if len(right) == 0 {
			return errorf(CodeGrammarInvalid, "empty alternative in %q", line)
		}
		rules = append(rules, NewRule(left.NonTerminal, right...))
		right = nil
		return nil
	}
	for _, tok := range fields[2:] {
		if tok == "|" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		c, err := parseCategory(tok)
		if err != nil {
			return nil, err
		}
		right = append(right, c)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return rules, nil
}

func parseCategory(tok string) (Category, error) {
	// <B|m>
	if len(tok) == 5 && tok[0] == '<' && tok[2] == '|' && tok[4] == '>' {
		return T(PairTerminal(tok[1], tok[3])), nil
	}
	r, size := utf8.DecodeRuneInString(tok)
	if size == len(tok) && r < utf8.RuneSelf && !unicode.IsUpper(r) && !unicode.IsSpace(r) {
		return T(CharTerminal(tok[0])), nil
	}
	if unicode.IsUpper(r) {
		return NT(NonTerminal(tok)), nil
	}
	return Category{}, errorf(CodeGrammarInvalid, "unrecognized symbol %q", tok)
}
