package ast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// kinds returns the token types with the trailing EOF marker dropped.
func kinds(toks []Token) []TokenType {
	if n := len(toks); n > 0 && toks[n-1].Type == TokEOF {
		toks = toks[:n-1]
	}
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestTokenizeBasicSelect(t *testing.T) {
	toks, err := Tokenize("SELECT name FROM users WHERE age >= 21")
	require.NoError(t, err)
	require.Equal(t, []TokenType{
		TokKeyword, TokIdent, TokKeyword, TokIdent, TokKeyword, TokIdent, TokOp, TokNumber,
	}, kinds(toks))
	require.Equal(t, "SELECT", toks[0].Upper)
	require.Equal(t, ">=", toks[6].Text)
}

func TestTokenizeKeywordsCaseInsensitive(t *testing.T) {
	toks, err := Tokenize("select FROM sElEcT")
	require.NoError(t, err)
	for _, kind := range kinds(toks) {
		require.Equal(t, TokKeyword, kind)
	}
	require.Equal(t, "select", toks[0].Text)
	require.Equal(t, "SELECT", toks[0].Upper)
}

func TestTokenizeQuotedIdentifierPreservesCaseAndSpaces(t *testing.T) {
	toks, err := Tokenize(`SELECT "Column With Spaces" FROM t`)
	require.NoError(t, err)
	require.Equal(t, TokQuotedIdent, toks[1].Type)
	require.Equal(t, "Column With Spaces", toks[1].Text)
}

func TestTokenizeStringLiteralDoubledQuoteEscape(t *testing.T) {
	toks, err := Tokenize("SELECT 'it''s'")
	require.NoError(t, err)
	require.Equal(t, TokString, toks[1].Type)
	require.Equal(t, "it's", toks[1].Text)
}

func TestTokenizeNumbers(t *testing.T) {
	toks, err := Tokenize("SELECT 42, 3.14")
	require.NoError(t, err)
	require.Equal(t, TokNumber, toks[1].Type)
	require.Equal(t, "42", toks[1].Text)
	require.Equal(t, TokNumber, toks[3].Type)
	require.Equal(t, "3.14", toks[3].Text)
}

func TestTokenizeSkipsComments(t *testing.T) {
	toks, err := Tokenize("SELECT 1 -- trailing comment\n, 2 /* block\ncomment */ , 3")
	require.NoError(t, err)
	var numbers []string
	for _, tok := range toks {
		if tok.Type == TokNumber {
			numbers = append(numbers, tok.Text)
		}
	}
	require.Equal(t, []string{"1", "2", "3"}, numbers)
}

func TestTokenizePositionsAreOneBased(t *testing.T) {
	toks, err := Tokenize("SELECT a")
	require.NoError(t, err)
	require.Equal(t, 1, toks[0].Pos)
	require.Equal(t, 8, toks[1].Pos)
}

func TestTokenizeAngleBracketsFoldToNotEqual(t *testing.T) {
	toks, err := Tokenize("a <> b")
	require.NoError(t, err)
	require.Equal(t, TokOp, toks[1].Type)
	require.Equal(t, "!=", toks[1].Text)
}

func TestTokenizeUnterminatedStringErrors(t *testing.T) {
	_, err := Tokenize("SELECT 'oops")
	require.Error(t, err)
}
