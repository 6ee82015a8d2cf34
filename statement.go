package sqlorm

import (
	"fmt"

	"github.com/mitranim/sqlp"
)

/*
Output of every terminal builder call: the SQL text and the ordered args. The
text contains exactly one `?` per arg, in matching order. In literal mode
`.Args` is empty and the text is ready to execute as-is.
*/
type Statement struct {
	Text string
	Args []any
}

/*
True if the statement has no text. Returned by `(*Builder).Build` when no
operation was selected; callers must check for it before executing.
*/
func (self Statement) IsEmpty() bool { return self.Text == `` }

// Implement `fmt.Stringer`.
func (self Statement) String() string { return self.Text }

/*
Verifies that the count of `?` placeholders outside of quoted text matches
the count of args, and that the text has no Postgres-style ordinal or named
parameters. Also catches literal-mode text that can't be tokenized, which
happens when an unescaped value contains a double quote.
*/
func (self Statement) Check() (err error) {
	defer rec(&err)

	count := 0
	tokenizer := sqlp.Tokenizer{Source: self.Text}

	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		switch node := node.(type) {
		case sqlp.NodeOrdinalParam, sqlp.NodeNamedParam:
			return ErrArgCountMismatch.while(`checking statement`).because(
				fmt.Errorf(`unexpected parameter %q, only "?" is supported`, nodeText(node)),
			)
		default:
			count += countPlaceholders(nodeText(node))
		}
	}

	if count != len(self.Args) {
		return ErrArgCountMismatch.while(`checking statement`).because(
			fmt.Errorf(`found %d placeholders for %d args in %q`, count, len(self.Args), self.Text),
		)
	}
	return nil
}

func nodeText(node sqlp.Node) string {
	var buf []byte
	node.Append(&buf)
	return string(buf)
}

// Counts `?` outside of quoted runs and comments.
func countPlaceholders(text string) (count int) {
	var quote byte
	for ind := 0; ind < len(text); ind++ {
		char := text[ind]
		switch {
		case quote != 0:
			if char == quote {
				quote = 0
			}
		case char == '"' || char == '\'' || char == '`':
			quote = char
		case char == '-' && ind+1 < len(text) && text[ind+1] == '-':
			return
		case char == '?':
			count++
		}
	}
	return
}

func rec(ptr *error) {
	val := recover()
	if val == nil {
		return
	}

	err, _ := val.(error)
	if err != nil {
		*ptr = ErrInvalidInput.while(`tokenizing statement`).because(err)
		return
	}

	panic(val)
}
