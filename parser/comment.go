// Package parser parses the option comment that may lead a query, and column type lists.
//
//nolint:govet
package parser

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer/stateful"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/unsaferow/errors"
)

const (
	OptionUnsafeRow  = "ur"
	OptionIndexPlain = "idx"
	OptionNode       = "node"
)

var (
	commentLex = stateful.MustSimple([]stateful.Rule{
		{Name: `String`, Pattern: `'[^']*'|"[^"]*"`, Action: nil},
		{Name: `Ident`, Pattern: `[a-zA-Z0-9_][a-zA-Z0-9_\-.:]*`, Action: nil},
		{Name: `Punct`, Pattern: `[,=]`, Action: nil},
		{Name: `Whitespace`, Pattern: `\s+`, Action: nil},
	})
	commentParser = participle.MustBuild(&commentAST{},
		participle.Lexer(commentLex),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
		participle.Unquote("String"),
	)
)

// CommentOptions are the options of a leading /* ... */ comment.
type CommentOptions struct {
	// UseUnsafeRowFormat asks for results in the UnsafeRow format.
	UseUnsafeRowFormat bool
	// UseIndexInPlainOutput asks for index usage in plain text output.
	UseIndexInPlainOutput bool
	// TargetNodes are the node=<id> options in the order given. Duplicates are kept.
	TargetNodes []string
	// Query is the text following the comment.
	Query string
}

type commentAST struct {
	Options []*commentOption `parser:"( @@ ( \",\" @@ )* \",\"? )?"`
}

type commentOption struct {
	Name  string  `parser:"@Ident"`
	Value *string `parser:"( \"=\" @( Ident | String ) )?"`
}

// ParseComment extracts the options of the comment leading sql, for example
// "/* ur,idx,node=3 */ select * from t". Both "a,b" and the trailing comma form "a,b,"
// are accepted. A query without a leading comment has no options. Unknown options are
// an error unless ignoreUnknown is set.
func ParseComment(sql string, ignoreUnknown bool) (*CommentOptions, error) {
	trimmed := strings.TrimLeft(sql, " \t\r\n")
	if !strings.HasPrefix(trimmed, "/*") {
		return &CommentOptions{Query: sql}, nil
	}
	end := strings.Index(trimmed[2:], "*/")
	if end < 0 {
		return nil, errors.WithStack(errors.NewInvalidCommentError("comment is not terminated"))
	}
	body := trimmed[2 : end+2]
	opts := &CommentOptions{Query: strings.TrimLeft(trimmed[end+4:], " \t\r\n")}

	if strings.TrimSpace(body) == "" {
		return opts, nil
	}
	ast := &commentAST{}
	if err := commentParser.ParseString("", body, ast); err != nil {
		return nil, errors.WithStack(errors.NewInvalidCommentError(err.Error()))
	}
	for _, option := range ast.Options {
		name := strings.ToLower(option.Name)
		switch name {
		case OptionUnsafeRow, OptionIndexPlain:
			if option.Value != nil {
				return nil, errors.WithStack(errors.NewInvalidCommentError(fmt.Sprintf("option %s does not take a value", name)))
			}
			if name == OptionUnsafeRow {
				opts.UseUnsafeRowFormat = true
			} else {
				opts.UseIndexInPlainOutput = true
			}
		case OptionNode:
			if option.Value == nil || *option.Value == "" {
				return nil, errors.WithStack(errors.NewInvalidCommentError("option node requires a node id"))
			}
			opts.TargetNodes = append(opts.TargetNodes, *option.Value)
		default:
			if !ignoreUnknown {
				return nil, errors.WithStack(errors.NewUnknownCommentOptionError(option.Name))
			}
			log.Debugf("ignoring unknown sql comment option %s", option.Name)
		}
	}
	return opts, nil
}
