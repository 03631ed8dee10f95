package parser

import (
	"testing"

	"github.com/alecthomas/repr"
	"github.com/squareup/unsaferow/errors"
	"github.com/stretchr/testify/require"
)

func TestParseComment(t *testing.T) {
	tests := []struct {
		name     string
		sql      string
		expected *CommentOptions
	}{
		{"NoComment", "select * from t", &CommentOptions{Query: "select * from t"}},
		{"TrailingComma", "/*ur,idx,*/select 1", &CommentOptions{
			UseUnsafeRowFormat: true, UseIndexInPlainOutput: true, Query: "select 1"}},
		{"CommaSeparated", "/* ur , idx */ select 1", &CommentOptions{
			UseUnsafeRowFormat: true, UseIndexInPlainOutput: true, Query: "select 1"}},
		{"UnsafeRowOnly", "/*ur,*/select 1", &CommentOptions{UseUnsafeRowFormat: true, Query: "select 1"}},
		{"Empty", "/**/select 1", &CommentOptions{Query: "select 1"}},
		{"Blank", "/*  */ select 1", &CommentOptions{Query: "select 1"}},
		{"CaseInsensitive", "/*UR,IDX*/select 1", &CommentOptions{
			UseUnsafeRowFormat: true, UseIndexInPlainOutput: true, Query: "select 1"}},
		{"Nodes", "/*ur,node=3,node=node-1,node=3,*/select 1", &CommentOptions{
			UseUnsafeRowFormat: true, TargetNodes: []string{"3", "node-1", "3"}, Query: "select 1"}},
		{"QuotedNode", `/* node = "a b" */ select 1`, &CommentOptions{TargetNodes: []string{"a b"}, Query: "select 1"}},
		{"LeadingWhitespace", "  \n/*idx*/\nselect 1", &CommentOptions{UseIndexInPlainOutput: true, Query: "select 1"}},
		{"LaterComment", "select /*ur*/ 1", &CommentOptions{Query: "select /*ur*/ 1"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			actual, err := ParseComment(test.sql, false)
			require.NoError(t, err)
			require.Equal(t,
				repr.String(test.expected, repr.Indent("  ")),
				repr.String(actual, repr.Indent("  ")))
		})
	}
}

func TestParseCommentErrors(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		code errors.ErrorCode
	}{
		{"Unterminated", "/*ur,idx select 1", errors.InvalidComment},
		{"Unknown", "/*ur,foo,*/select 1", errors.UnknownCommentOption},
		{"NodeWithoutValue", "/*node*/select 1", errors.InvalidComment},
		{"ValueOnFlag", "/*ur=1*/select 1", errors.InvalidComment},
		{"DoubleComma", "/*ur,,idx*/select 1", errors.InvalidComment},
		{"BadCharacter", "/*ur;idx*/select 1", errors.InvalidComment},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseComment(test.sql, false)
			require.Error(t, err)
			require.Equal(t, test.code, errors.CodeOf(err))
		})
	}
}

func TestParseCommentUnknownMessage(t *testing.T) {
	_, err := ParseComment("/*ur,foo,*/select 1", false)
	require.Error(t, err)
	require.Equal(t, "URW0010 - Unknown parameter in sql comment: foo", err.Error())
}

func TestParseCommentIgnoreUnknown(t *testing.T) {
	opts, err := ParseComment("/*ur,foo,bar=baz,node=2*/select 1", true)
	require.NoError(t, err)
	require.True(t, opts.UseUnsafeRowFormat)
	require.False(t, opts.UseIndexInPlainOutput)
	require.Equal(t, []string{"2"}, opts.TargetNodes)
	require.Equal(t, "select 1", opts.Query)
}
