package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/squareup/unsaferow/common"
	"github.com/squareup/unsaferow/conf"
	"github.com/squareup/unsaferow/errors"
	"github.com/squareup/unsaferow/metrics/prometheus"
	"github.com/squareup/unsaferow/parser"
	"github.com/squareup/unsaferow/unsaferow"
	"github.com/twmb/murmur3"
)

const valueSeparator = "|"

type runner struct {
	cfg            conf.Config
	columnTypes    []common.ColumnType
	metricsFactory *prometheus.Factory
	encoder        *unsaferow.Encoder
	out            io.Writer
}

func newRunner(cfg conf.Config, columns string, out io.Writer) (*runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	columnTypes, err := parser.ParseColumnTypes(columns)
	if err != nil {
		return nil, err
	}
	metricsFactory := prometheus.NewFactory(cfg)
	if err := metricsFactory.Start(); err != nil {
		return nil, err
	}
	encoder, err := unsaferow.NewEncoder(&cfg, metricsFactory)
	if err != nil {
		_ = metricsFactory.Stop()
		return nil, err
	}
	return &runner{
		cfg:            cfg,
		columnTypes:    columnTypes,
		metricsFactory: metricsFactory,
		encoder:        encoder,
		out:            out,
	}, nil
}

func (r *runner) close() error {
	return r.metricsFactory.Stop()
}

// encodeLine handles a shell line: option comment, then values separated by |.
func (r *runner) encodeLine(line string) error {
	opts, err := r.parseComment(line)
	if err != nil {
		return err
	}
	values := strings.Split(opts.Query, valueSeparator)
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return r.output(opts, values)
}

func (r *runner) encodeRow(query string, values []string) error {
	opts, err := r.parseComment(query)
	if err != nil {
		return err
	}
	return r.output(opts, values)
}

func (r *runner) parseComment(query string) (*parser.CommentOptions, error) {
	return parser.ParseComment(query, r.cfg.UnknownCommentOptions == conf.CommentOptionsIgnore)
}

func (r *runner) output(opts *parser.CommentOptions, values []string) error {
	if len(values) != len(r.columnTypes) {
		return errors.WithStack(errors.NewInvalidValueError(
			fmt.Sprintf("got %d values for %d columns", len(values), len(r.columnTypes))))
	}
	rows := common.NewRowsFactory(r.columnTypes).NewRows(1)
	for i, v := range values {
		if err := rows.AppendTextToColumn(i, v); err != nil {
			return errors.Wrapf(err, "column %d", i)
		}
	}
	if !opts.UseUnsafeRowFormat {
		return r.writePlain(opts, values)
	}
	encoded, err := r.encoder.EncodeRows(rows)
	if err != nil {
		return err
	}
	log.Debugf("encoded row of %d bytes for nodes %v", len(encoded[0]), opts.TargetNodes)
	return r.writeDump(opts, encoded[0])
}

func (r *runner) writePlain(opts *parser.CommentOptions, values []string) error {
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteString(" | ")
		}
		if opts.UseIndexInPlainOutput {
			sb.WriteString(fmt.Sprintf("%d=", i))
		}
		sb.WriteString(v)
	}
	_, err := fmt.Fprintln(r.out, sb.String())
	return errors.WithStack(err)
}

func (r *runner) writeDump(opts *parser.CommentOptions, row []byte) error {
	l, err := unsaferow.NewLayout(row, len(r.columnTypes))
	if err != nil {
		return err
	}
	lines := []string{
		"nodes:   " + strings.Join(opts.TargetNodes, ","),
		"bitmap:  " + hexWords(l.Bitmap()),
		"fixed:   " + hexWords(l.Fixed()),
		"var:     " + hexWords(l.VarData()),
		fmt.Sprintf("size:    %d", len(row)),
		fmt.Sprintf("murmur3: %08x", murmur3.Sum32(row)),
	}
	_, err = fmt.Fprintln(r.out, strings.Join(lines, "\n"))
	return errors.WithStack(err)
}

// hexWords formats b as space separated 8 byte words.
func hexWords(b []byte) string {
	words := make([]string, 0, len(b)/unsaferow.SlotAlignment)
	for i := 0; i < len(b); i += unsaferow.SlotAlignment {
		words = append(words, hex.EncodeToString(b[i:i+unsaferow.SlotAlignment]))
	}
	return strings.Join(words, " ")
}
