// Package charset converts text from the server encoding to the encoding expected by the
// consumer of encoded rows.
package charset

import (
	"strings"

	"github.com/squareup/unsaferow/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

const (
	UTF8     = "UTF8"
	SQLASCII = "SQL_ASCII"
)

// Transcoder re-encodes text held in the server encoding. Implementations return the
// input slice itself when no conversion is required, and a newly allocated slice
// otherwise.
type Transcoder interface {
	ServerToClient(data []byte) ([]byte, error)
	ClientEncoding() string
}

// Names are normalised with normalise() before lookup, so "latin-1", "Latin1" and
// "LATIN1" are the same encoding.
var encodings = map[string]encoding.Encoding{
	"UTF8":       unicode.UTF8,
	"LATIN1":     charmap.ISO8859_1,
	"LATIN2":     charmap.ISO8859_2,
	"LATIN3":     charmap.ISO8859_3,
	"LATIN4":     charmap.ISO8859_4,
	"LATIN5":     charmap.ISO8859_9,
	"LATIN6":     charmap.ISO8859_10,
	"LATIN7":     charmap.ISO8859_13,
	"LATIN8":     charmap.ISO8859_14,
	"LATIN9":     charmap.ISO8859_15,
	"LATIN10":    charmap.ISO8859_16,
	"ISO88595":   charmap.ISO8859_5,
	"ISO88596":   charmap.ISO8859_6,
	"ISO88597":   charmap.ISO8859_7,
	"ISO88598":   charmap.ISO8859_8,
	"WIN866":     charmap.CodePage866,
	"WIN874":     charmap.Windows874,
	"WIN1250":    charmap.Windows1250,
	"WIN1251":    charmap.Windows1251,
	"WIN1252":    charmap.Windows1252,
	"WIN1253":    charmap.Windows1253,
	"WIN1254":    charmap.Windows1254,
	"WIN1255":    charmap.Windows1255,
	"WIN1256":    charmap.Windows1256,
	"WIN1257":    charmap.Windows1257,
	"WIN1258":    charmap.Windows1258,
	"KOI8R":      charmap.KOI8R,
	"KOI8U":      charmap.KOI8U,
	"SJIS":       japanese.ShiftJIS,
	"EUCJP":      japanese.EUCJP,
	"EUCKR":      korean.EUCKR,
	"GBK":        simplifiedchinese.GBK,
	"GB18030":    simplifiedchinese.GB18030,
	"BIG5":       traditionalchinese.Big5,
	"SQLASCII":   encoding.Nop,
	"UNICODE":    unicode.UTF8,
	"SHIFTJIS":   japanese.ShiftJIS,
	"WINDOWS932": japanese.ShiftJIS,
}

func normalise(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r == '-' || r == '_' || r == ' ' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Lookup resolves a PostgreSQL or IANA encoding name.
func Lookup(name string) (encoding.Encoding, error) {
	if enc, ok := encodings[normalise(name)]; ok {
		return enc, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, errors.NewInvalidConfigurationError("unknown encoding " + name)
	}
	return enc, nil
}

// NewTranscoder creates a Transcoder converting from serverEncoding to clientEncoding.
// When strict is set, characters with no equivalent in the client encoding are an error,
// otherwise they are substituted with the client encoding's replacement character.
func NewTranscoder(serverEncoding string, clientEncoding string, strict bool) (Transcoder, error) {
	server, err := Lookup(serverEncoding)
	if err != nil {
		return nil, err
	}
	client, err := Lookup(clientEncoding)
	if err != nil {
		return nil, err
	}
	if server == client || server == encoding.Nop || client == encoding.Nop {
		return &identity{name: clientEncoding}, nil
	}
	return &converter{
		server:     server,
		client:     client,
		clientName: clientEncoding,
		strict:     strict,
	}, nil
}

// Identity returns a Transcoder that never converts.
func Identity() Transcoder {
	return &identity{name: UTF8}
}

type identity struct {
	name string
}

func (i *identity) ServerToClient(data []byte) ([]byte, error) {
	return data, nil
}

func (i *identity) ClientEncoding() string {
	return i.name
}

type converter struct {
	server     encoding.Encoding
	client     encoding.Encoding
	clientName string
	strict     bool
}

func (c *converter) ServerToClient(data []byte) ([]byte, error) {
	utf8Data := data
	if c.server != unicode.UTF8 {
		var err error
		utf8Data, err = c.server.NewDecoder().Bytes(data)
		if err != nil {
			return nil, errors.WithStack(errors.NewUntranslatableCharacterError(UTF8, string(data)))
		}
	}
	if c.client == unicode.UTF8 {
		return utf8Data, nil
	}
	enc := c.client.NewEncoder()
	if !c.strict {
		enc = encoding.ReplaceUnsupported(enc)
	}
	res, err := enc.Bytes(utf8Data)
	if err != nil {
		return nil, errors.WithStack(errors.NewUntranslatableCharacterError(c.clientName, string(utf8Data)))
	}
	return res, nil
}

func (c *converter) ClientEncoding() string {
	return c.clientName
}
