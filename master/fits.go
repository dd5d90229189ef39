package master

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// FITS layout constants: 80-character header cards grouped in
// 2880-byte logical records, data blocks padded to the same size.
const (
	cardLen  = 80
	blockLen = 2880
)

var (
	// ErrNotFITS indicates the input does not start with a valid
	// primary header.
	ErrNotFITS = errors.New("master: not a FITS file")

	// ErrBadHeader indicates a malformed or unsupported header card.
	ErrBadHeader = errors.New("master: malformed FITS header")
)

// Header holds the parsed cards of one header unit, keyword to value
// text (string values unquoted, logicals as "T"/"F").
type Header map[string]string

// unit is one header/data unit: the parsed header plus its one-
// dimensional data vector converted to float64. Units without data
// (the primary header) have a nil Data.
type unit struct {
	Header Header
	Data   []float64
}

// Name returns the extension name of the unit, if any.
func (u *unit) Name() string { return u.Header["EXTNAME"] }

// card renders one 80-character header card. Numeric and logical
// values are right-justified to column 30, strings quoted and
// left-justified, both per the fixed-format convention.
func card(key, value, comment string, quoted bool) string {
	var s string
	if quoted {
		s = fmt.Sprintf("%-8s= %-20s", key, "'"+value+"'")
	} else {
		s = fmt.Sprintf("%-8s= %20s", key, value)
	}
	if comment != "" {
		s += " / " + comment
	}
	if len(s) > cardLen {
		s = s[:cardLen]
	}

	return s + strings.Repeat(" ", cardLen-len(s))
}

// padRecord joins cards and pads the result to a whole number of
// 2880-byte records.
func padRecord(cards []string) []byte {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c)
	}
	rem := b.Len() % blockLen
	if rem != 0 {
		b.WriteString(strings.Repeat(" ", blockLen-rem))
	}

	return []byte(b.String())
}

// writeFITS writes a primary header carrying the given cards followed
// by one float64 image extension per data vector.
func writeFITS(w io.Writer, primary []string, names []string, data [][]float64) error {
	cards := []string{
		card("SIMPLE", "T", "conforms to FITS standard", false),
		card("BITPIX", "8", "array data type", false),
		card("NAXIS", "0", "number of array dimensions", false),
		card("EXTEND", "T", "", false),
	}
	cards = append(cards, primary...)
	cards = append(cards, "END"+strings.Repeat(" ", cardLen-3))
	if _, err := w.Write(padRecord(cards)); err != nil {
		return err
	}

	for i, d := range data {
		cards = []string{
			card("XTENSION", "IMAGE", "Image extension", true),
			card("BITPIX", "-64", "array data type", false),
			card("NAXIS", "1", "number of array dimensions", false),
			card("NAXIS1", strconv.Itoa(len(d)), "", false),
			card("PCOUNT", "0", "number of parameters", false),
			card("GCOUNT", "1", "number of groups", false),
			card("EXTNAME", names[i], "extension name", true),
			"END" + strings.Repeat(" ", cardLen-3),
		}
		if _, err := w.Write(padRecord(cards)); err != nil {
			return err
		}

		buf := make([]byte, len(d)*8)
		for j, v := range d {
			binary.BigEndian.PutUint64(buf[j*8:], math.Float64bits(v))
		}
		if rem := len(buf) % blockLen; rem != 0 {
			buf = append(buf, make([]byte, blockLen-rem)...)
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}

	return nil
}

// parseCard splits one card into keyword and value text, stripping
// quotes and trailing comments.
func parseCard(line string) (key, value string) {
	key = strings.TrimSpace(line[:8])
	if len(line) < 10 || line[8:10] != "= " {
		return key, ""
	}
	rest := line[10:]

	if strings.HasPrefix(strings.TrimSpace(rest), "'") {
		rest = strings.TrimSpace(rest)
		if end := strings.Index(rest[1:], "'"); end >= 0 {
			return key, strings.TrimRight(rest[1:1+end], " ")
		}

		return key, strings.Trim(rest, "'")
	}

	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}

	return key, strings.TrimSpace(rest)
}

// readHeader reads 2880-byte records of cards until END.
func readHeader(r io.Reader) (Header, error) {
	h := make(Header)
	block := make([]byte, blockLen)
	for {
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, err
		}
		for i := 0; i < blockLen; i += cardLen {
			line := string(block[i : i+cardLen])
			key, value := parseCard(line)
			switch key {
			case "END":
				return h, nil
			case "", "COMMENT", "HISTORY":
				continue
			}
			h[key] = value
		}
	}
}

// readData reads and converts the data vector described by the header.
// Images of BITPIX 8, 16, 32, 64, -32, and -64 are supported; all are
// widened to float64.
func readData(r io.Reader, h Header) ([]float64, error) {
	naxis, err := strconv.Atoi(h["NAXIS"])
	if err != nil {
		return nil, fmt.Errorf("%w: NAXIS %q", ErrBadHeader, h["NAXIS"])
	}
	if naxis == 0 {
		return nil, nil
	}

	n := 1
	for k := 1; k <= naxis; k++ {
		ax, err := strconv.Atoi(h["NAXIS"+strconv.Itoa(k)])
		if err != nil {
			return nil, fmt.Errorf("%w: NAXIS%d", ErrBadHeader, k)
		}
		n *= ax
	}

	bitpix, err := strconv.Atoi(h["BITPIX"])
	if err != nil {
		return nil, fmt.Errorf("%w: BITPIX %q", ErrBadHeader, h["BITPIX"])
	}
	size := bitpix
	if size < 0 {
		size = -size
	}
	nbytes := n * size / 8
	padded := nbytes
	if rem := nbytes % blockLen; rem != 0 {
		padded += blockLen - rem
	}

	buf := make([]byte, padded)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	out := make([]float64, n)
	switch bitpix {
	case 8:
		for i := range out {
			out[i] = float64(buf[i])
		}
	case 16:
		for i := range out {
			out[i] = float64(int16(binary.BigEndian.Uint16(buf[i*2:])))
		}
	case 32:
		for i := range out {
			out[i] = float64(int32(binary.BigEndian.Uint32(buf[i*4:])))
		}
	case 64:
		for i := range out {
			out[i] = float64(int64(binary.BigEndian.Uint64(buf[i*8:])))
		}
	case -32:
		for i := range out {
			out[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(buf[i*4:])))
		}
	case -64:
		for i := range out {
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[i*8:]))
		}
	default:
		return nil, fmt.Errorf("%w: BITPIX %d unsupported", ErrBadHeader, bitpix)
	}

	return out, nil
}

// readFITS parses every header/data unit of a FITS stream.
func readFITS(r io.Reader) ([]*unit, error) {
	var units []*unit
	for {
		h, err := readHeader(r)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			if len(units) == 0 {
				return nil, ErrNotFITS
			}

			return units, nil
		}
		if err != nil {
			return nil, err
		}
		if len(units) == 0 {
			if h["SIMPLE"] != "T" {
				return nil, ErrNotFITS
			}
		}

		data, err := readData(r, h)
		if err != nil {
			return nil, err
		}
		units = append(units, &unit{Header: h, Data: data})
	}
}
