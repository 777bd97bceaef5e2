package reader

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/models"
)

// MetaHeader is the parsed text header of a MetaImage file.
type MetaHeader struct {
	NDims       int
	DimSize     models.Dims
	Spacing     r3.Vec
	Offset      r3.Vec
	ElementType string
	BigEndian   bool
	Compressed  bool
	Channels    int

	// DataFile is the raw data path, or "LOCAL" when data follows the header
	DataFile string
}

// elementSize returns the byte size of one element of type t.
func elementSize(t string) (int, bool) {
	switch t {
	case "MET_UCHAR", "MET_CHAR":
		return 1, true
	case "MET_USHORT", "MET_SHORT":
		return 2, true
	case "MET_UINT", "MET_INT", "MET_FLOAT":
		return 4, true
	case "MET_DOUBLE":
		return 8, true
	}
	return 0, false
}

// Largest image accepted from a header, per axis and in total.
const (
	maxMetaAxis    = 1 << 20
	maxMetaSamples = 1 << 31
)

// parseMetaHeader reads key = value lines up to and including
// ElementDataFile. It returns the header and the number of header bytes.
func parseMetaHeader(r io.Reader) (*MetaHeader, int, error) {
	h := &MetaHeader{
		NDims:    3,
		DimSize:  models.Dims{1, 1, 1},
		Spacing:  r3.Vec{X: 1, Y: 1, Z: 1},
		Channels: 1,
	}

	br := bufio.NewReader(r)
	consumed := 0
	for {
		line, err := br.ReadString('\n')
		consumed += len(line)
		if err != nil && err != io.EOF {
			return nil, 0, errors.Wrap(err, "read header")
		}

		key, value, ok := strings.Cut(line, "=")
		if ok {
			key = strings.TrimSpace(key)
			value = strings.TrimSpace(value)
			if perr := h.set(key, value); perr != nil {
				return nil, 0, perr
			}
			if key == "ElementDataFile" {
				break
			}
		}
		if err == io.EOF {
			return nil, 0, errors.New("header has no ElementDataFile")
		}
	}

	if h.ElementType == "" {
		return nil, 0, errors.New("header has no ElementType")
	}
	if h.NDims < 2 || h.NDims > 3 {
		return nil, 0, errors.Errorf("unsupported NDims %d", h.NDims)
	}
	if h.Channels != 1 {
		return nil, 0, errors.Errorf("unsupported ElementNumberOfChannels %d", h.Channels)
	}
	for _, n := range h.DimSize {
		if n < 1 || n > maxMetaAxis {
			return nil, 0, errors.Errorf("invalid DimSize %v", h.DimSize)
		}
	}
	if h.DimSize.Len() > maxMetaSamples {
		return nil, 0, errors.Errorf("DimSize %v exceeds %d samples", h.DimSize, maxMetaSamples)
	}
	return h, consumed, nil
}

func (h *MetaHeader) set(key, value string) error {
	switch key {
	case "NDims":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrap(err, "parse NDims")
		}
		h.NDims = n
	case "DimSize":
		ints, err := parseInts(value)
		if err != nil {
			return errors.Wrap(err, "parse DimSize")
		}
		for i := 0; i < 3 && i < len(ints); i++ {
			h.DimSize[i] = ints[i]
		}
	case "ElementSpacing", "ElementSize":
		v, err := parseVec(value, 1)
		if err != nil {
			return errors.Wrapf(err, "parse %s", key)
		}
		h.Spacing = v
	case "Offset", "Origin", "Position":
		v, err := parseVec(value, 0)
		if err != nil {
			return errors.Wrapf(err, "parse %s", key)
		}
		h.Offset = v
	case "ElementType":
		if _, ok := elementSize(value); !ok {
			return errors.Errorf("unsupported ElementType %s", value)
		}
		h.ElementType = value
	case "ElementByteOrderMSB", "BinaryDataByteOrderMSB":
		h.BigEndian = strings.EqualFold(value, "true")
	case "CompressedData":
		h.Compressed = strings.EqualFold(value, "true")
	case "ElementNumberOfChannels":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrap(err, "parse ElementNumberOfChannels")
		}
		h.Channels = n
	case "ElementDataFile":
		h.DataFile = value
	}
	return nil
}

func parseInts(s string) ([]int, error) {
	fields := strings.Fields(s)
	out := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// parseVec parses up to three floats; missing components take fill.
func parseVec(s string, fill float64) (r3.Vec, error) {
	v := [3]float64{fill, fill, fill}
	for i, f := range strings.Fields(s) {
		if i >= 3 {
			break
		}
		x, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return r3.Vec{}, err
		}
		v[i] = x
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}

// readMetaImage loads a .mhd/.mha file and returns its header and samples.
func readMetaImage(path string) (*MetaHeader, []float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open MetaImage")
	}
	defer f.Close()

	h, headerSize, err := parseMetaHeader(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parse MetaImage header %s", path)
	}

	var raw io.Reader
	if strings.EqualFold(h.DataFile, "LOCAL") {
		if _, err := f.Seek(int64(headerSize), io.SeekStart); err != nil {
			return nil, nil, errors.Wrap(err, "seek to data")
		}
		raw = f
	} else {
		dataPath := h.DataFile
		if !filepath.IsAbs(dataPath) {
			dataPath = filepath.Join(filepath.Dir(path), dataPath)
		}
		df, err := os.Open(dataPath)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open MetaImage data")
		}
		defer df.Close()
		raw = df
	}

	if h.Compressed {
		zr, err := zlib.NewReader(raw)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open compressed data")
		}
		defer zr.Close()
		raw = zr
	}

	n := h.DimSize.Len()
	size, _ := elementSize(h.ElementType)
	buf := make([]byte, n*size)
	if _, err := io.ReadFull(raw, buf); err != nil {
		return nil, nil, errors.Wrapf(err, "read %d samples", n)
	}

	return h, decodeSamples(buf, h.ElementType, h.BigEndian), nil
}

func decodeSamples(buf []byte, elemType string, bigEndian bool) []float64 {
	var order binary.ByteOrder = binary.LittleEndian
	if bigEndian {
		order = binary.BigEndian
	}
	size, _ := elementSize(elemType)
	out := make([]float64, len(buf)/size)
	for i := range out {
		b := buf[i*size : (i+1)*size]
		switch elemType {
		case "MET_UCHAR":
			out[i] = float64(b[0])
		case "MET_CHAR":
			out[i] = float64(int8(b[0]))
		case "MET_USHORT":
			out[i] = float64(order.Uint16(b))
		case "MET_SHORT":
			out[i] = float64(int16(order.Uint16(b)))
		case "MET_UINT":
			out[i] = float64(order.Uint32(b))
		case "MET_INT":
			out[i] = float64(int32(order.Uint32(b)))
		case "MET_FLOAT":
			out[i] = float64(math.Float32frombits(order.Uint32(b)))
		case "MET_DOUBLE":
			out[i] = math.Float64frombits(order.Uint64(b))
		}
	}
	return out
}

// WriteMetaImage writes data as a .mhd header plus a little-endian .raw file
// next to it, using elemType for the samples.
func WriteMetaImage(path string, data []float64, dims models.Dims, spacing, origin r3.Vec, elemType string) error {
	size, ok := elementSize(elemType)
	if !ok {
		return errors.Errorf("unsupported ElementType %s", elemType)
	}
	if len(data) != dims.Len() {
		return errors.Errorf("got %d samples for %v", len(data), dims)
	}

	rawName := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".raw"

	var hdr bytes.Buffer
	hdr.WriteString("ObjectType = Image\n")
	hdr.WriteString("NDims = 3\n")
	hdr.WriteString("DimSize = " + strconv.Itoa(dims[0]) + " " + strconv.Itoa(dims[1]) + " " + strconv.Itoa(dims[2]) + "\n")
	hdr.WriteString("ElementSpacing = " + formatVec(spacing) + "\n")
	hdr.WriteString("Offset = " + formatVec(origin) + "\n")
	hdr.WriteString("ElementByteOrderMSB = False\n")
	hdr.WriteString("ElementType = " + elemType + "\n")
	hdr.WriteString("ElementDataFile = " + rawName + "\n")
	if err := os.WriteFile(path, hdr.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "write MetaImage header")
	}

	buf := make([]byte, len(data)*size)
	le := binary.LittleEndian
	for i, v := range data {
		b := buf[i*size : (i+1)*size]
		switch elemType {
		case "MET_UCHAR", "MET_CHAR":
			b[0] = byte(int64(v))
		case "MET_USHORT", "MET_SHORT":
			le.PutUint16(b, uint16(int64(v)))
		case "MET_UINT", "MET_INT":
			le.PutUint32(b, uint32(int64(v)))
		case "MET_FLOAT":
			le.PutUint32(b, math.Float32bits(float32(v)))
		case "MET_DOUBLE":
			le.PutUint64(b, math.Float64bits(v))
		}
	}
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), rawName), buf, 0644); err != nil {
		return errors.Wrap(err, "write MetaImage data")
	}
	return nil
}

func formatVec(v r3.Vec) string {
	f := func(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }
	return f(v.X) + " " + f(v.Y) + " " + f(v.Z)
}
