package reader

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"ctviewer/internal/models"
	"ctviewer/pkg/decompose"
)

func newReader() *Reader {
	return New(decompose.New(decompose.DefaultOptions()), nil)
}

func TestReadMetaImageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.mhd")

	dims := models.Dims{4, 3, 5}
	data := make([]float64, dims.Len())
	for i := range data {
		data[i] = float64(i*10 - 200)
	}
	require.NoError(t, WriteMetaImage(path, data, dims, r3.Vec{X: 0.5, Y: 0.5, Z: 2}, r3.Vec{X: -10, Y: 0, Z: 3}, "MET_SHORT"))

	res, err := newReader().Read(path)
	require.NoError(t, err)
	assert.Equal(t, dims, res.Dims)
	assert.Equal(t, data, res.Volume)
	assert.Nil(t, res.Mask)
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0.5, Z: 2}, res.Properties.Spacing)
	assert.Equal(t, r3.Vec{X: -10, Y: 0, Z: 3}, res.Properties.Origin)
	assert.False(t, res.Properties.IsMask)
	assert.False(t, res.Properties.IsProjection)
}

func TestReadMetaImageBigEndianLocal(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("NDims = 2\nDimSize = 3 2\nElementType = MET_USHORT\nElementByteOrderMSB = True\nElementDataFile = LOCAL\n")
	for _, v := range []uint16{1, 2, 3, 256, 1000, 65535} {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, v))
	}
	path := filepath.Join(t.TempDir(), "xray.mha")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	res, err := newReader().Read(path)
	require.NoError(t, err)
	assert.Equal(t, models.Dims{3, 2, 1}, res.Dims)
	assert.Equal(t, []float64{1, 2, 3, 256, 1000, 65535}, res.Volume)
	assert.True(t, res.Properties.IsProjection)
}

func TestReadMaskByName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bag_Mask.mhd")
	data := []float64{0, 1, 2, 0, 0, 0, 3, 0}
	require.NoError(t, WriteMetaImage(path, data, models.Dims{2, 2, 2}, r3.Vec{X: 1, Y: 1, Z: 1}, r3.Vec{}, "MET_UCHAR"))

	res, err := newReader().Read(path)
	require.NoError(t, err)
	assert.True(t, res.Properties.IsMask)
	assert.Equal(t, []uint32{0, 1, 2, 0, 0, 0, 3, 0}, res.Mask)
	assert.Nil(t, res.Volume)
	assert.Empty(t, res.Properties.Objects)
}

func TestReadMetaImageErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.mhd")
	require.NoError(t, os.WriteFile(bad, []byte("NDims = 3\nDimSize = 2 2 2\nElementType = MET_COMPLEX\nElementDataFile = x.raw\n"), 0644))
	_, err := newReader().Read(bad)
	assert.Error(t, err)

	short := filepath.Join(dir, "short.mhd")
	require.NoError(t, os.WriteFile(short, []byte("NDims = 3\nDimSize = 2 2 2\nElementType = MET_UCHAR\nElementDataFile = short.raw\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "short.raw"), []byte{1, 2, 3}, 0644))
	_, err = newReader().Read(short)
	assert.Error(t, err)

	noData := filepath.Join(dir, "nodata.mhd")
	require.NoError(t, os.WriteFile(noData, []byte("NDims = 3\nElementType = MET_UCHAR\n"), 0644))
	_, err = newReader().Read(noData)
	assert.Error(t, err)

	for _, dims := range []string{"-2 2 2", "0 4 4", "2000000 2 2", "1048576 1048576 1048576"} {
		path := filepath.Join(dir, "dims.mha")
		body := "NDims = 3\nDimSize = " + dims + "\nElementType = MET_UCHAR\nElementDataFile = LOCAL\n"
		require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		_, err = newReader().Read(path)
		assert.Error(t, err, dims)
	}
}

const detectionsYAML = `detections:
  - base: {x: 0, y: 0, z: 0}
    extent: {x: 2, y: 2, z: 2}
    bitmap: [1, 1, 1, 1, 1, 1, 1, 1]
    description: Knife
  - base: {x: 0, y: 0, z: 0}
    extent: {x: 2, y: 2, z: 2}
    bitmap: [1, 1, 1, 1, 1, 1, 1, 1]
`

func TestReadDetections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tdr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(detectionsYAML), 0644))

	res, err := newReader().Read(path)
	require.NoError(t, err)
	assert.True(t, res.Properties.IsMask)
	require.Len(t, res.Properties.Objects, 2)
	assert.Equal(t, "Knife", res.Properties.Objects[0].Description)
	assert.Equal(t, models.Dims{2, 2, 2}, res.Dims)
	for _, v := range res.Mask {
		assert.Equal(t, uint32(1), v)
	}
}

func TestReadDetectionsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tdr.json")
	body := `{"detections": [{"base": {"x": 1, "y": 2, "z": 3}, "extent": {"x": 4, "y": 5, "z": 6}}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	res, err := newReader().Read(path)
	require.NoError(t, err)
	require.Len(t, res.Properties.Objects, 1)
	assert.Equal(t, models.BoundingBox{XMin: 1, XMax: 5, YMin: 2, YMax: 7, ZMin: 3, ZMax: 9}, res.Properties.Objects[0].Box)
}

func TestReadDetectionsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("detections:\n  - extent: {x: 1, y: 1, z: 1}\n"), 0644))

	_, err := newReader().Read(path)
	var re *decompose.RegionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 0, re.Index)
	assert.Equal(t, "base", re.Field)
}

func TestReadUnsupported(t *testing.T) {
	_, err := newReader().Read("scan.dcm")
	assert.Equal(t, ErrUnsupportedFormat, errors.Cause(err))

	r := New(decompose.New(decompose.DefaultOptions()), []string{".mhd"})
	_, err = r.Read("tdr.yaml")
	assert.Equal(t, ErrUnsupportedFormat, errors.Cause(err))
}
