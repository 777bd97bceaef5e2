// Package reader decodes volume, mask and detection files into dense arrays
// plus the metadata the viewer needs to place them.
package reader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"ctviewer/internal/logging"
	"ctviewer/internal/models"
	"ctviewer/pkg/decompose"
)

// ErrUnsupportedFormat is returned for files the reader cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Properties describe a decoded file.
type Properties struct {
	Spacing r3.Vec
	Origin  r3.Vec

	// IsMask is set for label volumes and detection files
	IsMask bool

	// IsProjection is set for single-slice acquisitions
	IsProjection bool

	// Objects is populated when the file already carries detections. It is
	// empty for raw masks, which still need decomposing.
	Objects []models.DetectedObject
}

// Result is a decoded file. Exactly one of Volume and Mask is set.
type Result struct {
	Volume     []float64
	Mask       []uint32
	Dims       models.Dims
	Properties Properties
}

// Reader decodes the file formats the viewer understands.
type Reader struct {
	decomposer *decompose.Decomposer
	extensions map[string]bool
}

// New creates a Reader. Detection records are turned into objects with dec.
// extensions restricts the accepted file extensions (without the dot); an
// empty list accepts every supported format.
func New(dec *decompose.Decomposer, extensions []string) *Reader {
	r := &Reader{decomposer: dec}
	if len(extensions) > 0 {
		r.extensions = make(map[string]bool, len(extensions))
		for _, e := range extensions {
			r.extensions[strings.ToLower(strings.TrimPrefix(e, "."))] = true
		}
	}
	return r
}

// Read decodes path according to its extension.
func (r *Reader) Read(path string) (*Result, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if r.extensions != nil && !r.extensions[ext] {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}

	switch ext {
	case "mhd", "mha":
		return r.readMetaImage(path)
	case "yaml", "yml", "json":
		return r.readDetections(path)
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
}

func (r *Reader) readMetaImage(path string) (*Result, error) {
	h, data, err := readMetaImage(path)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Dims: h.DimSize,
		Properties: Properties{
			Spacing:      h.Spacing,
			Origin:       h.Offset,
			IsMask:       isMaskName(path),
			IsProjection: h.NDims == 2 || h.DimSize[2] == 1,
		},
	}

	if res.Properties.IsMask {
		res.Mask = make([]uint32, len(data))
		negative := 0
		for i, v := range data {
			if v < 0 {
				negative++
				continue
			}
			res.Mask[i] = uint32(v)
		}
		if negative > 0 {
			logging.Logger().Warn("negative mask values treated as background", "path", path, "voxels", negative)
		}
	} else {
		res.Volume = data
	}

	logging.Logger().Info("MetaImage read",
		"path", path,
		"dims", h.DimSize,
		"type", h.ElementType,
		"mask", res.Properties.IsMask,
		"projection", res.Properties.IsProjection,
	)
	return res, nil
}

// isMaskName reports whether the file base name marks a label volume.
func isMaskName(path string) bool {
	return strings.Contains(strings.ToLower(filepath.Base(path)), "mask")
}

// detectionFile is the on-disk layout of a detection record file.
type detectionFile struct {
	Detections []models.Region `yaml:"detections"`
}

func (r *Reader) readDetections(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read detections")
	}

	var df detectionFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return nil, errors.Wrapf(err, "parse detections %s", path)
	}

	objects, mask, err := r.decomposer.FromRegions(df.Detections)
	if err != nil && !errors.Is(err, decompose.ErrEmptyMask) {
		return nil, errors.Wrapf(err, "detections %s", path)
	}

	logging.Logger().Info("detections read", "path", path, "records", len(df.Detections), "objects", len(objects))
	return &Result{
		Mask: mask.Data,
		Dims: mask.Dims(),
		Properties: Properties{
			Spacing: mask.Spacing,
			IsMask:  true,
			Objects: objects,
		},
	}, nil
}
