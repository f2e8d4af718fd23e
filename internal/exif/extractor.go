// Package exif extracts GPS coordinates and capture metadata from
// claim evidence photos. Missing or undecodable metadata is never fatal
// to a claim; the pipeline degrades to claimed coordinates instead.
package exif

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/agrolens/claimverify/internal/geo"
	"github.com/agrolens/claimverify/pkg/common"
)

// Metadata holds what could be recovered from an image file. FieldCount
// reflects how many of the tracked tags were populated and feeds the
// metadata-scarcity fraud signal.
type Metadata struct {
	Point      *geo.Point
	Timestamp  string
	Make       string
	Model      string
	Software   string
	FieldCount int
}

// HasGPS reports whether a GPS fix was recovered.
func (m Metadata) HasGPS() bool {
	return m.Point != nil
}

// Extractor recovers metadata from an evidence photo on disk. A non-nil
// error carries the metadata_unavailable kind and comes with an empty
// Metadata; callers log it and keep going.
type Extractor interface {
	Extract(path string) (Metadata, error)
}

// FileExtractor decodes EXIF blocks from image files.
type FileExtractor struct{}

// NewFileExtractor returns the default extractor.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// Extract reads metadata from the image at path.
func (e *FileExtractor) Extract(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, common.NewMetadataUnavailableError("image not readable", path).Wrap(err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return Metadata{}, common.NewMetadataUnavailableError("no decodable metadata in image", path).Wrap(err)
	}

	var meta Metadata

	if lat, lon, err := x.LatLong(); err == nil {
		p := geo.Point{Lat: lat, Lon: lon}
		if p.Validate() == nil {
			meta.Point = &p
			meta.FieldCount++
		}
	}

	meta.Timestamp = stringTag(x, exif.DateTime)
	if meta.Timestamp == "" {
		meta.Timestamp = stringTag(x, exif.DateTimeOriginal)
	}
	if meta.Timestamp != "" {
		meta.FieldCount++
	}

	if meta.Make = stringTag(x, exif.Make); meta.Make != "" {
		meta.FieldCount++
	}
	if meta.Model = stringTag(x, exif.Model); meta.Model != "" {
		meta.FieldCount++
	}
	if meta.Software = stringTag(x, exif.Software); meta.Software != "" {
		meta.FieldCount++
	}

	return meta, nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return value
}
