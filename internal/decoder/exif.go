package decoder

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/sdksniff/internal/model"
)

// exifTagKeys maps the EXIF tags worth reporting to the keys they are
// exposed under in the decoded mapping. The key names line up with the
// classifier's EXIF rules, so a GPSLatitude tag surfaces as a
// gps_latitude finding without any special casing downstream.
var exifTagKeys = map[string]string{
	"GPSLatitude":        "gps_latitude",
	"GPSLongitude":       "gps_longitude",
	"SerialNumber":       "serial_number",
	"BodySerialNumber":   "body_serial",
	"CameraSerialNumber": "camera_serial",
	"LensSerialNumber":   "lens_serial",
	"Make":               "manufacturer",
	"Model":              "device_model",
}

// decodeMultipart parses a multipart body into a mapping keyed by part
// form names. Text parts become scalars; image parts with EXIF metadata
// expand into a nested mapping of the tags in exifTagKeys; other binary
// parts degrade to a truncated scalar so their printable prefix is still
// classified.
func (d *Decoder) decodeMultipart(contentType string, body []byte) (model.Value, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return model.Value{}, fmt.Errorf("failed to parse multipart content type: %w", err)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return model.Value{}, fmt.Errorf("multipart content type has no boundary")
	}

	m := model.NewMapping()
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for partIndex := 0; ; partIndex++ {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.Value{}, fmt.Errorf("failed to read multipart part: %w", err)
		}

		data, err := io.ReadAll(io.LimitReader(part, int64(d.maxBodyBytes)))
		_ = part.Close() //nolint:errcheck // part is fully consumed
		if err != nil {
			return model.Value{}, fmt.Errorf("failed to read multipart part body: %w", err)
		}

		key := part.FormName()
		if key == "" {
			key = fmt.Sprintf("part_%d", partIndex)
		}

		m.Set(key, d.decodePart(data))
	}
	return m, nil
}

// decodePart converts one multipart part body into a value.
func (d *Decoder) decodePart(data []byte) model.Value {
	if isImage(data) {
		if tags := extractExifTags(data); tags.Len() > 0 {
			return tags
		}
		// Image without usable EXIF: nothing classifiable inside.
		return model.NewScalar("")
	}
	if utf8.Valid(data) {
		return model.NewScalar(truncate(string(data), d.maxBodyBytes))
	}
	return model.NewScalar(truncate(strings.ToValidUTF8(string(data), "�"), d.truncateBytes))
}

var (
	jpegMagic        = []byte{0xff, 0xd8, 0xff}
	tiffLittleEndian = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffBigEndian    = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

// isImage reports whether the bytes start with a JPEG or TIFF signature,
// the container formats EXIF extraction supports.
func isImage(data []byte) bool {
	return bytes.HasPrefix(data, jpegMagic) ||
		bytes.HasPrefix(data, tiffLittleEndian) ||
		bytes.HasPrefix(data, tiffBigEndian)
}

// extractExifTags pulls the tags in exifTagKeys out of an image and
// returns them as a mapping. Extraction failures return an empty
// mapping: a corrupt EXIF block is not worth aborting the request over.
func extractExifTags(data []byte) model.Value {
	m := model.NewMapping()

	rawExif, err := exif.SearchAndExtractExif(data)
	if err != nil || rawExif == nil {
		return m
	}
	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return m
	}

	for _, entry := range entries {
		key, ok := exifTagKeys[entry.TagName]
		if !ok {
			continue
		}
		value := strings.TrimSpace(entry.Formatted)
		if value == "" {
			continue
		}
		m.Set(key, model.NewScalar(value))
	}
	return m
}
