package gallery

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ImageRecord is one externally supplied image. The gallery treats records as
// immutable and trusts the caller's ordering.
type ImageRecord struct {
	ID       string
	Payload  Payload
	AltText  string
	Caption  string
	Filename string
	Order    int
}

// Payload is either Ready or Encoded.
type Payload interface {
	isPayload()
}

// Ready is a payload that already has a displayable URI.
type Ready struct {
	URI string
}

// Encoded is raw image bytes plus their MIME type.
type Encoded struct {
	Data     []byte
	MIMEType string
}

func (Ready) isPayload()   {}
func (Encoded) isPayload() {}

// PayloadFromBase64 resolves the storage shape of an image (a base64 string
// that may or may not already be a full data URI) into a Payload.
// Undecodable input yields an Encoded payload with no data, which
// normalizes to a placeholder.
func PayloadFromBase64(data, mimeType string) Payload {
	data = strings.TrimSpace(data)
	if strings.HasPrefix(data, "data:") {
		return Ready{URI: data}
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return Encoded{MIMEType: mimeType}
	}
	return Encoded{Data: raw, MIMEType: mimeType}
}

var mimeExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/jpg":     "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

// IsSupportedMIME reports whether mimeType is one of the displayable image types.
func IsSupportedMIME(mimeType string) bool {
	_, ok := mimeExtensions[strings.ToLower(strings.TrimSpace(mimeType))]
	return ok
}

// ExtensionForMIME maps a MIME type to a file extension, defaulting to jpg.
func ExtensionForMIME(mimeType string) string {
	if ext, ok := mimeExtensions[strings.ToLower(strings.TrimSpace(mimeType))]; ok {
		return ext
	}
	return "jpg"
}

// Slide is the display form of an ImageRecord, resolved once at ingestion.
type Slide struct {
	Record   ImageRecord
	URI      string
	Alt      string
	Filename string
	MIMEType string
	Valid    bool
}

// Data returns the decoded image bytes of an encoded payload, or nil.
func (s Slide) Data() []byte {
	if enc, ok := s.Record.Payload.(Encoded); ok {
		return enc.Data
	}
	return nil
}

// Normalize converts records to slides. Malformed records become invalid
// slides so the shell can draw a placeholder in their place.
func Normalize(records []ImageRecord) []Slide {
	slides := make([]Slide, len(records))
	for i, rec := range records {
		slides[i] = normalizeOne(rec, i)
	}
	return slides
}

func normalizeOne(rec ImageRecord, pos int) Slide {
	s := Slide{Record: rec}

	switch p := rec.Payload.(type) {
	case Ready:
		if p.URI != "" {
			s.URI = p.URI
			s.MIMEType = mimeFromDataURI(p.URI)
			s.Valid = s.MIMEType == "" || IsSupportedMIME(s.MIMEType)
		}
	case Encoded:
		s.MIMEType = p.MIMEType
		if len(p.Data) > 0 && IsSupportedMIME(p.MIMEType) {
			s.URI = fmt.Sprintf("data:%s;base64,%s", p.MIMEType, base64.StdEncoding.EncodeToString(p.Data))
			s.Valid = true
		}
	}

	switch {
	case rec.AltText != "":
		s.Alt = rec.AltText
	case rec.Caption != "":
		s.Alt = rec.Caption
	case rec.Filename != "":
		s.Alt = rec.Filename
	default:
		s.Alt = fmt.Sprintf("Image %d", pos+1)
	}

	s.Filename = rec.Filename
	if s.Filename == "" {
		s.Filename = "image." + ExtensionForMIME(s.MIMEType)
	}
	return s
}

// mimeFromDataURI extracts the media type of a data: URI, or "" for other URIs.
func mimeFromDataURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return ""
	}
	end := strings.IndexAny(rest, ";,")
	if end < 0 {
		return ""
	}
	return rest[:end]
}
