package care

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidPhoto marks a malformed local photo payload. It is raised before
// any store or transfer I/O happens.
var ErrInvalidPhoto = errors.New("invalid wound photo payload")

// PhotoPrefix is the top-level remote folder for every stored wound photo.
const PhotoPrefix = "wound_photos"

// PhotoKind classifies the wound_photo field of an incoming record.
type PhotoKind int

const (
	// PhotoEmpty means no photo is attached.
	PhotoEmpty PhotoKind = iota
	// PhotoDurable means the field already references a stored asset and
	// must pass through untouched.
	PhotoDurable
	// PhotoLocal means the field carries a client-staged payload that has to
	// be uploaded before the record may be committed.
	PhotoLocal
)

// ClassifyPhoto decides what the save path has to do with the field. Only a
// data URI counts as a local payload; anything else non-empty is treated as
// a reference and left alone.
func ClassifyPhoto(field string) PhotoKind {
	switch {
	case field == "":
		return PhotoEmpty
	case strings.HasPrefix(field, "data:"):
		return PhotoLocal
	default:
		return PhotoDurable
	}
}

// DecodePhoto unpacks a local data-URI payload into raw bytes and a leaf
// filename. The client may name the file via a name parameter
// (data:image/png;name=photo 1.png;base64,...); without one the name is
// derived from the MIME subtype.
func DecodePhoto(field string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(field, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: not a data URI", ErrInvalidPhoto)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing payload separator", ErrInvalidPhoto)
	}

	params := strings.Split(meta, ";")
	mediaType := params[0]
	name := ""
	encoded := false
	for _, p := range params[1:] {
		if p == "base64" {
			encoded = true
			continue
		}
		if v, found := strings.CutPrefix(p, "name="); found {
			name = v
		}
	}
	if !encoded {
		return nil, "", fmt.Errorf("%w: payload is not base64 encoded", ErrInvalidPhoto)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty payload", ErrInvalidPhoto)
	}

	if name == "" {
		ext := "bin"
		if _, sub, found := strings.Cut(mediaType, "/"); found && sub != "" {
			ext = sub
		}
		name = "wound_photo." + ext
	}
	return data, name, nil
}

// PhotoDir builds the remote folder for a visit photo. Granularity is the
// care day, not the visit id, so every photo for the same wound on the same
// date shares one folder and a re-upload of the same name overwrites.
func PhotoDir(patientID, woundID uint, careDate time.Time) string {
	return fmt.Sprintf("%s/patient_%d/wound_%d/wound_care_photo_%s",
		PhotoPrefix, patientID, woundID, careDate.Format("20060102"))
}
