// Package vitals estimates vital signs from an uploaded patient video.
//
// Extraction is pluggable behind Extractor. The default backend probes the
// container and returns a fixed placeholder record; RemoteExtractor forwards
// the upload to an external computer-vision service. Service wraps either one
// and turns every failure into a nil result so callers fall back to manual
// entry.
package vitals

import (
	"context"
	"errors"

	"github.com/linnemanlabs/vitaltriage/internal/triage"
)

const tracerName = "github.com/linnemanlabs/vitaltriage/internal/vitals"

// SourceVideo marks a record produced by an extractor.
const SourceVideo = "video"

var (
	// ErrNotVideo is returned when the upload is not a recognised video container.
	ErrNotVideo = errors.New("not a recognised video container")

	// ErrNoVideoTrack is returned when the container holds no video samples.
	ErrNoVideoTrack = errors.New("no video track")
)

// Extractor turns raw video bytes into a vital-signs record.
type Extractor interface {
	Extract(ctx context.Context, video []byte) (*triage.VitalSigns, error)
}
