package vitals

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/abema/go-mp4"

	"github.com/linnemanlabs/go-core/log"

	"github.com/linnemanlabs/vitaltriage/internal/triage"
)

// container is the sniffed file format of an upload.
type container string

const (
	containerUnknown container = ""
	containerISOBMFF container = "isobmff" // mp4, mov
	containerAVI     container = "avi"
	containerWebM    container = "webm"
)

// ebmlMagic opens every Matroska/WebM file.
var ebmlMagic = []byte{0x1a, 0x45, 0xdf, 0xa3}

// isoBoxTypes are the box types accepted as the first box of an mp4 or
// QuickTime file.
var isoBoxTypes = map[string]bool{
	"ftyp": true, "moov": true, "mdat": true, "free": true, "wide": true, "skip": true,
}

func sniff(head []byte) container {
	switch {
	case len(head) >= 8 && isoBoxTypes[string(head[4:8])]:
		return containerISOBMFF
	case len(head) >= 12 && string(head[0:4]) == "RIFF" && string(head[8:12]) == "AVI ":
		return containerAVI
	case bytes.HasPrefix(head, ebmlMagic):
		return containerWebM
	default:
		return containerUnknown
	}
}

var handlerVideo = [4]byte{'v', 'i', 'd', 'e'}

// videoInfo is what the probe learned about the upload.
type videoInfo struct {
	Container container
	Frames    int
	FPS       float64
}

// PlaceholderExtractor proves the upload is a decodable video and returns a
// fixed record. It does not measure anything.
type PlaceholderExtractor struct {
	tempDir string
	logger  log.Logger
}

// NewPlaceholderExtractor returns an extractor that stages uploads in
// tempDir, or the OS default when empty.
func NewPlaceholderExtractor(tempDir string, logger log.Logger) *PlaceholderExtractor {
	if logger == nil {
		logger = log.Nop()
	}
	return &PlaceholderExtractor{tempDir: tempDir, logger: logger}
}

// Extract stages the upload on disk, probes it and returns the placeholder
// record. The temp file is removed on every return path.
func (p *PlaceholderExtractor) Extract(ctx context.Context, video []byte) (*triage.VitalSigns, error) {
	f, err := os.CreateTemp(p.tempDir, "vitals-*.video")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(f.Name()) }()
	defer func() { _ = f.Close() }()

	if _, err := f.Write(video); err != nil {
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind temp file: %w", err)
	}

	info, err := probe(ctx, f)
	if err != nil {
		return nil, err
	}

	p.logger.Info(ctx, "video probed",
		"container", info.Container,
		"bytes", len(video),
		"frames", info.Frames,
		"fps", info.FPS,
	)

	return placeholderVitals(), nil
}

// probe runs the container parser under ctx. A cancelled context returns
// immediately; the parser stops once the caller closes the file.
func probe(ctx context.Context, r io.ReadSeeker) (*videoInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		info *videoInfo
		err  error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- result{nil, fmt.Errorf("%w: parser panic: %v", ErrNotVideo, rec)}
			}
		}()
		info, err := probeContainer(r)
		done <- result{info, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.info, res.err
	}
}

func probeContainer(r io.ReadSeeker) (*videoInfo, error) {
	head := make([]byte, 12)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("%w: %v", ErrNotVideo, err)
	}
	c := sniff(head[:n])
	if c == containerUnknown {
		return nil, ErrNotVideo
	}
	if c != containerISOBMFF {
		// no parser for these; the magic is all we check
		return &videoInfo{Container: c}, nil
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind: %w", err)
	}
	pi, err := mp4.Probe(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotVideo, err)
	}
	video, err := videoTrackIDs(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotVideo, err)
	}
	for _, tr := range pi.Tracks {
		if !video[tr.TrackID] {
			continue
		}
		frames, dur := len(tr.Samples), tr.Duration
		if frames == 0 {
			// fragmented: the moov track is empty, samples live in moof/trun
			var fdur uint64
			for _, seg := range pi.Segments {
				if seg.TrackID == tr.TrackID {
					frames += int(seg.SampleCount)
					fdur += uint64(seg.Duration)
				}
			}
			dur = fdur
		}
		if frames == 0 {
			continue
		}
		info := &videoInfo{Container: c, Frames: frames}
		if tr.Timescale > 0 && dur > 0 {
			secs := float64(dur) / float64(tr.Timescale)
			info.FPS = float64(frames) / secs
		}
		return info, nil
	}
	return nil, ErrNoVideoTrack
}

// videoTrackIDs returns the IDs of tracks whose media handler is "vide".
func videoTrackIDs(r io.ReadSeeker) (map[uint32]bool, error) {
	traks, err := mp4.ExtractBox(r, nil, mp4.BoxPath{mp4.BoxTypeMoov(), mp4.BoxTypeTrak()})
	if err != nil {
		return nil, err
	}
	ids := make(map[uint32]bool, len(traks))
	for _, trak := range traks {
		boxes, err := mp4.ExtractBoxesWithPayload(r, trak, []mp4.BoxPath{
			{mp4.BoxTypeTkhd()},
			{mp4.BoxTypeMdia(), mp4.BoxTypeHdlr()},
		})
		if err != nil {
			return nil, err
		}
		var (
			id    uint32
			isVid bool
		)
		for _, b := range boxes {
			switch box := b.Payload.(type) {
			case *mp4.Tkhd:
				id = box.TrackID
			case *mp4.Hdlr:
				isVid = box.HandlerType == handlerVideo
			}
		}
		if isVid {
			ids[id] = true
		}
	}
	return ids, nil
}

func placeholderVitals() *triage.VitalSigns {
	hr, rr, conf := 72, 16, 0.7
	return &triage.VitalSigns{
		HeartRate:       &hr,
		RespiratoryRate: &rr,
		Consciousness:   triage.ConsciousnessAlert,
		Source:          SourceVideo,
		Confidence:      &conf,
	}
}
