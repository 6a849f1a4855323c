package roex

import (
	"strings"

	apperrors "audiogw/internal/pkg/errors"
)

// DefaultMusicalStyle is applied when the caller omits the style.
const DefaultMusicalStyle = "POP"

// Provider-side defaults. The gateway exposes single-track operations
// only, so the mix payload pins one lead vocal track and the cleanup
// payload targets the vocal group.
const (
	defaultLoudness    = "MEDIUM"
	defaultSampleRate  = 44100
	defaultInstrument  = "VOCAL_GROUP"
	defaultPresence    = "LEAD"
	defaultPan         = "CENTRE"
	defaultReverb      = "LOW"
	defaultSoundSource = "VOCAL_GROUP"
)

// TaskRequest carries the caller-supplied inputs for a provider task.
type TaskRequest struct {
	FileURL      string
	MusicalStyle string
}

// UploadRequest is forwarded verbatim to the provider's signed-url endpoint.
type UploadRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

type masteringPreviewRequest struct {
	TrackURL        string `json:"track_url"`
	MusicalStyle    string `json:"musical_style"`
	DesiredLoudness string `json:"desired_loudness"`
	SampleRate      int    `json:"sample_rate"`
}

type trackData struct {
	TrackURL         string `json:"track_url"`
	InstrumentGroup  string `json:"instrument_group"`
	PresenceSetting  string `json:"presence_setting"`
	PanPreference    string `json:"pan_preference"`
	ReverbPreference string `json:"reverb_preference"`
}

type mixPreviewRequest struct {
	TrackData    []trackData `json:"track_data"`
	MusicalStyle string      `json:"musical_style"`
	ReturnStems  bool        `json:"return_stems"`
}

type enhanceRequest struct {
	TrackURL string `json:"track_url"`
}

type analysisRequest struct {
	TrackURL string `json:"track_url"`
}

type cleanupRequest struct {
	AudioFileLocation string `json:"audio_file_location"`
	SoundSource       string `json:"sound_source"`
}

// buildCreatePayload maps a task request onto the provider payload for the
// given service type. Callers validate the service type first, so the
// default branch only guards against new constants missing a mapping.
func buildCreatePayload(svc ServiceType, req TaskRequest) (any, error) {
	style := normalizeStyle(req.MusicalStyle)

	switch svc {
	case ServiceMasteringFull:
		return masteringPreviewRequest{
			TrackURL:        req.FileURL,
			MusicalStyle:    style,
			DesiredLoudness: defaultLoudness,
			SampleRate:      defaultSampleRate,
		}, nil
	case ServiceMixingFull:
		return mixPreviewRequest{
			TrackData: []trackData{{
				TrackURL:         req.FileURL,
				InstrumentGroup:  defaultInstrument,
				PresenceSetting:  defaultPresence,
				PanPreference:    defaultPan,
				ReverbPreference: defaultReverb,
			}},
			MusicalStyle: style,
			ReturnStems:  false,
		}, nil
	case ServiceMixEnhance:
		return enhanceRequest{TrackURL: req.FileURL}, nil
	case ServiceMixAnalysis:
		return analysisRequest{TrackURL: req.FileURL}, nil
	case ServiceCleanup:
		return cleanupRequest{
			AudioFileLocation: req.FileURL,
			SoundSource:       defaultSoundSource,
		}, nil
	}

	return nil, apperrors.Newf(apperrors.CodeInternal, "no payload mapping for service type %s", svc)
}

// normalizeStyle uppercases the musical style the way the provider's enum
// expects, falling back to the default when empty.
func normalizeStyle(style string) string {
	style = strings.ToUpper(strings.TrimSpace(style))
	if style == "" {
		return DefaultMusicalStyle
	}
	return style
}
