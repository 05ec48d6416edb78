package clip

import (
	"context"

	"yt-clipper/domain/video"
)

// VideoInfo is the metadata returned for a video
type VideoInfo struct {
	Title     string          `json:"title"`
	Thumbnail string          `json:"thumbnail"`
	AudioURL  string          `json:"audioUrl"`
	Duration  int             `json:"duration"`
	Segments  []video.Segment `json:"segments"`
}

// MetadataService coordinates metadata lookups
type MetadataService struct {
	resolver video.Resolver
}

// NewMetadataService creates a new MetadataService
func NewMetadataService(resolver video.Resolver) *MetadataService {
	return &MetadataService{resolver: resolver}
}

// VideoInfo resolves id and plans its playback segments
func (s *MetadataService) VideoInfo(ctx context.Context, id string) (*VideoInfo, error) {
	ref, err := video.NewVideoReference(id)
	if err != nil {
		return nil, err
	}

	src, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	return &VideoInfo{
		Title:     src.Title,
		Thumbnail: ref.ThumbnailURL(),
		AudioURL:  src.Stream.URL,
		Duration:  src.Duration,
		Segments:  src.Segments(),
	}, nil
}
