package client

import (
	"fmt"

	"github.com/markrc139/christmas-poster-generator/internal/config"
)

// NewFaceSwapper returns the face-swap adapter named by faceswap.provider
func NewFaceSwapper(cfg *config.Config) (FaceSwapper, error) {
	switch cfg.FaceSwap.Provider {
	case config.ProviderSegmind, "":
		return NewSegmindClient(&cfg.Segmind), nil
	case config.ProviderReplicate:
		return NewReplicateClient(&cfg.Replicate), nil
	case config.ProviderRemaker:
		return NewRemakerClient(&cfg.Remaker), nil
	default:
		return nil, fmt.Errorf("unknown face swap provider %q", cfg.FaceSwap.Provider)
	}
}
