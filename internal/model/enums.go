package model

import (
	"fmt"
	"strings"
)

// Stage is the pipeline stage tag round-tripped by the client as "step".
type Stage string

const (
	StageGeneration    Stage = "generation"
	StageFaceSwap      Stage = "faceswap" // alias of faceswap1
	StageFaceSwap1     Stage = "faceswap1"
	StageFaceSwap2     Stage = "faceswap2"
	StageFaceDetect    Stage = "face-detect"
	StageFaceSwapMulti Stage = "face-swap-multi"
	StageFaceSwapOne   Stage = "faceswap-single"
)

var ValidStages = []Stage{
	StageGeneration, StageFaceSwap, StageFaceSwap1, StageFaceSwap2,
	StageFaceDetect, StageFaceSwapMulti, StageFaceSwapOne,
}

// ParseStage resolves the client supplied step. An empty step is the initial stage.
func ParseStage(s string) (Stage, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return StageGeneration, nil
	}
	for _, st := range ValidStages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid step %q", s)
}

// Poll status
type PollStatus string

const (
	PollStatusProcessing PollStatus = "processing"
	PollStatusCompleted  PollStatus = "completed"
	PollStatusFailed     PollStatus = "failed"
)

// Gender of a pictured subject, used to bias the prompt
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
)

// NormalizeGender maps free-form input onto a supported gender.
func NormalizeGender(s string) Gender {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "man", "m", "boy", "he":
		return GenderMale
	case "female", "woman", "f", "girl", "she":
		return GenderFemale
	default:
		return GenderUnspecified
	}
}
