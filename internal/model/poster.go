package model

// GeneratePosterRequest is the body of POST /api/generate-poster
type GeneratePosterRequest struct {
	MovieTitle      string `json:"movieTitle" validate:"required"`
	ChristmasDrink  string `json:"christmasDrink" validate:"required"`
	TreeDecorations string `json:"treeDecorations" validate:"required"`
	ChristmasDinner string `json:"christmasDinner" validate:"required"`
	Photo1          string `json:"photo1,omitempty"`
	Photo2          string `json:"photo2,omitempty"`
	Gender1         string `json:"gender1,omitempty"`
	Gender2         string `json:"gender2,omitempty"`
}

// NumPeople counts the supplied reference photos.
func (r *GeneratePosterRequest) NumPeople() int {
	n := 0
	if r.Photo1 != "" {
		n++
	}
	if r.Photo2 != "" {
		n++
	}
	return n
}

// GeneratePosterResponse is returned once the generation job is queued
type GeneratePosterResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"requestId"`
	Message   string `json:"message,omitempty"`
	NumPeople int    `json:"numPeople"`
}

// CheckStatusRequest is the body of POST /api/check-status.
// Every field except RequestID is pipeline state echoed back by the client.
type CheckStatusRequest struct {
	RequestID         string `json:"requestId"`
	Step              string `json:"step,omitempty"`
	Photo1            string `json:"photo1,omitempty"`
	Photo2            string `json:"photo2,omitempty"`
	DetectJobID       string `json:"detectJobId,omitempty"`
	GeneratedImageURL string `json:"generatedImageUrl,omitempty"`
}

// PollResponse is the result of a single status check
type PollResponse struct {
	Status            PollStatus `json:"status"`
	Message           string     `json:"message,omitempty"`
	Step              Stage      `json:"step,omitempty"`
	SwapRequestID     string     `json:"swapRequestId,omitempty"`
	ImageURL          string     `json:"imageUrl,omitempty"`
	GeneratedImageURL string     `json:"generatedImageUrl,omitempty"`
	DetectJobID       string     `json:"detectJobId,omitempty"`
	Error             string     `json:"error,omitempty"`
}

// Processing reports that the caller should poll stage again.
func Processing(stage Stage, message string) *PollResponse {
	return &PollResponse{Status: PollStatusProcessing, Step: stage, Message: message}
}

// Completed reports a terminal result image.
func Completed(imageURL string) *PollResponse {
	return &PollResponse{Status: PollStatusCompleted, ImageURL: imageURL}
}

// Failed reports a terminal failure. It never carries a step.
func Failed(errMsg string) *PollResponse {
	return &PollResponse{Status: PollStatusFailed, Error: errMsg}
}
