package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/markrc139/christmas-poster-generator/internal/model"
)

const validPhoto = "data:image/jpeg;base64,/9j/4AAQSkZJRgABAQ"

func posterRequest() *model.GeneratePosterRequest {
	return &model.GeneratePosterRequest{
		MovieTitle:      "A Very Merry Mix-Up",
		ChristmasDrink:  "hot cocoa",
		TreeDecorations: "red glass baubles",
		ChristmasDinner: "roast turkey",
	}
}

func TestPosterGenerate(t *testing.T) {
	gen := &fakeGenerator{configured: true, submitID: "req-1"}
	svc := NewPosterService(gen, false)

	req := posterRequest()
	req.Photo1 = validPhoto
	req.Gender1 = "female"

	resp, err := svc.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !resp.Success || resp.RequestID != "req-1" || resp.NumPeople != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if len(gen.submitted) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(gen.submitted))
	}
	submitted := gen.submitted[0]
	if !strings.Contains(submitted.Prompt, "A woman standing prominently") {
		t.Errorf("prompt should describe the subject: %s", submitted.Prompt)
	}
	if !strings.Contains(submitted.Prompt, `"A Very Merry Mix-Up"`) {
		t.Errorf("prompt should carry the title: %s", submitted.Prompt)
	}
	if submitted.ReferenceImage != validPhoto {
		t.Errorf("expected the first photo as reference image")
	}
}

func TestPosterGenerateErrors(t *testing.T) {
	t.Run("photo required", func(t *testing.T) {
		gen := &fakeGenerator{configured: true, submitID: "x"}
		_, err := NewPosterService(gen, true).Generate(context.Background(), posterRequest())
		if !errors.Is(err, ErrPhotoRequired) {
			t.Errorf("expected ErrPhotoRequired, got %v", err)
		}
		if len(gen.submitted) != 0 {
			t.Error("nothing should be submitted")
		}
	})

	t.Run("invalid photo", func(t *testing.T) {
		req := posterRequest()
		req.Photo2 = "not a photo"
		_, err := NewPosterService(&fakeGenerator{configured: true}, false).Generate(context.Background(), req)
		if !errors.Is(err, ErrInvalidPhoto) {
			t.Errorf("expected ErrInvalidPhoto, got %v", err)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewPosterService(&fakeGenerator{}, false).Generate(context.Background(), posterRequest())
		if !errors.Is(err, ErrGeneratorNotConfigured) {
			t.Errorf("expected ErrGeneratorNotConfigured, got %v", err)
		}
	})

	t.Run("provider error is wrapped", func(t *testing.T) {
		gen := &fakeGenerator{configured: true, submitErr: errTransport}
		_, err := NewPosterService(gen, false).Generate(context.Background(), posterRequest())
		if !errors.Is(err, errTransport) {
			t.Errorf("expected wrapped provider error, got %v", err)
		}
	})
}

func TestBuildPromptGenres(t *testing.T) {
	tests := []struct {
		name     string
		photos   int
		g1, g2   string
		genre    string
		subject  string
		negative string
	}{
		{"no people", 0, "", "", GenreFamilyFilm, "An empty, cozy living room", "people, faces"},
		{"single man", 1, "male", "", GenreRomanticComedy, "A man standing", "female"},
		{"single unspecified", 1, "", "", GenreRomanticComedy, "A person standing", "more than 1 people"},
		{"mixed couple", 2, "male", "female", GenreRomanticComedy, "A man on the left and a woman on the right", "two men, two women"},
		{"two women", 2, "female", "female", GenreHolidayComedy, "Two women standing together", "masculine"},
		{"two men", 2, "male", "male", GenreHolidayComedy, "Two men standing together", "feminine"},
		{"two unspecified", 2, "", "", GenreRomanticComedy, "Two people standing together", "more than 2 people"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := posterRequest()
			if tt.photos >= 1 {
				req.Photo1, req.Gender1 = validPhoto, tt.g1
			}
			if tt.photos == 2 {
				req.Photo2, req.Gender2 = validPhoto, tt.g2
			}

			p := BuildPrompt(req)
			if p.Genre != tt.genre {
				t.Errorf("expected genre %q, got %q", tt.genre, p.Genre)
			}
			if !strings.Contains(p.Text, "Christmas "+tt.genre+" movie poster") {
				t.Errorf("genre missing from prompt: %s", p.Text)
			}
			if !strings.Contains(p.Text, tt.subject) {
				t.Errorf("expected subject %q in prompt: %s", tt.subject, p.Text)
			}
			if !strings.Contains(p.Negative, tt.negative) {
				t.Errorf("expected %q in negative prompt: %s", tt.negative, p.Negative)
			}
			for _, detail := range []string{"red glass baubles", "roast turkey", "hot cocoa"} {
				if !strings.Contains(p.Text, detail) {
					t.Errorf("expected %q in prompt", detail)
				}
			}
		})
	}
}

func TestBuildPromptUsesSecondPhotoGender(t *testing.T) {
	req := posterRequest()
	req.Photo2 = validPhoto
	req.Gender1 = "male"
	req.Gender2 = "female"

	if p := BuildPrompt(req); !strings.Contains(p.Text, "A woman standing") {
		t.Errorf("gender2 should describe photo2 when it is the only photo: %s", p.Text)
	}
}

func TestBuildPromptKeepsTitleVerbatim(t *testing.T) {
	req := posterRequest()
	req.MovieTitle = "The \"Big\" Noël\tNight"

	prompt := BuildPrompt(req)
	if !strings.Contains(prompt.Text, "typography: \"The \"Big\" Noël\tNight\"") {
		t.Errorf("title should be wrapped in plain quotes without escaping: %s", prompt.Text)
	}
	if strings.Contains(prompt.Text, `\"`) || strings.Contains(prompt.Text, `\t`) {
		t.Errorf("prompt should not carry escape sequences: %s", prompt.Text)
	}
}
