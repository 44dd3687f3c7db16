package service

import (
	"fmt"
	"strings"

	"github.com/markrc139/christmas-poster-generator/internal/model"
)

// Genre labels used in the poster prompt
const (
	GenreRomanticComedy = "romantic comedy"
	GenreHolidayComedy  = "holiday comedy"
	GenreFamilyFilm     = "holiday family film"
)

const baseNegativePrompt = "blurry, low quality, distorted faces, extra limbs, deformed hands, people facing away from camera, cropped bodies, landscape orientation, watermark"

// Prompt is the text sent to the image generator
type Prompt struct {
	Text     string
	Negative string
	Genre    string
}

// subjectGenders returns the genders of the pictured people in photo order.
func subjectGenders(req *model.GeneratePosterRequest) []model.Gender {
	var genders []model.Gender
	if req.Photo1 != "" {
		genders = append(genders, model.NormalizeGender(req.Gender1))
	}
	if req.Photo2 != "" {
		genders = append(genders, model.NormalizeGender(req.Gender2))
	}
	return genders
}

// BuildPrompt renders the Hallmark-style poster prompt for a request.
func BuildPrompt(req *model.GeneratePosterRequest) *Prompt {
	genders := subjectGenders(req)
	genre := genreFor(genders)

	var b strings.Builder
	fmt.Fprintf(&b, "A professional Christmas %s movie poster in portrait orientation (2:3 aspect ratio). ", genre)
	fmt.Fprintf(&b, "%s, positioned in the center-front of a beautifully decorated, warm, inviting living room. \n\n", describeSubjects(genders))
	fmt.Fprintf(&b, "Behind them: a crackling fireplace with stockings hung, a gorgeously decorated Christmas tree adorned with %s, warm ambient lighting from Christmas lights creating a cozy glow.\n\n", req.TreeDecorations)
	fmt.Fprintf(&b, "In the foreground: an elegantly set dinner table displaying %s, and on a nearby side table sits %s.\n\n", req.ChristmasDinner, req.ChristmasDrink)
	fmt.Fprintf(&b, "At the top of the poster in elegant, festive holiday typography: \"%s\"\n\n", req.MovieTitle)

	if len(genders) == 0 {
		b.WriteString("Style: Professional movie poster composition, cinematic lighting, warm and joyful holiday atmosphere, Hallmark Christmas movie aesthetic, portrait orientation, high quality, photorealistic.")
	} else {
		mood := "warm and joyful"
		if genre == GenreRomanticComedy {
			mood = "warm and romantic"
		}
		fmt.Fprintf(&b, "Style: Professional movie poster composition, cinematic lighting, %s holiday atmosphere, Hallmark Christmas movie aesthetic, people are the clear protagonists facing camera, portrait orientation, high quality, photorealistic. ", mood)
		fmt.Fprintf(&b, "The people should be facing forward toward the camera, fully visible, positioned prominently as the stars of this %s.", filmNoun(genre))
	}

	return &Prompt{
		Text:     b.String(),
		Negative: negativePrompt(genders),
		Genre:    genre,
	}
}

func genreFor(genders []model.Gender) string {
	switch len(genders) {
	case 0:
		return GenreFamilyFilm
	case 1:
		return GenreRomanticComedy
	}
	if genders[0] != model.GenderUnspecified && genders[0] == genders[1] {
		return GenreHolidayComedy
	}
	return GenreRomanticComedy
}

func filmNoun(genre string) string {
	if genre == GenreRomanticComedy {
		return "romantic holiday film"
	}
	return genre
}

func describeSubjects(genders []model.Gender) string {
	switch len(genders) {
	case 0:
		return "An empty, cozy living room decorated for Christmas"
	case 1:
		return fmt.Sprintf("%s standing prominently in the center foreground, facing the camera directly with a warm smile. Full body visible from head to toe, positioned as the main focal point of the scene", singular(genders[0]))
	}
	return fmt.Sprintf("%s standing together prominently in the center foreground, both facing the camera directly with warm smiles, positioned side by side. Both full bodies visible from head to toe, positioned as the main focal points of the scene", pair(genders[0], genders[1]))
}

func singular(g model.Gender) string {
	switch g {
	case model.GenderMale:
		return "A man"
	case model.GenderFemale:
		return "A woman"
	default:
		return "A person"
	}
}

// pair describes two subjects left to right
func pair(left, right model.Gender) string {
	switch {
	case left == model.GenderMale && right == model.GenderMale:
		return "Two men"
	case left == model.GenderFemale && right == model.GenderFemale:
		return "Two women"
	case left == model.GenderMale && right == model.GenderFemale:
		return "A man on the left and a woman on the right"
	case left == model.GenderFemale && right == model.GenderMale:
		return "A woman on the left and a man on the right"
	default:
		return "Two people"
	}
}

func negativePrompt(genders []model.Gender) string {
	var males, females int
	for _, g := range genders {
		switch g {
		case model.GenderMale:
			males++
		case model.GenderFemale:
			females++
		}
	}

	var extra []string
	switch {
	case len(genders) == 0:
		extra = append(extra, "people, faces")
	case males > 0 && females == 0 && males == len(genders):
		extra = append(extra, "woman, women, female, feminine features")
	case females > 0 && males == 0 && females == len(genders):
		extra = append(extra, "man, men, male, masculine features, beard")
	case males == 1 && females == 1:
		extra = append(extra, "two men, two women")
	}
	if len(genders) > 0 {
		extra = append(extra, fmt.Sprintf("more than %d people", len(genders)))
	}

	if len(extra) == 0 {
		return baseNegativePrompt
	}
	return baseNegativePrompt + ", " + strings.Join(extra, ", ")
}
