package generation

import (
	"fmt"
	"strings"

	"github.com/hairult/hairstyle-service/internal/domain"
)

var lengthPhrases = map[domain.HairLength]string{
	domain.HairLengthAboveEar:   "short, above the ears",
	domain.HairLengthEarToJaw:   "between ear and jaw length",
	domain.HairLengthBelowJaw:   "just below the jawline",
	domain.HairLengthShoulder:   "shoulder length",
	domain.HairLengthCollarbone: "collarbone length",
	domain.HairLengthBust:       "bust length",
	domain.HairLengthMidBack:    "mid-back length",
	domain.HairLengthWaist:      "waist length",
}

var bangsPhrases = map[domain.BangsType]string{
	domain.BangsTypeSeeThrough: "light see-through bangs",
	domain.BangsTypeFull:       "full bangs",
	domain.BangsTypeChoppy:     "choppy bangs",
	domain.BangsTypeCenterPart: "a center part with no bangs",
	domain.BangsTypeSidePart:   "a side part",
	domain.BangsTypeSlickBack:  "hair slicked back off the forehead",
}

// BuildPrompt renders the instruction sent with the portrait. Unset attributes
// are omitted.
func BuildPrompt(h domain.Hairstyle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Change only the hairstyle of the person in this photo to a %s.", h.Name)
	if h.Description != nil && strings.TrimSpace(*h.Description) != "" {
		fmt.Fprintf(&b, " %s.", strings.TrimSuffix(strings.TrimSpace(*h.Description), "."))
	}

	details := attributePhrases(h)
	if len(details) > 0 {
		fmt.Fprintf(&b, " Hairstyle details: %s.", strings.Join(details, "; "))
	}

	b.WriteString(" Keep the face, facial features, skin tone, expression, clothing and background exactly the same.")
	b.WriteString(" The result must look like a natural, realistic photograph of the same person.")
	return b.String()
}

func attributePhrases(h domain.Hairstyle) []string {
	var out []string
	if phrase, ok := lengthPhrases[h.HairLength]; ok {
		out = append(out, "length "+phrase)
	}
	if h.CutType != nil {
		out = append(out, fmt.Sprintf("%s cut", splitWords(string(*h.CutType))))
	}
	if h.PermType != nil {
		out = append(out, fmt.Sprintf("%s perm", splitWords(strings.ReplaceAll(string(*h.PermType), "_", "-"))))
	}
	if h.StraightType != nil {
		out = append(out, fmt.Sprintf("%s straightening", splitWords(string(*h.StraightType))))
	}
	if h.UpdoType != nil {
		out = append(out, fmt.Sprintf("styled as a %s", splitWords(string(*h.UpdoType))))
	}
	if h.CurlPattern != nil {
		out = append(out, fmt.Sprintf("%s curls", splitWords(string(*h.CurlPattern))))
	}
	if h.BangsType != nil {
		if phrase, ok := bangsPhrases[*h.BangsType]; ok {
			out = append(out, phrase)
		}
	}
	if h.VolumeType != nil {
		out = append(out, fmt.Sprintf("%s volume", splitWords(string(*h.VolumeType))))
	}
	if h.LayeringType != nil {
		out = append(out, fmt.Sprintf("%s layering", splitWords(string(*h.LayeringType))))
	}
	if h.FinishTexture != nil {
		out = append(out, fmt.Sprintf("%s finish", splitWords(string(*h.FinishTexture))))
	}
	return out
}

// splitWords turns "OneLength" into "one length".
func splitWords(s string) string {
	var b strings.Builder
	var prev rune
	for _, r := range s {
		if r >= 'A' && r <= 'Z' && prev >= 'a' && prev <= 'z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.ToLower(b.String())
}
