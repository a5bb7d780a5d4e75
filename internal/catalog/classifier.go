package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hairult/hairstyle-service/internal/domain"
)

// Classifier turns a style name into a catalog entry.
type Classifier interface {
	Classify(ctx context.Context, style SeedStyle) (*domain.Hairstyle, error)
}

type textModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClassifier asks a text model for a JSON object constrained to the catalog taxonomy.
type GeminiClassifier struct {
	client *genai.Client
	model  textModel
}

// NewGeminiClassifier connects to the Gemini API with an API key.
func NewGeminiClassifier(ctx context.Context, apiKey, modelName string) (*GeminiClassifier, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create generative client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = classificationSchema()
	temperature := float32(0.2)
	model.Temperature = &temperature
	return &GeminiClassifier{client: client, model: model}, nil
}

// Close releases the underlying client.
func (c *GeminiClassifier) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Classify analyses the named style.
func (c *GeminiClassifier) Classify(ctx context.Context, style SeedStyle) (*domain.Hairstyle, error) {
	prompt := fmt.Sprintf("Analyze the hairstyle in detail and give me the structured data: %s", style.Name)
	if style.Description != "" {
		prompt += "\nReference description: " + style.Description
	}
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", style.Name, err)
	}
	raw, err := firstText(resp)
	if err != nil {
		return nil, fmt.Errorf("classify %q: %w", style.Name, err)
	}
	return ParseClassification(style, raw)
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("empty model response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if b.Len() == 0 {
		return "", errors.New("model response has no text")
	}
	return b.String(), nil
}

type classification struct {
	Description   string `json:"description"`
	HairLength    string `json:"hair_length"`
	CutType       string `json:"cut_type"`
	PermType      string `json:"perm_type"`
	StraightType  string `json:"straight_type"`
	UpdoType      string `json:"updo_type"`
	CurlPattern   string `json:"curl_pattern"`
	BangsType     string `json:"bangs_type"`
	VolumeType    string `json:"volume_type"`
	LayeringType  string `json:"layering_type"`
	FinishTexture string `json:"finish_texture"`
}

// ParseClassification validates the model's JSON against the taxonomy. The
// name always comes from the seed, never from the model. Unknown optional
// values are dropped; an unknown hair length is an error.
func ParseClassification(style SeedStyle, raw string) (*domain.Hairstyle, error) {
	var c classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &c); err != nil {
		return nil, fmt.Errorf("decode classification for %q: %w", style.Name, err)
	}
	if !domain.ValidAttribute("hair_length", c.HairLength) {
		return nil, fmt.Errorf("classification for %q has invalid hair_length %q", style.Name, c.HairLength)
	}

	h := &domain.Hairstyle{
		Name:       style.Name,
		HairLength: domain.HairLength(c.HairLength),
	}
	desc := style.Description
	if desc == "" {
		desc = c.Description
	}
	if desc = strings.TrimSpace(desc); desc != "" {
		if r := []rune(desc); len(r) > 512 {
			desc = string(r[:512])
		}
		h.Description = &desc
	}

	h.CutType = optional[domain.CutType]("cut_type", c.CutType)
	h.PermType = optional[domain.PermType]("perm_type", c.PermType)
	h.StraightType = optional[domain.StraightType]("straight_type", c.StraightType)
	h.UpdoType = optional[domain.UpdoType]("updo_type", c.UpdoType)
	h.CurlPattern = optional[domain.CurlPattern]("curl_pattern", c.CurlPattern)
	h.BangsType = optional[domain.BangsType]("bangs_type", c.BangsType)
	h.VolumeType = optional[domain.VolumeType]("volume_type", c.VolumeType)
	h.LayeringType = optional[domain.LayeringType]("layering_type", c.LayeringType)
	h.FinishTexture = optional[domain.FinishTexture]("finish_texture", c.FinishTexture)
	return h, nil
}

func optional[T ~string](attribute, value string) *T {
	if !domain.ValidAttribute(attribute, value) {
		return nil
	}
	v := T(value)
	return &v
}

func classificationSchema() *genai.Schema {
	props := map[string]*genai.Schema{
		"description": {
			Type:        genai.TypeString,
			Description: "A brief description of the hairstyle in two lines or under 200 characters.",
		},
	}
	for attribute, values := range domain.AttributeValues {
		props[attribute] = &genai.Schema{
			Type:     genai.TypeString,
			Format:   "enum",
			Enum:     values,
			Nullable: attribute != "hair_length",
		}
	}
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: props,
		Required:   []string{"hair_length"},
	}
}
