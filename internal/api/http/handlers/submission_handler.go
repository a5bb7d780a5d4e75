package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/hairult/hairstyle-service/internal/api/dto"
	"github.com/hairult/hairstyle-service/internal/imagecodec"
	"github.com/hairult/hairstyle-service/internal/service"
	apperrors "github.com/hairult/hairstyle-service/pkg/util/errorutil"
)

// Submitter queues a portrait for generation.
type Submitter interface {
	Submit(ctx context.Context, input service.SubmissionInput) (*service.Submission, error)
}

// SubmissionHandler accepts portrait submissions.
type SubmissionHandler struct {
	service       Submitter
	publicBaseURL string
	maxImageBytes int
}

// NewSubmissionHandler constructs handler. An empty publicBaseURL derives
// results links from the request.
func NewSubmissionHandler(submitter Submitter, publicBaseURL string, maxImageBytes int) *SubmissionHandler {
	return &SubmissionHandler{
		service:       submitter,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		maxImageBytes: maxImageBytes,
	}
}

// Submit POST /submissions.
func (h *SubmissionHandler) Submit(c *fiber.Ctx) error {
	multipart := isMultipart(c)

	var (
		input service.SubmissionInput
		err   error
	)
	if multipart {
		input, err = h.parseMultipart(c)
	} else {
		input, err = parseJSONSubmission(c)
	}
	if err != nil {
		return err
	}

	sub, err := h.service.Submit(c.UserContext(), input)
	if err != nil {
		return err
	}

	resultsPath := "/results/" + sub.Guest.ID
	if multipart && !wantsJSON(c) {
		return c.Redirect(resultsPath, http.StatusSeeOther)
	}

	suggestions := make([]dto.SuggestionSummary, 0, len(sub.Suggestions))
	for i := range sub.Suggestions {
		suggestions = append(suggestions, suggestionSummary(&sub.Suggestions[i]))
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.SubmissionResponse{
		GuestID:     sub.Guest.ID,
		ResultsURL:  h.baseURL(c) + resultsPath,
		Suggestions: suggestions,
	}})
}

func parseJSONSubmission(c *fiber.Ctx) (service.SubmissionInput, error) {
	var req dto.SubmissionRequest
	if err := c.BodyParser(&req); err != nil {
		return service.SubmissionInput{}, apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Image) == "" {
		return service.SubmissionInput{}, apperrors.NewValidationError("image required", nil)
	}
	img, err := imagecodec.DecodeBase64(req.Image)
	if err != nil {
		return service.SubmissionInput{}, apperrors.NewValidationError("invalid image encoding", map[string]any{"image": err.Error()})
	}
	return service.SubmissionInput{Email: req.Email, HairstyleIDs: req.HairstyleIDs, Image: img}, nil
}

func (h *SubmissionHandler) parseMultipart(c *fiber.Ctx) (service.SubmissionInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return service.SubmissionInput{}, apperrors.NewValidationError("invalid multipart form", nil)
	}

	input := service.SubmissionInput{Email: first(form.Value["email"])}
	for _, key := range []string{"hairstyle_ids", "hairstyle_ids[]", "hairstyle_id"} {
		input.HairstyleIDs = append(input.HairstyleIDs, form.Value[key]...)
	}

	files := form.File["image"]
	if len(files) == 0 {
		return service.SubmissionInput{}, apperrors.NewValidationError("image required", nil)
	}
	f, err := files[0].Open()
	if err != nil {
		return service.SubmissionInput{}, apperrors.NewValidationError("unreadable image", nil)
	}
	defer f.Close()

	limit := int64(h.maxImageBytes)
	if limit <= 0 {
		limit = files[0].Size
	}
	// One extra byte lets the service see and reject an oversized file.
	input.Image, err = io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return service.SubmissionInput{}, apperrors.NewValidationError("unreadable image", nil)
	}
	return input, nil
}

func (h *SubmissionHandler) baseURL(c *fiber.Ctx) string {
	if h.publicBaseURL != "" {
		return h.publicBaseURL
	}
	return c.BaseURL()
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(string(c.Request().Header.ContentType())), fiber.MIMEMultipartForm)
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMEApplicationJSON)
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
