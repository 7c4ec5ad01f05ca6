package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nimbusdrive/nimbus/internal/model"
	"google.golang.org/genai"
)

const (
	// Character caps keep prompt sizes bounded for large text files.
	analyzeContentCap = 10000
	chatContentCap    = 20000

	unsupportedSummary = "File type not supported for auto-analysis"
	failedSummary      = "Failed to analyze file."

	imageInstruction = "Analyze this image. Return a raw JSON object with a 'summary' (max 2 sentences description) and 'tags' (array of 3-5 keywords). Do not wrap in markdown code blocks."
)

// Analysis is the result of a file summarization request.
type Analysis struct {
	Summary string   `json:"summary"`
	Tags    []string `json:"tags"`
}

// Service summarizes file content and answers stateless single-turn questions
// about a file. Analyze never fails: remote and parse errors degrade to a
// fixed failure result so the upload path is unaffected.
type Service interface {
	Analyze(ctx context.Context, file *model.File, image []byte) Analysis
	Chat(ctx context.Context, file *model.File, image []byte, message string) (string, error)
}

// Gemini implements Service against the Gemini API.
type Gemini struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

func NewGemini(ctx context.Context, apiKey, textModel, imageModel string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Gemini{
		client:     client,
		textModel:  textModel,
		imageModel: imageModel,
	}, nil
}

// Analyze summarizes an image (from its bytes) or a text-like file (from its
// extracted content). Other kinds return a fixed unsupported result without a
// remote call.
func (g *Gemini) Analyze(ctx context.Context, file *model.File, image []byte) Analysis {
	switch {
	case file.Kind == model.KindImage && len(image) > 0:
		return g.analyzeImage(ctx, file, image)
	case file.TextLike() && file.HasContent():
		return g.analyzeText(ctx, file)
	default:
		return Analysis{Summary: unsupportedSummary, Tags: []string{}}
	}
}

func (g *Gemini) analyzeImage(ctx context.Context, file *model.File, image []byte) Analysis {
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromBytes(image, file.MimeType),
			genai.NewPartFromText(imageInstruction),
		},
	}}

	// The image model does not support JSON response mode, so the prompt asks
	// for raw JSON and the reply may arrive wrapped in a code fence.
	text, err := g.generate(ctx, g.imageModel, contents, nil)
	if err != nil {
		slog.Error("image analysis failed", "error", err, "file_id", file.ID)
		return Analysis{Summary: failedSummary, Tags: []string{}}
	}

	text = stripFences(text)

	var analysis Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		slog.Warn("image analysis returned non-JSON reply", "file_id", file.ID)
		return Analysis{Summary: text, Tags: []string{}}
	}
	return analysis
}

func (g *Gemini) analyzeText(ctx context.Context, file *model.File) Analysis {
	sample := truncate(*file.Content, analyzeContentCap)

	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			genai.NewPartFromText(fmt.Sprintf("Analyze the following text file named %q.\n\nContent:\n%s", file.Name, sample)),
		},
	}}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"summary": {Type: genai.TypeString, Description: "A concise overview of the file content."},
				"tags":    {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}, Description: "Relevant keywords."},
			},
			Required: []string{"summary", "tags"},
		},
	}

	text, err := g.generate(ctx, g.textModel, contents, config)
	if err != nil {
		slog.Error("text analysis failed", "error", err, "file_id", file.ID)
		return Analysis{Summary: failedSummary, Tags: []string{}}
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(text), &analysis); err != nil {
		slog.Warn("text analysis returned non-JSON reply", "file_id", file.ID)
		return Analysis{Summary: failedSummary, Tags: []string{}}
	}
	return analysis
}

// Chat answers a single-turn question about a file. Every call re-attaches
// the file context; no conversation state is kept on either side.
func (g *Gemini) Chat(ctx context.Context, file *model.File, image []byte, message string) (string, error) {
	var parts []*genai.Part

	modelName := g.textModel
	if file.Kind == model.KindImage && len(image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image, file.MimeType))
		modelName = g.imageModel
	} else if file.TextLike() && file.HasContent() {
		parts = append(parts, genai.NewPartFromText(fmt.Sprintf("Context File Content:\n%s\n\n", truncate(*file.Content, chatContentCap))))
	}

	parts = append(parts, genai.NewPartFromText(message))

	contents := []*genai.Content{{Role: genai.RoleUser, Parts: parts}}

	text, err := g.generate(ctx, modelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	if text == "" {
		return "I couldn't generate a response.", nil
	}
	return text, nil
}

func (g *Gemini) generate(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}
	return strings.TrimSpace(text), nil
}

// stripFences removes markdown code-fence wrapping that models sometimes add
// around JSON replies despite instructions not to.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "")
}
