package text

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ashfall-game/ashfall/internal/engine"
	"github.com/ashfall-game/ashfall/internal/repair"
)

//go:embed prompts/narrate.txt
var narratePrompt string

//go:embed prompts/status.txt
var statusPrompt string

const (
	defaultModel = "gemini-2.5-flash"
	imageModel   = "gemini-2.0-flash-exp-image-generation"
)

// Gemini implements the narration, status and image collaborators on top of
// one genai client.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = defaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Close() { g.client.Close() }

var (
	narrateTmpl = template.Must(template.New("narrate").Parse(narratePrompt))
	statusTmpl  = template.Must(template.New("status").Parse(statusPrompt))
)

func (g *Gemini) Narrate(ctx context.Context, req engine.NarrationRequest) (engine.NarrationResult, error) {
	data := struct {
		Year                             int
		Language, Location, Clock        string
		PlayerJSON, QuestsJSON, NPCsJSON string
		History, Action                  string
	}{
		Year:       req.Year,
		Language:   languageName(req.Language),
		Location:   req.Location,
		Clock:      req.Clock,
		PlayerJSON: mustJSON(req.Player),
		QuestsJSON: mustJSON(req.Quests),
		NPCsJSON:   mustJSON(req.KnownNPCs),
		History:    renderHistory(req.History),
		Action:     req.Action,
	}
	var buf bytes.Buffer
	if err := narrateTmpl.Execute(&buf, data); err != nil {
		return engine.NarrationResult{}, err
	}
	raw, sources, err := g.generateText(ctx, buf.String())
	if err != nil {
		return engine.NarrationResult{}, err
	}
	var res engine.NarrationResult
	if err := repair.ParseInto(raw, &res); err != nil {
		return engine.NarrationResult{}, err
	}
	res.Sources = append(res.Sources, sources...)
	return res, nil
}

func (g *Gemini) ExtractStatus(ctx context.Context, req engine.StatusRequest) (engine.StatusUpdate, error) {
	data := struct {
		Year                             int
		Location, Clock                  string
		PlayerJSON, QuestsJSON, NPCsJSON string
		Narration                        string
	}{
		Year:       req.Year,
		Location:   req.Location,
		Clock:      req.Clock,
		PlayerJSON: mustJSON(req.Player),
		QuestsJSON: mustJSON(req.Quests),
		NPCsJSON:   mustJSON(req.KnownNPCs),
		Narration:  req.Narration,
	}
	var buf bytes.Buffer
	if err := statusTmpl.Execute(&buf, data); err != nil {
		return engine.StatusUpdate{}, err
	}
	raw, _, err := g.generateText(ctx, buf.String())
	if err != nil {
		return engine.StatusUpdate{}, err
	}
	var up engine.StatusUpdate
	if err := repair.ParseInto(raw, &up); err != nil {
		return engine.StatusUpdate{}, err
	}
	return up, nil
}

// GenerateImage returns a data URL for the scene. Failures come back as a
// display string, never an error that could abort a turn.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string, opts engine.ImageOptions) engine.ImageResult {
	model := g.client.GenerativeModel(imageModel)
	style := "desaturated, gritty, 1950s retro-futurism, post-nuclear wasteland"
	if opts.HighQuality {
		style += ", highly detailed"
	}
	resp, err := model.GenerateContent(ctx, genai.Text(fmt.Sprintf("Generate an image: %s. Style: %s.", prompt, style)))
	if err != nil {
		return engine.ImageResult{Err: err.Error()}
	}
	if len(resp.Candidates) == 0 {
		return engine.ImageResult{Err: "no image returned"}
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok {
			url := fmt.Sprintf("data:%s;base64,%s", blob.MIMEType, base64.StdEncoding.EncodeToString(blob.Data))
			return engine.ImageResult{URL: url, Sources: citations(resp.Candidates[0])}
		}
	}
	return engine.ImageResult{Err: "response carried no image data"}
}

func (g *Gemini) generateText(ctx context.Context, prompt string) (string, []engine.Source, error) {
	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil, fmt.Errorf("no content returned")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String(), citations(resp.Candidates[0]), nil
}

func citations(c *genai.Candidate) []engine.Source {
	if c == nil || c.CitationMetadata == nil {
		return nil
	}
	var out []engine.Source
	for _, cs := range c.CitationMetadata.CitationSources {
		if cs == nil || cs.URI == nil {
			continue
		}
		out = append(out, engine.Source{Title: *cs.URI, URL: *cs.URI})
	}
	return out
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func renderHistory(entries []engine.HistoryEntry) string {
	if len(entries) == 0 {
		return "(the adventure is just beginning)"
	}
	var b strings.Builder
	for _, e := range entries {
		switch e.Role {
		case engine.RolePlayer:
			b.WriteString("Player: ")
		default:
			b.WriteString("Narrator: ")
		}
		b.WriteString(e.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func languageName(code string) string {
	switch code {
	case "de":
		return "German"
	case "es":
		return "Spanish"
	case "fr":
		return "French"
	default:
		return "English"
	}
}
