package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// Issue is a review flagged as needing host attention, with the model's
// reason when the AI path produced it.
type Issue struct {
	domain.Review
	Reason string `json:"aiReason,omitempty"`
}

// Result is always well-formed: when the AI path fails at any stage the
// detector degrades to the deterministic heuristic and says so.
type Result struct {
	Source  string  `json:"source"` // "ai" | "heuristic"
	Issues  []Issue `json:"issues"`
	Warning string  `json:"warning,omitempty"`
}

// Detector scans reviews for complaints. Enrichment is best-effort: the
// outbound call is bounded by the configured timeout and every failure
// falls back to Heuristic, never blocking or failing the caller.
type Detector struct {
	endpoint string
	key      string
	hc       *http.Client
}

func New(endpoint, key string, timeout time.Duration) *Detector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Detector{
		endpoint: endpoint,
		key:      key,
		hc:       &http.Client{Timeout: timeout},
	}
}

func (d *Detector) Detect(ctx context.Context, reviews []domain.Review) Result {
	if d.key == "" || d.endpoint == "" {
		return Result{Source: "heuristic", Issues: Heuristic(reviews)}
	}

	text, warn := d.callModel(ctx, reviews)
	if warn != "" {
		log.Warn().Str("stage", "request").Str("warning", warn).Msg("bad-review scan fell back")
		return Result{Source: "heuristic", Issues: Heuristic(reviews), Warning: warn}
	}

	bad, err := ParseBadReviews(text)
	if err != nil {
		log.Warn().Err(err).Str("stage", "parse").Msg("bad-review scan fell back")
		return Result{Source: "heuristic", Issues: Heuristic(reviews), Warning: "AI output not parsable"}
	}

	reasons := make(map[string]string, len(bad))
	for _, b := range bad {
		reasons[b.ID] = b.Reason
	}
	var issues []Issue
	for _, r := range reviews {
		if reason, ok := reasons[fmt.Sprint(r.ID)]; ok {
			issues = append(issues, Issue{Review: r, Reason: reason})
		}
	}
	return Result{Source: "ai", Issues: issues}
}

// callModel posts a compact prompt and extracts the model's text output.
// A non-empty warning means the stage failed.
func (d *Detector) callModel(ctx context.Context, reviews []domain.Review) (string, string) {
	type item struct {
		ID     int64    `json:"id"`
		Rating *float64 `json:"rating"`
		Text   string   `json:"text"`
	}
	items := make([]item, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, item{ID: r.ID, Rating: r.Rating, Text: strings.ReplaceAll(r.Text, "\n", " ")})
	}
	compact, _ := json.Marshal(items)
	prompt := strings.Join([]string{
		`You are an assistant that detects "bad" guest reviews (complaints, negative sentiment, issues that require host attention).`,
		`Given the following array of reviews (id, rating, text), return a JSON object with key "badReviews" containing an array of objects {id: number, reason: string}.`,
		`Only return valid JSON and nothing else (no explanation). If uncertain, include the review but mark reason as "unclear".`,
		`Reviews:`,
		string(compact),
	}, "\n")

	body, _ := json.Marshal(map[string]any{
		"prompt":          map[string]string{"text": prompt},
		"maxOutputTokens": 800,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", "AI request could not be built"
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.key)

	start := time.Now()
	resp, err := d.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("gemini", "generate", 0, time.Since(start))
		return "", "AI request failed"
	}
	defer resp.Body.Close()
	observability.ObserveExternal("gemini", "generate", resp.StatusCode, time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Sprintf("AI request failed with status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", "AI response unreadable"
	}
	text := modelText(raw)
	if text == "" {
		return "", "AI returned no text"
	}
	return text, ""
}

// genEnvelope covers the response shapes the generative API has shipped;
// the first populated field wins.
type genEnvelope struct {
	Candidates []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"candidates"`
	Output []struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Text string `json:"text"`
}

func modelText(raw []byte) string {
	var env genEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// not an envelope at all; treat the body as the model text
		return strings.TrimSpace(string(raw))
	}
	if len(env.Candidates) > 0 && len(env.Candidates[0].Content) > 0 {
		return env.Candidates[0].Content[0].Text
	}
	if len(env.Output) > 0 && len(env.Output[0].Content) > 0 {
		return env.Output[0].Content[0].Text
	}
	if env.Text != "" {
		return env.Text
	}
	return strings.TrimSpace(string(raw))
}

// BadReview is one flagged id in the model's answer. IDs arrive as numbers
// or strings depending on the model; both normalize to the string form.
type BadReview struct {
	ID     string
	Reason string
}

var embeddedObject = regexp.MustCompile(`(?s)\{.*\}`)

// ParseBadReviews parses the model text: strict JSON first, then the first
// embedded {...} substring when the model wrapped its answer in prose.
func ParseBadReviews(text string) ([]BadReview, error) {
	type entry struct {
		ID     any    `json:"id"`
		Reason string `json:"reason"`
	}
	type answer struct {
		BadReviews []entry `json:"badReviews"`
	}

	var a answer
	if err := json.Unmarshal([]byte(text), &a); err != nil || a.BadReviews == nil {
		m := embeddedObject.FindString(text)
		if m == "" {
			return nil, fmt.Errorf("no JSON object in model output")
		}
		a = answer{}
		if err := json.Unmarshal([]byte(m), &a); err != nil {
			return nil, fmt.Errorf("embedded object parse: %w", err)
		}
		if a.BadReviews == nil {
			return nil, fmt.Errorf("model output missing badReviews")
		}
		log.Debug().Msg("bad-review answer recovered from embedded JSON substring")
	}

	out := make([]BadReview, 0, len(a.BadReviews))
	for _, e := range a.BadReviews {
		id := ""
		switch v := e.ID.(type) {
		case float64:
			id = fmt.Sprint(int64(v))
		case string:
			id = v
		default:
			id = fmt.Sprint(v)
		}
		out = append(out, BadReview{ID: id, Reason: e.Reason})
	}
	return out, nil
}

// complaint keywords for the deterministic fallback
var badKeywords = []string{
	"dirty", "smell", "broken", "damage", "late", "rude",
	"noise", "cancel", "unreliable", "wifi", "smelly",
}

// Heuristic flags reviews with an explicit rating of 2 or below, or whose
// body mentions a known complaint keyword.
func Heuristic(reviews []domain.Review) []Issue {
	var issues []Issue
	for _, r := range reviews {
		low := strings.ToLower(r.Text)
		flagged := r.Rating != nil && *r.Rating <= 2
		if !flagged {
			for _, k := range badKeywords {
				if strings.Contains(low, k) {
					flagged = true
					break
				}
			}
		}
		if flagged {
			issues = append(issues, Issue{Review: r})
		}
	}
	return issues
}
