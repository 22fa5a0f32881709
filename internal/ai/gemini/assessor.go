package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"jobradar/internal/ai"
	"jobradar/internal/logger"
	"jobradar/internal/retry"
	"jobradar/internal/tracker"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Assessor implements ai.Scorer on top of the Gemini generator. Responses
// that fail to parse or fall outside the score bounds are reported as
// malformed, never silently clamped.
type Assessor struct {
	generator contentGenerator
	policy    retry.Policy
	logger    *zap.Logger
	maxLogLen int
}

// NewAssessor builds a gemini-backed scorer.
func NewAssessor(generator contentGenerator, policy retry.Policy, maxLogLength int, log *zap.Logger) *Assessor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Assessor{
		generator: generator,
		policy:    policy,
		logger: log.With(
			zap.String("ai_provider", "gemini"),
			zap.String("ai_model", generator.Model()),
		),
		maxLogLen: maxLogLength,
	}
}

// Score evaluates one listing against the profile and returns a tagged outcome.
func (a *Assessor) Score(ctx context.Context, listing *tracker.Listing, source *tracker.Source, profile *tracker.CandidateProfile) ai.Outcome {
	prompt, err := buildPrompt(listing, source, profile)
	if err != nil {
		return ai.Outcome{Failure: ai.FailureMalformed, Detail: err.Error()}
	}

	a.logger.Debug("gemini scoring request",
		zap.String("listing_id", listing.ID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	var raw string
	err = a.policy.Do(ctx, func() error {
		var err error
		raw, err = a.generator.GenerateContent(ctx, prompt)
		if err != nil && quotaExhausted(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		kind := ai.FailureNetwork
		if quotaExhausted(err) {
			kind = ai.FailureQuota
		}
		return ai.Outcome{Failure: kind, Detail: err.Error()}
	}

	a.logger.Debug("gemini scoring response",
		zap.String("listing_id", listing.ID),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	assessment, err := parseResponse(raw)
	if err != nil {
		return ai.Outcome{Failure: ai.FailureMalformed, Detail: err.Error()}
	}
	return ai.Outcome{Assessment: assessment}
}

func buildPrompt(listing *tracker.Listing, source *tracker.Source, profile *tracker.CandidateProfile) (string, error) {
	sourceName := ""
	var focusTags []tracker.FocusTag
	if source != nil {
		sourceName = source.Name
		focusTags = source.FocusTags
	}

	listingJSON, err := json.MarshalIndent(map[string]any{
		"title":      listing.Title,
		"source":     sourceName,
		"focus_tags": focusTags,
		"url":        listing.URL,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal listing payload: %w", err)
	}

	profileJSON, err := json.MarshalIndent(profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal profile payload: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{LISTING_JSON}}", string(listingJSON))
	prompt = strings.ReplaceAll(prompt, "{{PROFILE_JSON}}", string(profileJSON))
	return prompt, nil
}

// parseResponse validates the model output against the response contract:
// numeric score within [1,10], non-empty reasoning.
func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) || score < 1 || score > 10 {
		return nil, fmt.Errorf("score %v outside [1,10]", data["score"])
	}

	reasoning := coerceString(data["reasoning"])
	if reasoning == "" {
		return nil, fmt.Errorf("empty reasoning")
	}

	return &ai.Assessment{
		Score:      score,
		Reasoning:  reasoning,
		Confidence: coerceConfidence(data["confidence"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func quotaExhausted(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, tracker.ErrQuotaExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "quota") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "429")
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		return ""
	}
}

func coerceConfidence(v any) tracker.Confidence {
	switch tracker.Confidence(strings.ToLower(coerceString(v))) {
	case tracker.ConfidenceHigh:
		return tracker.ConfidenceHigh
	case tracker.ConfidenceLow:
		return tracker.ConfidenceLow
	default:
		return tracker.ConfidenceMedium
	}
}
