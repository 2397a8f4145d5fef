package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Confidence represents certainty in the validation result
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// MinRecipeTextLength is the shortest text QuickValidate accepts.
const MinRecipeTextLength = 30

// ContentValidationResult contains the outcome of validation
type ContentValidationResult struct {
	IsValid    bool       `json:"is_valid"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
	Missing    []string   `json:"missing"`
}

// ContentValidationConfig defines settings for validation
type ContentValidationConfig struct {
	EnableAIValidation bool
}

// Completer is the part of a provider the AI check needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// recipeKeywords for quick heuristic validation
var recipeKeywords = []string{
	// Cooking verbs
	"bake", "cook", "fry", "boil", "grill", "roast", "saute", "simmer", "steam",
	"mix", "whisk", "stir", "blend", "chop", "dice", "slice", "preheat", "prepare",
	// Ingredients indicators
	"ingredient", "cup", "tablespoon", "teaspoon", "tbsp", "tsp", "ounce", "oz", "gram", "ml", "liter",
	// Recipe terms
	"recipe", "dish", "meal", "serve", "serving", "minutes", "hours", "temperature", "degrees",
	// Common ingredients
	"flour", "sugar", "salt", "pepper", "oil", "butter", "egg", "milk", "water", "garlic", "onion",
}

// QuickValidate performs a fast heuristic check without API calls
func QuickValidate(text string) ContentValidationResult {
	content := strings.TrimSpace(text)

	if len(content) < MinRecipeTextLength {
		reason := fmt.Sprintf("Content too short (%d chars). Need at least %d chars.", len(content), MinRecipeTextLength)
		if len(content) == 0 {
			reason = "No content provided"
		}
		return ContentValidationResult{
			IsValid:    false,
			Confidence: ConfidenceHigh,
			Reason:     reason,
			Missing:    []string{"sufficient content length"},
		}
	}

	lowerContent := strings.ToLower(content)
	for _, kw := range recipeKeywords {
		if strings.Contains(lowerContent, kw) {
			return ContentValidationResult{
				IsValid:    true,
				Confidence: ConfidenceHigh,
				Reason:     "Content passed quick validation",
				Missing:    []string{},
			}
		}
	}

	return ContentValidationResult{
		IsValid:    true,
		Confidence: ConfidenceMedium,
		Reason:     "Content has sufficient length but no common recipe keywords found",
		Missing:    []string{"recipe keywords"},
	}
}

const validationSystemPrompt = "You are a recipe content validator. Analyze content and respond with JSON only."

// AIValidate asks a model whether text holds enough to build a recipe from.
func AIValidate(ctx context.Context, text string, completer Completer) (ContentValidationResult, error) {
	if completer == nil {
		return ContentValidationResult{}, fmt.Errorf("a completer is required for AI validation")
	}

	prompt := fmt.Sprintf(`Analyze if this text contains enough information to extract a recipe.

A valid recipe must have at least ONE of the following:
- Clear ingredients mentioned (e.g., "2 cups flour", "1 egg", "garlic")
- Cooking instructions or steps (e.g., "mix together", "bake for 20 minutes")

Text to analyze:
%s

Respond with ONLY a JSON object (no additional text):
{
  "has_recipe": true or false,
  "confidence": "high", "medium", or "low",
  "reason": "brief explanation",
  "missing": ["list", "of", "missing", "elements"]
}`, text)

	resp, err := completer.Complete(ctx, validationSystemPrompt, prompt)
	if err != nil {
		return ContentValidationResult{
			IsValid:    false,
			Confidence: ConfidenceLow,
			Reason:     fmt.Sprintf("AI validation failed: %v", err),
			Missing:    []string{"ai validation"},
		}, err
	}

	var parsed struct {
		HasRecipe  bool     `json:"has_recipe"`
		Confidence string   `json:"confidence"`
		Reason     string   `json:"reason"`
		Missing    []string `json:"missing"`
	}

	if err := json.Unmarshal([]byte(trimJSON(resp)), &parsed); err != nil {
		return ContentValidationResult{
			IsValid:    false,
			Confidence: ConfidenceLow,
			Reason:     fmt.Sprintf("Failed to parse AI response: %v", err),
			Missing:    []string{"ai validation parsing"},
		}, err
	}

	return ContentValidationResult{
		IsValid:    parsed.HasRecipe,
		Confidence: Confidence(parsed.Confidence),
		Reason:     parsed.Reason,
		Missing:    parsed.Missing,
	}, nil
}

// ValidateContent runs the quick check and, when it is unsure, the AI check.
func ValidateContent(ctx context.Context, text string, config ContentValidationConfig, completer Completer) (ContentValidationResult, error) {
	quickResult := QuickValidate(text)

	if !quickResult.IsValid && quickResult.Confidence == ConfidenceHigh {
		return quickResult, nil
	}
	if !config.EnableAIValidation || completer == nil || quickResult.Confidence == ConfidenceHigh {
		return quickResult, nil
	}

	aiResult, err := AIValidate(ctx, text, completer)
	if err != nil {
		// Medium confidence quick results are still valid.
		return quickResult, nil
	}
	return aiResult, nil
}

func trimJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
