package recipe

import (
	"fmt"
	"strings"

	"fridge2food/internal/core/ai/provider"
)

// buildCheckPrompt 食材檢查提示詞
func buildCheckPrompt(ingredients string) string {
	languages := make([]string, 0, len(SupportedLanguages)+1)
	for _, lang := range SupportedLanguages {
		languages = append(languages, string(lang))
	}
	languages = append(languages, string(LanguageUnknown))

	return fmt.Sprintf(`You are a kitchen assistant. Decide whether the following text is a list of food ingredients that could be cooked into a dish, and detect which language it is written in.
Text:
%s

Rules:
1. isValid is true only if the text names real, edible ingredients
2. language must be one of: %s
3. Use "Unknown" when the language cannot be determined
4. Respond with a single JSON object and nothing else

Response format:
{"isValid": true, "language": "English"}`,
		ingredients,
		strings.Join(languages, ", "))
}

// buildRecipePrompt 食譜生成提示詞
func buildRecipePrompt(req RecipeRequest, currency string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert chef. Create one recipe that uses the following ingredients.\n")
	sb.WriteString("Ingredients:\n")
	for _, item := range splitForPrompt(req.Ingredients) {
		sb.WriteString(fmt.Sprintf("- %s\n", item))
	}
	sb.WriteString(fmt.Sprintf("Servings: %d\n", req.Servings))
	sb.WriteString(fmt.Sprintf("Language: %s\n", req.Language))
	if req.PriceRange != nil {
		sb.WriteString(fmt.Sprintf("Budget for all ingredients: %.2f to %.2f %s\n", req.PriceRange.Min, req.PriceRange.Max, currency))
	}

	sb.WriteString("\nRequirements:\n")
	sb.WriteString(fmt.Sprintf("1. Write the title, ingredient names, quantities and steps in %s\n", req.Language))
	sb.WriteString(fmt.Sprintf("2. Scale every quantity for %d serving(s) and express it in mass units (g or kg, ml for liquids)\n", req.Servings))
	sb.WriteString("3. Every ingredient needs a non-empty name and quantity\n")
	sb.WriteString("4. Each step is one plain sentence without numbering\n")
	if req.PriceRange != nil {
		sb.WriteString(fmt.Sprintf("5. Give every ingredient an estimated price in %s and keep the total inside the budget\n", currency))
	}
	sb.WriteString("\nRespond with a single JSON object and nothing else:\n")
	if req.PriceRange != nil {
		sb.WriteString(`{"title": "...", "ingredients": [{"name": "...", "quantity": "...", "price": "..."}], "steps": ["..."]}`)
	} else {
		sb.WriteString(`{"title": "...", "ingredients": [{"name": "...", "quantity": "..."}], "steps": ["..."]}`)
	}

	return sb.String()
}

func splitForPrompt(raw string) []string {
	items := strings.Split(raw, ",")
	out := items[:0]
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return []string{raw}
	}
	return out
}

// checkSchema 食材檢查的輸出結構
func checkSchema() *provider.Schema {
	enum := make([]interface{}, 0, len(SupportedLanguages)+1)
	for _, lang := range SupportedLanguages {
		enum = append(enum, string(lang))
	}
	enum = append(enum, string(LanguageUnknown))

	return &provider.Schema{
		Name: "ingredient_check",
		Definition: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"isValid":  map[string]interface{}{"type": "boolean"},
				"language": map[string]interface{}{"type": "string", "enum": enum},
			},
			"required":             []interface{}{"isValid", "language"},
			"additionalProperties": false,
		},
	}
}

// recipeSchema 食譜的輸出結構，有預算時才要求 price
func recipeSchema(withPrice bool) *provider.Schema {
	ingredientProps := map[string]interface{}{
		"name":     map[string]interface{}{"type": "string"},
		"quantity": map[string]interface{}{"type": "string"},
	}
	ingredientRequired := []interface{}{"name", "quantity"}
	if withPrice {
		ingredientProps["price"] = map[string]interface{}{"type": "string"}
		ingredientRequired = append(ingredientRequired, "price")
	}

	return &provider.Schema{
		Name: "recipe",
		Definition: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"title": map[string]interface{}{"type": "string"},
				"ingredients": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type":                 "object",
						"properties":           ingredientProps,
						"required":             ingredientRequired,
						"additionalProperties": false,
					},
				},
				"steps": map[string]interface{}{
					"type":  "array",
					"items": map[string]interface{}{"type": "string"},
				},
			},
			"required":             []interface{}{"title", "ingredients", "steps"},
			"additionalProperties": false,
		},
	}
}
