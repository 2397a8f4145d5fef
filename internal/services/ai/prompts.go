package ai

import (
	"strings"
)

const roleSection = `<ROLE>
You are an expert in Cooklang, a markup language for cooking recipes. Your task is to rewrite the given recipe as a valid Cooklang document without losing any information.
</ROLE>`

const syntaxSection = `<SYNTAX>
- Ingredients are marked with the @ symbol. Single-word ingredients end at the first space: @salt.
- Multi-word ingredients end with braces: @ground black pepper{}.
- Quantities go inside the braces: @potato{2}, units are separated with a percent sign: @flour{250%g}.
- Cookware is marked with the # symbol the same way: #pot, #baking sheet{}.
- A timer is marked with the ~ symbol and its duration inside braces: ~{25%minutes}. A named timer looks like ~rest{10%minutes}.
- Each paragraph is one step. Separate steps with a blank line.
- Comments start with -- and run to the end of the line.
</SYNTAX>`

const rulesSection = `<RULES>
1. Keep the metadata block between the --- lines at the top exactly as given. Do not invent new metadata.
2. Mention every ingredient from the ingredient list inside the step where it is used, with its quantity and unit.
3. If an ingredient is never used in a step, add it to the first step where it fits.
4. Keep the original wording of the steps as much as possible.
5. Do not add ingredients, cookware or steps that are not in the original recipe.
6. Output only the Cooklang document, without code fences or explanations.
</RULES>`

const exampleSection = `<EXAMPLES>
Example:
Input:
---
servings: 2
---

2 potatoes
salt
Place the potatoes into a pot. Cover with water and boil for 20 minutes. Season with salt.

Output:
---
servings: 2
---

Place the @potato{2} into a #pot. Cover with @water{} and boil for ~{20%minutes}.

Season with @salt.
</EXAMPLES>`

const extractionRole = `You're an expert in finding recipe ingredients and instructions from messy texts.
Sometimes the text is not a recipe, in that case specify that in error field.
Given the text output only this JSON without any other characters:`

const extractionShape = `{
  "ingredients": [<LIST OF INGREDIENTS HERE>],
  "instructions": [<LIST OF INSTRUCTIONS HERE>],
  "error": "<ERROR MESSAGE HERE IF NO RECIPE>"
}`

const extendedExtractionShape = `{
  "title": "<RECIPE TITLE OR EMPTY>",
  "servings": "<SERVINGS OR EMPTY>",
  "prep_time": "<PREPARATION TIME OR EMPTY>",
  "cook_time": "<COOKING TIME OR EMPTY>",
  "total_time": "<TOTAL TIME OR EMPTY>",
  "ingredients": [<LIST OF INGREDIENTS HERE>],
  "instructions": [<LIST OF INSTRUCTIONS HERE>],
  "error": "<ERROR MESSAGE HERE IF NO RECIPE>"
}`

func getSourceContext(source string) string {
	switch strings.ToLower(source) {
	case "url":
		return `<SOURCE_CONTEXT>
This recipe was extracted from a web page. Ingredient lists may repeat quantities in both metric and imperial units; keep the first one given.
</SOURCE_CONTEXT>`
	case "image":
		return `<SOURCE_CONTEXT>
This recipe was read from photos with OCR. Fix obvious recognition mistakes such as "1OO g" or broken words, but do not guess missing quantities.
</SOURCE_CONTEXT>`
	default:
		return ""
	}
}

// BuildCooklangPrompt builds the conversion system prompt with optional
// source-specific context ("url", "text" or "image").
func BuildCooklangPrompt(source string) string {
	var sb strings.Builder
	sb.WriteString(roleSection)
	sb.WriteString("\n\n")

	if sCtx := getSourceContext(source); sCtx != "" {
		sb.WriteString(sCtx)
		sb.WriteString("\n\n")
	}

	sb.WriteString(syntaxSection)
	sb.WriteString("\n\n")
	sb.WriteString(rulesSection)
	sb.WriteString("\n\n")
	sb.WriteString(exampleSection)

	return sb.String()
}

// CooklangPrompt is the conversion system prompt without source context.
var CooklangPrompt = BuildCooklangPrompt("")

// BuildExtractionPrompt builds the system prompt asking for recipe fields as
// JSON. The extended shape adds title, servings and times.
func BuildExtractionPrompt(extended bool) string {
	shape := extractionShape
	if extended {
		shape = extendedExtractionShape
	}
	return extractionRole + "\n\n" + shape
}
