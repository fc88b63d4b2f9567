// Package seo asks a chat-completions model for search engine suggestions
// on a piece of content.
package seo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"text/template"

	"github.com/go-playground/validator/v10"
)

type Input struct {
	Content  string `form:"content" json:"content" validate:"required,min=50"`
	Keywords string `form:"keywords" json:"keywords,omitempty"`
}

type Output struct {
	TitleSuggestion                string   `json:"titleSuggestion" validate:"required"`
	MetaDescriptionSuggestion      string   `json:"metaDescriptionSuggestion" validate:"required"`
	KeywordSuggestions             []string `json:"keywordSuggestions" validate:"required,min=1,dive,required"`
	ContentOptimizationSuggestions string   `json:"contentOptimizationSuggestions" validate:"required"`
}

type Enhancer interface {
	Enhance(ctx context.Context, in Input) (*Output, error)
}

var ErrInvalidOutput = errors.New("model returned an incomplete suggestion")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// ValidateInput returns the message for the content field, or "" when the
// input is acceptable.
func ValidateInput(in Input) string {
	if err := validate.Struct(in); err != nil {
		return "Content must be at least 50 characters"
	}
	return ""
}

func validateOutput(out *Output) error {
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	return nil
}

var promptTemplate = template.Must(template.New("seo").Parse(`You are an SEO expert. Your goal is to provide suggestions to improve the SEO of the given content.

Content: {{.Content}}
{{if .Keywords}}
Existing Keywords: {{.Keywords}}
{{end}}
Provide the following:
- A suggested title for the content.
- A suggested meta description for the content.
- Suggested keywords to improve SEO. These should be relevant to the content.
- Suggestions for optimizing the content itself.

Ensure that all suggestions are clear, concise, and actionable.

Respond with a JSON object with the keys "titleSuggestion", "metaDescriptionSuggestion", "keywordSuggestions" (an array of strings) and "contentOptimizationSuggestions".`))

func buildPrompt(in Input) (string, error) {
	var sb strings.Builder
	if err := promptTemplate.Execute(&sb, in); err != nil {
		return "", err
	}
	return sb.String(), nil
}
