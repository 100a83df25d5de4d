package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

type Validater interface {
	Validate() map[string]string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(letterParamsLevel, LetterParams{})
	return v
}

// ChatParams is the chat request body. A blank message is accepted here and
// rejected by the answer pipeline as ErrMissingQuestion.
type ChatParams struct {
	UserMessage string `json:"user_message" validate:"max=4000"`
}

type LetterParams struct {
	Selected []string `json:"selected" validate:"max=200"`
	Notes    []string `json:"notes,omitempty" validate:"omitempty,dive,max=2000"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *ChatParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *LetterParams) Validate() map[string]string {
	return validateStruct(params)
}

func (params *LetterParams) Request() LetterRequest {
	return LetterRequest{Selected: params.Selected, Notes: params.Notes}
}

// notes are optional, but when present there is exactly one per selection.
func letterParamsLevel(sl validator.StructLevel) {
	params := sl.Current().Interface().(LetterParams)
	if len(params.Notes) > 0 && len(params.Notes) != len(params.Selected) {
		sl.ReportError(params.Notes, "Notes", "notes", "len_selected", "")
	}
}

func validateStruct(s any) map[string]string {
	if err := validate.Struct(s); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return map[string]string{"request": err.Error()}
		}
		errors := make(map[string]string)
		for _, e := range errs {
			errors[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
		return errors
	}
	return nil
}

type ChatResponse struct {
	AIResponse string `json:"ai_response"`
}

type LetterResponse struct {
	Letter string `json:"letter"`
}

type UploadResponse struct {
	Message string `json:"message"`
	Clauses int    `json:"clauses"`
}

type EvidenceResponse struct {
	DetectedText   string          `json:"detected_text"`
	MatchedClauses []EvidenceMatch `json:"matched_clauses"`
}

type HistoryResponse struct {
	History []ConversationTurn `json:"history"`
}

type ClausesResponse struct {
	Clauses []Clause `json:"clauses"`
}
