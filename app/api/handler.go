package api

import (
	"bytes"
	"encoding/json"

	"contractrag/app/agent"
	"contractrag/app/session"
	"contractrag/types"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler serves the conversation about the live contract.
type RequestHandler struct {
	sess     *session.Session
	answerer *agent.Answerer
	letters  *agent.LetterWriter
}

func NewRequestHandler(sess *session.Session, answerer *agent.Answerer, letters *agent.LetterWriter) *RequestHandler {
	return &RequestHandler{
		sess:     sess,
		answerer: answerer,
		letters:  letters,
	}
}

func (h *RequestHandler) HandleChat(c *fiber.Ctx) error {
	var params types.ChatParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	answer, err := h.answerer.Answer(c.UserContext(), h.sess, params.UserMessage)
	if err != nil {
		return err
	}
	return c.JSON(types.ChatResponse{AIResponse: answer})
}

func (h *RequestHandler) HandleHistory(c *fiber.Ctx) error {
	return c.JSON(types.HistoryResponse{History: h.sess.Log().All()})
}

func (h *RequestHandler) HandleClauses(c *fiber.Ctx) error {
	clauses := []types.Clause{}
	if contract, release, err := h.sess.Acquire(); err == nil {
		clauses = append(clauses, contract.Clauses...)
		release()
	}
	return c.JSON(types.ClausesResponse{Clauses: clauses})
}

func (h *RequestHandler) HandleLetter(c *fiber.Ctx) error {
	letter, err := h.letters.FromHistory(c.UserContext(), h.sess)
	if err != nil {
		return err
	}
	return c.JSON(types.LetterResponse{Letter: letter})
}

func (h *RequestHandler) HandleLetterFromSelection(c *fiber.Ctx) error {
	var params types.LetterParams
	body := bytes.TrimSpace(c.Body())
	switch {
	case len(body) == 0:
	case body[0] == '[':
		// the front end may post just the selected messages
		if json.Unmarshal(body, &params.Selected) != nil {
			return ErrBadRequest()
		}
	default:
		if c.BodyParser(&params) != nil {
			return ErrBadRequest()
		}
	}

	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	letter, err := h.letters.FromSelection(c.UserContext(), h.sess, params.Request())
	if err != nil {
		return err
	}
	return c.JSON(types.LetterResponse{Letter: letter})
}
