package api

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"contractrag/app/agent"
	"contractrag/app/session"
	"contractrag/loader"
	"contractrag/types"

	"github.com/gofiber/fiber/v2"
)

// FileHandler accepts contract PDFs and evidence photos. Both are kept in
// the upload directory.
type FileHandler struct {
	uploads   *loader.UploadStore
	sess      *session.Session
	contracts *agent.ContractLoader
	evidence  *agent.EvidenceMatcher
}

func NewFileHandler(uploads *loader.UploadStore, sess *session.Session, contracts *agent.ContractLoader, evidence *agent.EvidenceMatcher) *FileHandler {
	return &FileHandler{
		uploads:   uploads,
		sess:      sess,
		contracts: contracts,
		evidence:  evidence,
	}
}

// HandleUploadContract keeps a rejected upload out of the upload directory,
// so the file of the live contract is never overwritten by one that failed.
func (h *FileHandler) HandleUploadContract(c *fiber.Ctx) error {
	name, staged, err := h.receive(c, h.uploads.Stage)
	if err != nil {
		return err
	}

	res, err := h.contracts.Load(c.UserContext(), h.sess, staged, name)
	if err != nil {
		os.Remove(staged)
		return err
	}

	if _, err := h.uploads.Commit(staged, name); err != nil {
		os.Remove(staged)
		slog.Default().With("component", "api").Warn("contract loaded but not stored", "file", name, "error", err)
	}

	return c.JSON(types.UploadResponse{
		Message: fmt.Sprintf("Contract %s uploaded and processed successfully", res.FileName),
		Clauses: res.Clauses,
	})
}

func (h *FileHandler) HandleUploadEvidence(c *fiber.Ctx) error {
	_, path, err := h.receive(c, h.uploads.Save)
	if err != nil {
		return err
	}

	detected, matches, err := h.evidence.Match(c.UserContext(), h.sess, path)
	if err != nil {
		return err
	}

	return c.JSON(types.EvidenceResponse{
		DetectedText:   detected,
		MatchedClauses: matches,
	})
}

// receive writes the multipart "file" with write and returns its base name
// and where it was written.
func (h *FileHandler) receive(c *fiber.Ctx, write func(string, io.Reader) (string, error)) (string, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", "", ErrMissingFile("file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	path, err := write(fileHeader.Filename, file)
	if err != nil {
		return "", "", NewError(fiber.StatusBadRequest, err.Error())
	}
	name, err := h.uploads.Path(fileHeader.Filename)
	if err != nil {
		return "", "", NewError(fiber.StatusBadRequest, err.Error())
	}
	return filepath.Base(name), path, nil
}
