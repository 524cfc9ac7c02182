package translator

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"agent-dispatch/internal/models"
)

// Form field names accepted on the chat endpoint. File parts are keyed by
// attachment slot name.
const (
	FieldPrompt      = "prompt"
	FieldFileName    = "file_name"
	FieldFileContent = "file_content"
)

const genericContentType = "application/octet-stream"

var errEmptyFileName = errors.New("attached file must have a name")

// PayloadFromRequest reads a multipart (or url-encoded) chat request into a payload.
func PayloadFromRequest(req *http.Request, maxMemory int64) (models.Payload, error) {
	if err := req.ParseMultipartForm(maxMemory); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return models.Payload{}, fmt.Errorf("parse multipart form: %w", err)
		}
		if err := req.ParseForm(); err != nil {
			return models.Payload{}, fmt.Errorf("parse form: %w", err)
		}
	}

	payload := models.Payload{
		Prompt:      req.PostFormValue(FieldPrompt),
		FileName:    req.PostFormValue(FieldFileName),
		FileContent: req.PostFormValue(FieldFileContent),
	}

	if req.MultipartForm == nil {
		return payload, nil
	}

	for slot, headers := range req.MultipartForm.File {
		for _, fh := range headers {
			file, err := readFile(fh)
			if err != nil {
				return models.Payload{}, fmt.Errorf("read attachment %q in %s: %w", fh.Filename, slot, err)
			}
			payload.Attach(slot, file)
		}
	}
	return payload, nil
}

func readFile(fh *multipart.FileHeader) (models.File, error) {
	if strings.TrimSpace(fh.Filename) == "" {
		return models.File{}, errEmptyFileName
	}

	f, err := fh.Open()
	if err != nil {
		return models.File{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return models.File{}, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == genericContentType {
		contentType = ""
	}

	return models.File{
		Name:        fh.Filename,
		Content:     content,
		ContentType: contentType,
	}, nil
}
