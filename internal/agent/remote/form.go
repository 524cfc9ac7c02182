package remote

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"agent-dispatch/internal/models"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// buildForm encodes the prompt and files as multipart/form-data. An empty prompt
// is omitted; every file is written under fileField with its own name.
func buildForm(promptField, prompt, fileField string, files []models.File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if prompt != "" {
		if err := writer.WriteField(promptField, prompt); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", promptField, err)
		}
	}

	for _, file := range files {
		if err := writeFilePart(writer, fileField, file); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, field string, file models.File) error {
	contentType := file.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(file.Content).String()
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part for %s: %w", file.Name, err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return fmt.Errorf("write part for %s: %w", file.Name, err)
	}
	return nil
}
