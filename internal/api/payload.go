package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// ImageOp is the explicit image directive carried by create/update payloads.
// Field omission is ambiguous between "no change" and "remove", so the
// intent is always spelled out.
type ImageOp int

const (
	// ImageKeep leaves any stored image untouched.
	ImageKeep ImageOp = iota
	// ImageReplace uploads new image bytes.
	ImageReplace
	// ImageClear removes the stored image.
	ImageClear
)

// ImageUpdate bundles the directive with the staged file for ImageReplace.
type ImageUpdate struct {
	Op       ImageOp
	Filename string
	Data     io.Reader
}

// DesignPayload is the full state sent on create and update. The backend
// has no partial-patch support: optional text fields are always resent, and
// an omitted price means "no price set", not "leave unchanged".
type DesignPayload struct {
	Title       string
	Description string
	Category    string
	Currency    string
	Price       string // empty string omits the field entirely
	Image       ImageUpdate
}

// encodeMultipart writes the payload as a multipart body. Returns the body
// and its content type.
func (p DesignPayload) encodeMultipart() (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := map[string]string{
		"title":       p.Title,
		"description": p.Description,
		"category":    p.Category,
		"currency":    p.Currency,
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("encode field %s: %w", name, err)
		}
	}
	if p.Price != "" {
		if err := mw.WriteField("price", p.Price); err != nil {
			return nil, "", fmt.Errorf("encode field price: %w", err)
		}
	}

	switch p.Image.Op {
	case ImageReplace:
		part, err := mw.CreateFormFile("image", p.Image.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("encode image part: %w", err)
		}
		if _, err := io.Copy(part, p.Image.Data); err != nil {
			return nil, "", fmt.Errorf("copy image bytes: %w", err)
		}
	case ImageClear:
		if err := mw.WriteField("remove_image", "true"); err != nil {
			return nil, "", fmt.Errorf("encode remove_image: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
