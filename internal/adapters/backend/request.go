package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	contentTypeHeader = "Content-Type"
	jsonContentType   = "application/json"
)

// Request describes one logical call. Body may be nil, []byte, string,
// *Multipart, or any JSON-encodable value.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   any
}

type Response struct {
	StatusCode int
	Header     http.Header
	// Body is nil for 204 responses and empty JSON bodies.
	Body []byte
}

func (r *Response) DecodeJSON(out any) error {
	if r == nil || len(r.Body) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Multipart is a form body with one file part followed by plain fields.
type Multipart struct {
	FileField string
	FileName  string
	File      []byte
	Fields    []FormField
}

type FormField struct {
	Name  string
	Value string
}

func (m *Multipart) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if m.FileField != "" {
		part, err := writer.CreateFormFile(m.FileField, m.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("create multipart file %q: %w", m.FileField, err)
		}
		if _, err := part.Write(m.File); err != nil {
			return nil, "", fmt.Errorf("write multipart file %q: %w", m.FileField, err)
		}
	}

	for _, field := range m.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("write multipart field %q: %w", field.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

// encodedBody is a request body serialized once so every retry and replay
// sends identical bytes.
type encodedBody struct {
	payload     []byte
	contentType string
	// override is set when the encoder owns the Content-Type header.
	override bool
}

func encodeBody(body any, header http.Header) (encodedBody, error) {
	switch value := body.(type) {
	case nil:
		return encodedBody{}, nil
	case []byte:
		return encodedBody{payload: value, contentType: header.Get(contentTypeHeader)}, nil
	case string:
		return encodedBody{payload: []byte(value), contentType: header.Get(contentTypeHeader)}, nil
	case *Multipart:
		payload, contentType, err := value.encode()
		if err != nil {
			return encodedBody{}, err
		}
		return encodedBody{payload: payload, contentType: contentType, override: true}, nil
	default:
		payload, err := json.Marshal(value)
		if err != nil {
			return encodedBody{}, fmt.Errorf("encode json body: %w", err)
		}
		contentType := header.Get(contentTypeHeader)
		if contentType == "" {
			contentType = jsonContentType
		}
		return encodedBody{payload: payload, contentType: contentType}, nil
	}
}

func isJSONContentType(value string) bool {
	return strings.Contains(strings.ToLower(value), jsonContentType)
}

func containsFold(value, substr string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(substr))
}
