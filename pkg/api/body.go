package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Body interface {
	// ToReader returns the encoded body and its content type. An empty content
	// type on a multipart body means "send no Content-Type header".
	ToReader() (io.Reader, string, error)

	// Multipart reports whether the body is a multipart container that owns
	// its own Content-Type.
	Multipart() bool
}

type valueBody struct {
	v any
}

// Value encodes any JSON-serializable value as the request body.
func Value(v any) Body {
	return valueBody{v: v}
}

func (b valueBody) ToReader() (io.Reader, string, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(data), ContentTypeJSON, nil
}

func (valueBody) Multipart() bool {
	return false
}

type FormDataFile struct {
	Name    string
	Content io.Reader
}

// FormData is a multipart/form-data body. The boundary is chosen when the body
// is encoded and reported through the content type.
type FormData struct {
	Fields map[string]string
	Files  map[string]FormDataFile
}

func (f FormData) ToReader() (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	fields := maps.Keys(f.Fields)
	slices.Sort(fields)
	for _, key := range fields {
		if err := writer.WriteField(key, f.Fields[key]); err != nil {
			return nil, "", err
		}
	}

	files := maps.Keys(f.Files)
	slices.Sort(files)
	for _, key := range files {
		file := f.Files[key]
		part, err := writer.CreateFormFile(key, file.Name)
		if err != nil {
			return nil, "", err
		}

		if file.Content != nil {
			if _, err := io.Copy(part, file.Content); err != nil {
				return nil, "", fmt.Errorf("copy form file %s: %w", key, err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return buf, writer.FormDataContentType(), nil
}

func (FormData) Multipart() bool {
	return true
}

// Raw passes an already encoded multipart stream through untouched.
type Raw struct {
	Reader      io.Reader
	ContentType string
}

func (r Raw) ToReader() (io.Reader, string, error) {
	return r.Reader, r.ContentType, nil
}

func (Raw) Multipart() bool {
	return true
}

var (
	_ Body = JSON{}
	_ Body = FormData{}
	_ Body = Raw{}
)
