// Package telegram implements the Bot HTTP API transport consumed by the
// scenarist core: the typed method contract, the RPC client, the long-poll
// update source, and the webhook update source.
package telegram

import (
	"encoding/json"
	"io"
)

// InputFile is a file argument of an upload-bearing method: either a
// reference to a file the API already knows, or a named upload streamed from
// a reader. Uploads are never materialised in memory.
type InputFile struct {
	fileID string
	name   string
	reader io.Reader
}

// FileID references an existing file by its API identifier.
func FileID(id string) InputFile {
	return InputFile{fileID: id}
}

// Upload streams a new file from r under the given filename.
func Upload(filename string, r io.Reader) InputFile {
	return InputFile{name: filename, reader: r}
}

// IsUpload reports whether the file must be sent as a multipart part rather
// than a file_id form field.
func (f InputFile) IsUpload() bool {
	return f.reader != nil
}

// MarshalJSON encodes existing files as their file_id. Uploads encode as
// null: they travel as multipart parts under the same field name, and null
// fields are omitted from the derived form fields.
func (f InputFile) MarshalJSON() ([]byte, error) {
	if f.IsUpload() {
		return []byte("null"), nil
	}

	return json.Marshal(f.fileID)
}

// UploadPart pairs a multipart field name with its file.
type UploadPart struct {
	Field string
	File  InputFile
}

// Method describes one RPC endpoint: its name, how a request encodes, how a
// response decodes, and which request fields are file uploads. The zero
// encoder/decoder use encoding/json with the request's snake_case tags.
type Method[Req, Res any] struct {
	// Name is the HTTP endpoint suffix, for example "sendMessage".
	Name string
	// Encode overrides JSON encoding of the request when set.
	Encode func(Req) ([]byte, error)
	// Decode overrides JSON decoding of the result payload when set.
	Decode func(json.RawMessage) (Res, error)
	// Uploads lists the file parts of the request. Nil means none.
	Uploads func(Req) []UploadPart
}

// encode produces the JSON body for the request.
func (m Method[Req, Res]) encode(req Req) ([]byte, error) {
	if m.Encode != nil {
		return m.Encode(req)
	}

	return json.Marshal(req)
}

// decode produces the typed result from the envelope's result payload.
func (m Method[Req, Res]) decode(raw json.RawMessage) (Res, error) {
	if m.Decode != nil {
		return m.Decode(raw)
	}

	var res Res
	if err := json.Unmarshal(raw, &res); err != nil {
		return res, err
	}

	return res, nil
}

// uploads lists the streamed file parts of the request.
func (m Method[Req, Res]) uploads(req Req) []UploadPart {
	if m.Uploads == nil {
		return nil
	}

	parts := make([]UploadPart, 0, 2)
	for _, part := range m.Uploads(req) {
		if part.File.IsUpload() {
			parts = append(parts, part)
		}
	}

	return parts
}
