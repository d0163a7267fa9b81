package httpclient

import (
	"bytes"
	"io"
	"maps"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"
)

// MultipartBody is a multipart/form-data body. Fields are written in key
// order so identical uploads produce identical bodies.
type MultipartBody struct {
	Fields map[string]string
	Files  []FileField
}

// FileField is one file part.
type FileField struct {
	FieldName   string
	FileName    string
	ContentType string
	Data        []byte
}

// WAVUpload is the body every sidecar accepts: form fields plus the clip
// as an "audio" part named audio.wav.
func WAVUpload(fields map[string]string, wav []byte) *MultipartBody {
	return &MultipartBody{
		Fields: fields,
		Files:  []FileField{{FieldName: "audio", FileName: "audio.wav", ContentType: "audio/wav", Data: wav}},
	}
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func (m *MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range slices.Sorted(maps.Keys(m.Fields)) {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		if err := writeFile(w, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, f FileField) error {
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h := make(textproto.MIMEHeader, 2)
	h.Set("Content-Disposition", `form-data; name="`+quoteEscaper.Replace(f.FieldName)+`"; filename="`+quoteEscaper.Replace(f.FileName)+`"`)
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = part.Write(f.Data)
	return err
}
