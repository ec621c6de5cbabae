package multipartext

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// NewMultipartReader creates a new io.ReadSeeker that serves a single-part multipart form-data body, with src as
// the content of the form field named field. The body is streamed from src, not buffered, and can be rewound, which
// allows the HTTP client to replay it.
// Also returns the form data content type (see multipart.Writer#FormDataContentType).
func NewMultipartReader(field, filename string, src io.ReadSeeker) (io.ReadSeeker, string, error) {
	// Create the multipart header.
	buffy := &bytes.Buffer{}
	writer := multipart.NewWriter(buffy)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(filename)))
	header.Set("Content-Type", "application/octet-stream")

	// Create the actual part that will hold the data. Though we won't actually write the data just yet, since we want
	// to stream it later.
	if _, err := writer.CreatePart(header); err != nil {
		return nil, "", err
	}
	headerSize := buffy.Len()

	// Finish the multipart message.
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	r, err := MultiReadSeeker(
		bytes.NewReader(buffy.Bytes()[:headerSize]),
		src,
		bytes.NewReader(buffy.Bytes()[headerSize:]),
	)
	if err != nil {
		return nil, "", err
	}

	return r, writer.FormDataContentType(), nil
}

// Size returns the total length of r and rewinds it to the start.
func Size(r io.Seeker) (int64, error) {
	n, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	_, err = r.Seek(0, io.SeekStart)
	return n, err
}
