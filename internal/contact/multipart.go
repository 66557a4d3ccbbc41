package contact

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// Wire field names of the contact endpoint.
const (
	WireRequestType    = "requestType"
	WireUniversityName = "universityName"
	WireName           = "name"
	WireCountry        = "country"
	WirePhoneNumber    = "phoneNumber"
	WireEmail          = "email"
	WireMessage        = "message"
	WireFiles          = "files"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// BuildMultipart encodes d as a multipart/form-data body. The request type is
// sent as its wire code and every attachment is appended under "files".
func BuildMultipart(d Draft) (*bytes.Buffer, string, error) {
	rt, ok := ParseRequestType(d.RequestType)
	if !ok {
		return nil, "", fmt.Errorf("encode contact form: unknown request type %q", d.RequestType)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	fields := []struct {
		name  string
		value string
	}{
		{WireRequestType, string(rt)},
		{WireUniversityName, strings.TrimSpace(d.UniversityName)},
		{WireName, strings.TrimSpace(d.RepresentativeName)},
		{WireCountry, strings.TrimSpace(d.Country)},
		{WirePhoneNumber, strings.TrimSpace(d.PhoneNumber)},
		{WireEmail, strings.TrimSpace(d.Email)},
		{WireMessage, strings.TrimSpace(d.Message)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("encode contact form: %w", err)
		}
	}

	for _, a := range d.Attachments {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			WireFiles, quoteEscaper.Replace(a.Name)))
		contentType := a.MimeType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("encode attachment %s: %w", a.Name, err)
		}
		if a.Content == nil {
			continue
		}
		if _, err := io.Copy(part, a.Content); err != nil {
			return nil, "", fmt.Errorf("encode attachment %s: %w", a.Name, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("encode contact form: %w", err)
	}
	return body, mw.FormDataContentType(), nil
}
