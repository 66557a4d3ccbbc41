package contact

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	MsgConnectionRefused = "Cannot connect to server. Please try again later."
	MsgTimeout           = "Request timeout. Please try again."
	MsgUnexpected        = "Unexpected response from server."
)

var ErrBusy = errors.New("a submission is already in progress")

type Kind int

const (
	// KindValidation means the draft failed local validation; nothing was sent.
	KindValidation Kind = iota + 1
	// KindTransport means the request did not get a response.
	KindTransport
	// KindRejected means the server answered with an error.
	KindRejected
)

type SubmitError struct {
	Kind       Kind
	StatusCode int
	Fields     FieldErrors
	Err        error
}

func (e *SubmitError) Error() string {
	if msg := e.Fields.Message(); msg != "" {
		return msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return MsgUnexpected
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// classifier maps a lowercased keyword to a field. Order matters: the first
// matching keyword wins.
var classifier = []struct {
	field    string
	keywords []string
}{
	{FieldEmail, []string{"email"}},
	{FieldPhoneNumber, []string{"phone number", "numerical input"}},
	{FieldRequestType, []string{"request type", "purpose"}},
	{FieldAttachment, []string{"file"}},
	{FieldRepresentativeName, []string{"name cannot be empty", "name cannot exceed"}},
	{FieldUniversityName, []string{"university"}},
	{FieldCountry, []string{"country"}},
	{FieldMessage, []string{"message"}},
}

// MapError splits a server message on "; " and assigns each fragment to a
// field by keyword. Unmatched fragments are collected under "general".
// This depends on the server's wording and is a best-effort parse.
func MapError(message string) FieldErrors {
	errs := FieldErrors{}
	for _, fragment := range strings.Split(message, "; ") {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		errs.add(classify(fragment), fragment)
	}
	return errs
}

func classify(fragment string) string {
	lower := strings.ToLower(fragment)
	for _, c := range classifier {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.field
			}
		}
	}
	return FieldGeneral
}

// errorBody is the server error envelope; message is a string or a list.
type errorBody struct {
	Message json.RawMessage `json:"message"`
}

// decodeMessage extracts the message of an error body. ok is false when the
// body carries no usable message.
func decodeMessage(body []byte) (string, bool) {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Message) == 0 {
		return "", false
	}

	var single string
	if err := json.Unmarshal(eb.Message, &single); err == nil {
		return single, strings.TrimSpace(single) != ""
	}

	var list []string
	if err := json.Unmarshal(eb.Message, &list); err == nil {
		joined := strings.Join(list, "; ")
		return joined, strings.TrimSpace(joined) != ""
	}
	return "", false
}
