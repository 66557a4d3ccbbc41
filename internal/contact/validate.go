package contact

import (
	"fmt"
	"mime"
	"strings"

	"uniscout-backend/internal/validation"
)

// draftRules mirrors Draft for struct-tag validation. Each field stops at its
// first failing rule, so at most one message per text field.
type draftRules struct {
	RequestType        string `json:"requestType" validate:"request_type"`
	UniversityName     string `json:"universityName" validate:"trimmed_required"`
	RepresentativeName string `json:"representativeName" validate:"trimmed_required"`
	Country            string `json:"country" validate:"trimmed_required"`
	PhoneNumber        string `json:"phoneNumber" validate:"trimmed_required,phone_digits"`
	Email              string `json:"email" validate:"trimmed_required,email_address"`
	Message            string `json:"message" validate:"trimmed_required"`
}

var rules = newRulesValidator()

func newRulesValidator() *validation.Validator {
	v := validation.New()
	v.RegisterString("request_type", func(s string) bool {
		_, ok := ParseRequestType(s)
		return ok
	})
	return v
}

var messages = map[string]map[string]string{
	FieldRequestType: {
		"request_type": "Please select a purpose.",
	},
	FieldUniversityName: {
		"trimmed_required": "University name is required.",
	},
	FieldRepresentativeName: {
		"trimmed_required": "Name cannot be empty.",
	},
	FieldCountry: {
		"trimmed_required": "Country is required.",
	},
	FieldPhoneNumber: {
		"trimmed_required": "Phone number is required.",
		"phone_digits":     "Phone number must be a numerical input (digits with an optional leading +).",
	},
	FieldEmail: {
		"trimmed_required": "Email is required.",
		"email_address":    "Please enter a valid email address.",
	},
	FieldMessage: {
		"trimmed_required": "Message is required.",
	},
}

// Validate checks every field of d and collects all problems. An empty map
// means d can be submitted.
func Validate(d Draft) FieldErrors {
	errs := FieldErrors{}

	err := rules.Struct(draftRules{
		RequestType:        d.RequestType,
		UniversityName:     d.UniversityName,
		RepresentativeName: d.RepresentativeName,
		Country:            d.Country,
		PhoneNumber:        d.PhoneNumber,
		Email:              d.Email,
		Message:            d.Message,
	})
	for _, fe := range rules.ValidationErrors(err) {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid.", fe.Field())
		}
		errs.add(fe.Field(), msg)
	}

	if msg := validateAttachments(d.Attachments); msg != "" {
		errs[FieldAttachment] = msg
	}
	return errs
}

func validateAttachments(files []Attachment) string {
	if len(files) > MaxFiles {
		return fmt.Sprintf("You can upload a maximum of %d files.", MaxFiles)
	}

	problems := make([]string, 0)
	for _, f := range files {
		if !IsAllowedMIME(f.MimeType) {
			problems = append(problems, fmt.Sprintf("%q is not a supported file type. Allowed: PDF, DOC, DOCX, JPEG, PNG, GIF.", f.Name))
		}
		if f.Size > MaxFileSize {
			problems = append(problems, fmt.Sprintf("%q exceeds the %dMB file size limit.", f.Name, MaxFileSize>>20))
		}
	}
	return strings.Join(problems, "; ")
}

// IsAllowedMIME reports whether mimeType, ignoring parameters, is accepted
// as an attachment.
func IsAllowedMIME(mimeType string) bool {
	base, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return false
	}
	for _, allowed := range AllowedMIMETypes {
		if base == allowed {
			return true
		}
	}
	return false
}
