package contact

import (
	"io"
	"strings"
	"time"
)

type RequestType string

const (
	ChangeInformation RequestType = "CHANGE_INFORMATION"
	Cooperation       RequestType = "COOPERATION"
)

var displayToWire = map[string]RequestType{
	"Change Information": ChangeInformation,
	"Cooperation":        Cooperation,
}

// ParseRequestType accepts either the wire code or the form's display string.
func ParseRequestType(v string) (RequestType, bool) {
	v = strings.TrimSpace(v)
	switch RequestType(v) {
	case ChangeInformation, Cooperation:
		return RequestType(v), true
	}
	rt, ok := displayToWire[v]
	return rt, ok
}

func (t RequestType) Display() string {
	for display, wire := range displayToWire {
		if wire == t {
			return display
		}
	}
	return string(t)
}

const (
	MaxFiles    = 5
	MaxFileSize = 5 << 20
)

var AllowedMIMETypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/jpeg",
	"image/png",
	"image/gif",
}

// Field keys used in FieldErrors.
const (
	FieldRequestType        = "requestType"
	FieldUniversityName     = "universityName"
	FieldRepresentativeName = "representativeName"
	FieldCountry            = "country"
	FieldPhoneNumber        = "phoneNumber"
	FieldEmail              = "email"
	FieldMessage            = "message"
	FieldAttachment         = "attachment"
	FieldGeneral            = "general"
)

// FieldOrder is the order errors are reported in when flattened.
var FieldOrder = []string{
	FieldRequestType,
	FieldUniversityName,
	FieldRepresentativeName,
	FieldCountry,
	FieldPhoneNumber,
	FieldEmail,
	FieldMessage,
	FieldAttachment,
	FieldGeneral,
}

type Attachment struct {
	Name     string
	MimeType string
	Size     int64
	Content  io.Reader
}

// Draft is the contact form as the user filled it in.
type Draft struct {
	RequestType        string       `json:"requestType"`
	UniversityName     string       `json:"universityName"`
	RepresentativeName string       `json:"representativeName"`
	Country            string       `json:"country"`
	PhoneNumber        string       `json:"phoneNumber"`
	Email              string       `json:"email"`
	Message            string       `json:"message"`
	Attachments        []Attachment `json:"-"`
}

// FieldErrors maps a field key to a human readable message.
type FieldErrors map[string]string

func (fe FieldErrors) add(field, msg string) {
	if prev, ok := fe[field]; ok && prev != "" {
		fe[field] = prev + "; " + msg
		return
	}
	fe[field] = msg
}

// Message flattens the errors into one "; " separated string in FieldOrder.
func (fe FieldErrors) Message() string {
	parts := make([]string, 0, len(fe))
	for _, f := range FieldOrder {
		if msg, ok := fe[f]; ok && msg != "" {
			parts = append(parts, msg)
		}
	}
	return strings.Join(parts, "; ")
}

const (
	StatusNew        = "new"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

func IsValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

type StoredAttachment struct {
	Name     string `bson:"name" json:"name"`
	MimeType string `bson:"mime_type" json:"mimeType"`
	Size     int64  `bson:"size" json:"size"`
	Location string `bson:"location,omitempty" json:"location,omitempty"`
}

// Submission is a persisted contact request.
type Submission struct {
	ID                 string             `bson:"_id,omitempty" json:"id"`
	RequestType        RequestType        `bson:"request_type" json:"requestType"`
	UniversityName     string             `bson:"university_name" json:"universityName"`
	RepresentativeName string             `bson:"representative_name" json:"representativeName"`
	Country            string             `bson:"country" json:"country"`
	PhoneNumber        string             `bson:"phone_number" json:"phoneNumber"`
	Email              string             `bson:"email" json:"email"`
	Message            string             `bson:"message" json:"message"`
	Attachments        []StoredAttachment `bson:"attachments" json:"attachments"`
	Status             string             `bson:"status" json:"status"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

type ListFilter struct {
	RequestType string
	Status      string
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new in_progress resolved"`
}
