package draft

import (
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type MIMEType string

const (
	MIMETypePlainText MIMEType = "text/plain"
	MIMETypeHTML      MIMEType = "text/html"
)

// System label ids of the folders every draft belongs to.
const (
	LabelAllDrafts = "1"
	LabelAllMail   = "5"
	LabelDrafts    = "8"
)

type Sender struct {
	Address string
	Name    string
}

type Recipient struct {
	Address string
	Name    string
	Group   string
}

type Attachment struct {
	ID         string
	Name       string
	MIMEType   string
	Size       int64
	KeyPackets string
	Headers    map[string]string

	// Signature is the armored detached signature of the attachment content, if it was signed.
	Signature string
}

func (a Attachment) Equal(other Attachment) bool {
	return a.ID == other.ID &&
		a.Name == other.Name &&
		a.MIMEType == other.MIMEType &&
		a.Size == other.Size &&
		a.KeyPackets == other.KeyPackets &&
		a.Signature == other.Signature &&
		maps.Equal(a.Headers, other.Headers)
}

// IsInline reports whether the attachment is displayed within the message body rather than next to it.
func (a Attachment) IsInline() bool {
	for key, value := range a.Headers {
		if strings.EqualFold(key, "Content-Disposition") {
			return strings.HasPrefix(strings.ToLower(strings.TrimSpace(value)), "inline")
		}
	}

	return false
}

// Draft is a snapshot of the locally stored draft content. Body holds the armored encrypted body.
type Draft struct {
	ID ID

	ConversationID string
	AddressID      string
	ExternalID     string

	Sender  Sender
	Subject string
	ToList  []Recipient
	CCList  []Recipient
	BCCList []Recipient
	ReplyTo []Recipient

	LabelIDs       []string
	ExpirationTime int64

	Body        string
	MIMEType    MIMEType
	Header      string
	Attachments []Attachment
}

// NewEmpty returns the draft used when nothing is stored for the identity yet.
func NewEmpty(id ID, sender Sender, addressID string) Draft {
	return Draft{
		ID:          id,
		AddressID:   addressID,
		Sender:      sender,
		ToList:      []Recipient{},
		CCList:      []Recipient{},
		BCCList:     []Recipient{},
		ReplyTo:     []Recipient{},
		LabelIDs:    []string{LabelAllDrafts, LabelAllMail, LabelDrafts},
		MIMEType:    MIMETypeHTML,
		Attachments: []Attachment{},
	}
}

// Equal reports whether every field of the two snapshots matches. Nil and empty slices are considered equal.
func (d Draft) Equal(other Draft) bool {
	return d.ID == other.ID &&
		d.ConversationID == other.ConversationID &&
		d.AddressID == other.AddressID &&
		d.ExternalID == other.ExternalID &&
		d.Sender == other.Sender &&
		d.Subject == other.Subject &&
		slices.Equal(d.ToList, other.ToList) &&
		slices.Equal(d.CCList, other.CCList) &&
		slices.Equal(d.BCCList, other.BCCList) &&
		slices.Equal(d.ReplyTo, other.ReplyTo) &&
		slices.Equal(d.LabelIDs, other.LabelIDs) &&
		d.ExpirationTime == other.ExpirationTime &&
		d.Body == other.Body &&
		d.MIMEType == other.MIMEType &&
		d.Header == other.Header &&
		slices.EqualFunc(d.Attachments, other.Attachments, Attachment.Equal)
}

// Clone returns a deep copy of the draft so that cached snapshots cannot be mutated by their producer.
func (d Draft) Clone() Draft {
	c := d

	c.ToList = slices.Clone(d.ToList)
	c.CCList = slices.Clone(d.CCList)
	c.BCCList = slices.Clone(d.BCCList)
	c.ReplyTo = slices.Clone(d.ReplyTo)
	c.LabelIDs = slices.Clone(d.LabelIDs)
	c.Attachments = make([]Attachment, 0, len(d.Attachments))

	for _, att := range d.Attachments {
		att.Headers = maps.Clone(att.Headers)
		c.Attachments = append(c.Attachments, att)
	}

	return c
}

// Fields holds the user-editable part of a draft in plain text.
type Fields struct {
	Sender   Sender
	Subject  string
	ToList   []Recipient
	CCList   []Recipient
	BCCList  []Recipient
	Body     string
	MIMEType MIMEType
}
