package domain

// Part is one atomic unit of a turn: plain text or an inline image.
// Exactly one variant is populated. Data travels as raw bytes inside the
// process; base64 only appears at the JSON boundary.
type Part struct {
	Text     string `bson:"text,omitempty" json:"text,omitempty"`
	MIMEType string `bson:"mimeType,omitempty" json:"mimeType,omitempty"`
	Data     []byte `bson:"data,omitempty" json:"data,omitempty"`
}

func TextPart(body string) Part {
	return Part{Text: body}
}

func MediaPart(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

func (p Part) IsMedia() bool {
	return p.MIMEType != ""
}

// Turn is one message produced by either side of the conversation.
// Parts keep insertion order; a turn is never modified once appended.
type Turn struct {
	Role  Role   `bson:"role" json:"role"`
	Parts []Part `bson:"parts" json:"parts"`
}

func TextTurn(role Role, body string) Turn {
	return Turn{Role: role, Parts: []Part{TextPart(body)}}
}

// Media is an inbound attachment before it is composed into a turn.
type Media struct {
	MIMEType string
	Data     []byte
}

// History is the full transcript owned by one user. Turns grow by two per
// successful exchange (user then model) and are never reordered or truncated
// by the service; storage always keeps the whole sequence.
type History struct {
	UserID    UserID    `bson:"userId" json:"userId"`
	Turns     []Turn    `bson:"history" json:"history"`
	UpdatedAt Timestamp `bson:"updatedAt" json:"updatedAt"`
}

func (h *History) Append(turns ...Turn) {
	h.Turns = append(h.Turns, turns...)
}

func (h *History) Empty() bool {
	return h == nil || len(h.Turns) == 0
}
