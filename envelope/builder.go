package envelope

type Builder struct {
	envelope Envelope
}

func New(from, head string, body any) *Builder {
	return &Builder{
		envelope: Envelope{
			From: from,
			Head: head,
			Body: body,
		},
	}
}

func NewReply(from, to string, id uint64, body any) *Builder {
	return &Builder{
		envelope: Envelope{
			From: from,
			To:   to,
			ID:   id,
			Body: body,
		},
	}
}

func (b *Builder) To(to string) *Builder {
	b.envelope.To = to
	return b
}

func (b *Builder) ID(id uint64) *Builder {
	b.envelope.ID = id
	return b
}

func (b *Builder) Build() Envelope {
	return b.envelope
}
