package model

// MessageKind tags the payload type of a message.
type MessageKind string

// Known message kinds. Only KindText carries a serialized payload.
const (
	KindText           MessageKind = "text"
	KindAttributedText MessageKind = "attributed_text"
	KindPhoto          MessageKind = "photo"
	KindVideo          MessageKind = "video"
	KindLocation       MessageKind = "location"
	KindEmoji          MessageKind = "emoji"
	KindAudio          MessageKind = "audio"
	KindContact        MessageKind = "contact"
	KindLinkPreview    MessageKind = "link_preview"
	KindCustom         MessageKind = "custom"
)

var knownKinds = map[MessageKind]struct{}{
	KindText: {}, KindAttributedText: {}, KindPhoto: {}, KindVideo: {}, KindLocation: {},
	KindEmoji: {}, KindAudio: {}, KindContact: {}, KindLinkPreview: {}, KindCustom: {},
}

// Valid reports whether k is one of the known kinds.
func (k MessageKind) Valid() bool {
	_, ok := knownKinds[k]
	return ok
}

// TextContent derives the stored content for a message of the given kind.
// Non-text kinds keep their tag but yield an empty string: their payloads are not serialized.
func TextContent(kind MessageKind, payload string) string {
	if kind == KindText {
		return payload
	}
	return ""
}
