package chat

import (
	"fmt"
	"time"
)

// Role identifies who a transcript entry belongs to.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Kind identifies how a transcript entry renders.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Entry is one immutable line of the conversation. For KindImage, Content
// is the image URL; the download affordance is derived at render time and
// is not part of the entry.
type Entry struct {
	Role    Role
	Kind    Kind
	Content string
}

// Transcript is the append-only ordered sequence of chat entries. Entries
// are never edited, removed, or reordered; Reset replaces the whole
// sequence and only happens when the chat surface is reopened.
type Transcript struct {
	entries []Entry
}

// NewTranscript creates an empty transcript.
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds an entry to the end of the transcript.
func (t *Transcript) Append(e Entry) {
	t.entries = append(t.entries, e)
}

// AppendText appends a plain text entry.
func (t *Transcript) AppendText(role Role, content string) {
	t.Append(Entry{Role: role, Kind: KindText, Content: content})
}

// AppendImage appends a bot image entry pointing at url.
func (t *Transcript) AppendImage(url string) {
	t.Append(Entry{Role: RoleBot, Kind: KindImage, Content: url})
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entry sequence in append order.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Reset discards all entries and starts over with a single bot greeting.
func (t *Transcript) Reset(greeting string) {
	t.entries = t.entries[:0]
	t.AppendText(RoleBot, greeting)
}

// LastImageURL returns the URL of the most recent image entry.
func (t *Transcript) LastImageURL() (string, bool) {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Kind == KindImage {
			return t.entries[i].Content, true
		}
	}
	return "", false
}

// SuggestedFilename derives a download filename from the given time. The
// name is cosmetic; it only needs to be unique enough for a downloads
// directory.
func SuggestedFilename(now time.Time) string {
	return fmt.Sprintf("AdScribe_%d.jpg", now.UnixMilli())
}
