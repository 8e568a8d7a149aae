package object

import "strings"

// MessageKey is the reserved metadata key holding a commit's message.
const MessageKey = "message"

// CommitRecord is the decoded body of a commit object.
type CommitRecord struct {
	ID Hash
	// Parents are listed in header order; duplicates are preserved.
	Parents []Hash
	// Metadata maps header field names (tree, author, committer, ...) to
	// their values. The trimmed message, if non-empty, is stored under
	// MessageKey.
	Metadata map[string]string
}

// Message returns the commit message, or "" when the commit has none.
func (c *CommitRecord) Message() string {
	return c.Metadata[MessageKey]
}

// Tree returns the value of the tree header.
func (c *CommitRecord) Tree() Hash {
	return Hash(c.Metadata["tree"])
}

// IsMerge reports whether the commit lists more than one parent.
func (c *CommitRecord) IsMerge() bool {
	return len(c.Parents) > 1
}

// ParseCommit decodes the body of a commit object. Objects of any other type
// are rejected with WrongObjectKind. Any commit body parses, including one
// with no header fields; missing fields are simply absent from Metadata.
func ParseCommit(obj *Object) (*CommitRecord, error) {
	if obj.Type != TypeCommit {
		e := newError(WrongObjectKind)
		e.Expected = TypeCommit.String()
		e.Actual = obj.Type.String()
		return nil, e
	}

	rec := ParseCommitBody(obj.Payload)
	rec.ID = obj.ID
	return rec, nil
}

// ParseCommitBody decodes commit text. Invalid UTF-8 is replaced rather than
// rejected so header fields stay usable when a message is mis-encoded. Header
// lines starting with a space continue the previous field (gpgsig, mergetag).
func ParseCommitBody(data []byte) *CommitRecord {
	content := strings.ToValidUTF8(string(data), "\uFFFD")
	header, message, _ := strings.Cut(content, "\n\n")

	rec := &CommitRecord{Metadata: make(map[string]string)}
	lastKey := ""
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, "parent ") {
			if fields := strings.Fields(line); len(fields) >= 2 {
				rec.Parents = append(rec.Parents, Hash(fields[1]))
			}
			lastKey = ""
			continue
		}
		if lastKey != "" && strings.HasPrefix(line, " ") {
			rec.Metadata[lastKey] += "\n" + line[1:]
			continue
		}
		key, value, ok := strings.Cut(line, " ")
		if !ok || key == "" {
			lastKey = ""
			continue
		}
		rec.Metadata[key] = value
		lastKey = key
	}

	if message = strings.TrimSpace(message); message != "" {
		rec.Metadata[MessageKey] = message
	}
	return rec
}
