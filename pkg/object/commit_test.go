package object

import (
	"reflect"
	"strings"
	"testing"
)

func commitObject(body string) *Object {
	payload := []byte(body)
	return &Object{Type: TypeCommit, Payload: payload, ID: HashObject(TypeCommit, payload)}
}

func TestParseCommit(t *testing.T) {
	obj := commitObject("tree 4b825dc642cb6eb9a060e54bf8d69288fbee4904\n" +
		"parent 1111111111111111111111111111111111111111\n" +
		"author Test <test@example.com> 1234567890 +0000\n" +
		"committer Test <test@example.com> 1234567890 +0000\n" +
		"\n" +
		"Commit message 1\n")

	rec, err := ParseCommit(obj)
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	if rec.ID != obj.ID {
		t.Errorf("ID = %s, want %s", rec.ID, obj.ID)
	}
	if want := []Hash{"1111111111111111111111111111111111111111"}; !reflect.DeepEqual(rec.Parents, want) {
		t.Errorf("Parents = %v, want %v", rec.Parents, want)
	}
	if got := rec.Metadata["author"]; got != "Test <test@example.com> 1234567890 +0000" {
		t.Errorf("author = %q", got)
	}
	if rec.Tree() != "4b825dc642cb6eb9a060e54bf8d69288fbee4904" {
		t.Errorf("Tree() = %q", rec.Tree())
	}
	if rec.Message() != "Commit message 1" {
		t.Errorf("Message() = %q, want %q", rec.Message(), "Commit message 1")
	}
	if rec.IsMerge() {
		t.Error("IsMerge() = true for single-parent commit")
	}
	if _, ok := rec.Metadata["parent"]; ok {
		t.Error("parent lines must not be stored as metadata")
	}
}

func TestParseCommitMergeParentsInOrder(t *testing.T) {
	rec, err := ParseCommit(commitObject("tree t\nparent bbb\nparent aaa\nparent bbb\n\nmerge\n"))
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	if want := []Hash{"bbb", "aaa", "bbb"}; !reflect.DeepEqual(rec.Parents, want) {
		t.Fatalf("Parents = %v, want %v", rec.Parents, want)
	}
	if !rec.IsMerge() {
		t.Fatal("IsMerge() = false for merge commit")
	}
}

func TestParseCommitRootAndEmptyParent(t *testing.T) {
	rec, err := ParseCommit(commitObject("parent \ntree abc\n\nroot"))
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	if len(rec.Parents) != 0 {
		t.Fatalf("Parents = %v, want none", rec.Parents)
	}
	if rec.Metadata["tree"] != "abc" {
		t.Fatalf("tree = %q, want abc", rec.Metadata["tree"])
	}
}

func TestParseCommitDuplicateKeysLastWins(t *testing.T) {
	rec, err := ParseCommit(commitObject("author first\nauthor second\n\nm"))
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	if rec.Metadata["author"] != "second" {
		t.Fatalf("author = %q, want second", rec.Metadata["author"])
	}
}

func TestParseCommitNoMessage(t *testing.T) {
	for _, body := range []string{"tree abc\nauthor a", "tree abc\n\n", "tree abc\n\n  \n\t\n"} {
		rec, err := ParseCommit(commitObject(body))
		if err != nil {
			t.Fatalf("ParseCommit(%q): %v", body, err)
		}
		if _, ok := rec.Metadata[MessageKey]; ok {
			t.Fatalf("ParseCommit(%q) stored empty message", body)
		}
		if rec.Metadata["tree"] != "abc" {
			t.Fatalf("ParseCommit(%q) tree = %q", body, rec.Metadata["tree"])
		}
	}
}

func TestParseCommitMessageKeepsBlankLines(t *testing.T) {
	rec, err := ParseCommit(commitObject("tree abc\n\nsubject\n\nbody line\n"))
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	if rec.Message() != "subject\n\nbody line" {
		t.Fatalf("Message() = %q", rec.Message())
	}
}

func TestParseCommitInvalidUTF8IsReplaced(t *testing.T) {
	rec, err := ParseCommit(commitObject("tree abc\nauthor J\xe9r\xf4me <j@x>\n\nmensaje \xff\xfe roto"))
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	if rec.Metadata["tree"] != "abc" {
		t.Fatalf("tree = %q, want abc", rec.Metadata["tree"])
	}
	if !strings.Contains(rec.Metadata["author"], "�") {
		t.Fatalf("author = %q, want replacement characters", rec.Metadata["author"])
	}
	if !strings.HasPrefix(rec.Message(), "mensaje ") || !strings.HasSuffix(rec.Message(), " roto") {
		t.Fatalf("Message() = %q", rec.Message())
	}
}

func TestParseCommitContinuationLines(t *testing.T) {
	rec, err := ParseCommit(commitObject("tree abc\n" +
		"gpgsig -----BEGIN PGP SIGNATURE-----\n" +
		" \n" +
		" iQEzBAABCAAdFiEE\n" +
		" -----END PGP SIGNATURE-----\n" +
		"parent p1\n" +
		"\n" +
		"signed\n"))
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	want := "-----BEGIN PGP SIGNATURE-----\n\niQEzBAABCAAdFiEE\n-----END PGP SIGNATURE-----"
	if rec.Metadata["gpgsig"] != want {
		t.Fatalf("gpgsig = %q, want %q", rec.Metadata["gpgsig"], want)
	}
	if !reflect.DeepEqual(rec.Parents, []Hash{"p1"}) {
		t.Fatalf("Parents = %v, want [p1]", rec.Parents)
	}
	if _, ok := rec.Metadata[""]; ok {
		t.Fatal("continuation lines leaked into an empty key")
	}
}

func TestParseCommitWrongObjectKind(t *testing.T) {
	for _, typ := range []ObjectType{TypeBlob, TypeTree, TypeTag, TypeUnknown} {
		_, err := ParseCommit(&Object{Type: typ, Payload: []byte("tree abc\n\nm")})
		e := requireKind(t, err, WrongObjectKind)
		if e.Actual != typ.String() {
			t.Fatalf("Actual = %q, want %q", e.Actual, typ.String())
		}
	}
}

func TestParseCommitWithoutHeaderFields(t *testing.T) {
	tests := []struct {
		body    string
		message string
	}{
		{"", ""},
		{"garbage", ""},
		{"\n\nonly a message", "only a message"},
	}
	for _, tt := range tests {
		obj := commitObject(tt.body)
		rec, err := ParseCommit(obj)
		if err != nil {
			t.Fatalf("ParseCommit(%q): %v", tt.body, err)
		}
		if rec.ID != obj.ID {
			t.Fatalf("ParseCommit(%q).ID = %s, want %s", tt.body, rec.ID, obj.ID)
		}
		if len(rec.Parents) != 0 || rec.IsMerge() {
			t.Fatalf("ParseCommit(%q).Parents = %v, want none", tt.body, rec.Parents)
		}
		if rec.Message() != tt.message {
			t.Fatalf("ParseCommit(%q).Message() = %q, want %q", tt.body, rec.Message(), tt.message)
		}
		if rec.Tree() != "" {
			t.Fatalf("ParseCommit(%q).Tree() = %q, want empty", tt.body, rec.Tree())
		}
	}
}
