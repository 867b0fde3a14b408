package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func TestErrorMatchesStandardErrors(t *testing.T) {
	notFound := newKindError(ErrorKindNotFound, "query", "/missing", "missing")
	if !errors.Is(notFound, fs.ErrNotExist) {
		t.Error("not found error does not match fs.ErrNotExist")
	}
	if errors.Is(notFound, fs.ErrPermission) {
		t.Error("not found error matches fs.ErrPermission")
	}
	denied := newKindError(ErrorKindAccessDenied, "query", "/denied", "denied")
	if !errors.Is(denied, fs.ErrPermission) {
		t.Error("access denied error does not match fs.ErrPermission")
	}
	if !errors.Is(errors.Wrap(denied, "context"), &Error{Kind: ErrorKindAccessDenied}) {
		t.Error("wrapped error does not match kind sentinel")
	}
}

func TestErrorClassifiesNativeErrors(t *testing.T) {
	_, err := os.Stat(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("stat of missing path succeeded")
	}
	wrapped := newError("stat", "missing", err)
	if wrapped.Kind != ErrorKindNotFound {
		t.Error("missing path classified as", wrapped.Kind)
	}
	if wrapped.Code == 0 {
		t.Error("native code not recorded")
	}
	if KindOf(errors.Wrap(wrapped, "context")) != ErrorKindNotFound {
		t.Error("wrapped error kind not preserved")
	}
}

func TestErrorKindOther(t *testing.T) {
	if KindOf(errors.New("arbitrary")) != ErrorKindOther {
		t.Error("arbitrary error not classified as other")
	}
	if IsKind(nil, ErrorKindOther) {
		t.Error("nil error classified")
	}
	if ErrorKindOther.String() != "native error" {
		t.Error("other kind string incorrect")
	}
}
