package refs

import (
	"testing"

	"github.com/libyal/go-fsrefs/internal/blockio"
	"github.com/libyal/go-fsrefs/internal/ferror"
)

func TestOpen_RejectsUnsupportedAccessMode(t *testing.T) {
	src := blockio.FromMemory(buildHeader())

	_, err := Open(src, OpenVolumeOptions{Access: AccessReadWrite})
	if err == nil {
		t.Fatalf("Open with AccessReadWrite err=nil want error")
	}
	if !ferror.Is(err, ferror.KindArguments) {
		t.Fatalf("Open with AccessReadWrite kind=%v want KindArguments", ferror.KindOf(err))
	}
}
