package blob

import (
	"context"
	"testing"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	t.Setenv("CHEMCORE_BLOB_DRIVER", string(DriverMemory))
	s, err := Open(ctx)
	if err != nil || s.Driver() != DriverMemory {
		t.Fatalf("memory driver: %v %v", s, err)
	}

	t.Setenv("CHEMCORE_BLOB_DRIVER", string(DriverFilesystem))
	t.Setenv("CHEMCORE_BLOB_FS_ROOT", t.TempDir())
	s, err = Open(ctx)
	if err != nil || s.Driver() != DriverFilesystem {
		t.Fatalf("fs driver: %v %v", s, err)
	}

	t.Setenv("CHEMCORE_BLOB_DRIVER", string(DriverS3))
	t.Setenv("CHEMCORE_BLOB_S3_BUCKET", "")
	if _, err := Open(ctx); err == nil {
		t.Fatalf("s3 without bucket accepted")
	}

	t.Setenv("CHEMCORE_BLOB_DRIVER", "tape")
	if _, err := Open(ctx); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}
