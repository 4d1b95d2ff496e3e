package publish

import "testing"

func TestParseGCSPath(t *testing.T) {
	tests := []struct {
		path       string
		wantBucket string
		wantPrefix string
		wantErr    bool
	}{
		{path: "gs://my-bucket", wantBucket: "my-bucket"},
		{path: "gs://my-bucket/openings", wantBucket: "my-bucket", wantPrefix: "openings/"},
		{path: "gs://my-bucket/openings/2024/", wantBucket: "my-bucket", wantPrefix: "openings/2024/"},
		{path: "s3://my-bucket", wantErr: true},
		{path: "gs://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			bucket, prefix, err := ParseGCSPath(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseGCSPath() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGCSPath() error = %v", err)
			}
			if bucket != tt.wantBucket {
				t.Errorf("bucket = %q, want %q", bucket, tt.wantBucket)
			}
			if prefix != tt.wantPrefix {
				t.Errorf("prefix = %q, want %q", prefix, tt.wantPrefix)
			}
		})
	}
}
