package output

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
)

func pdfArtifact(data string) Artifact {
	return Artifact{Name: DefaultName, ContentType: "application/pdf", Data: []byte(data)}
}

func TestFileSink_CreatesDirectoryAndWrites(t *testing.T) {
	root := t.TempDir()
	sink := NewFileSink(root)

	loc, err := sink.Write(context.Background(), pdfArtifact("%PDF-1.4 first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "PDF", "test.pdf"), loc)

	got, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 first", string(got))
}

func TestFileSink_OverwritesWhole(t *testing.T) {
	root := t.TempDir()
	sink := NewFileSink(root)

	_, err := sink.Write(context.Background(), pdfArtifact("a much longer first document"))
	require.NoError(t, err)
	loc, err := sink.Write(context.Background(), pdfArtifact("short"))
	require.NoError(t, err)

	got, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))

	entries, err := os.ReadDir(filepath.Dir(loc))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileSink_DirectoryCreationFailure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0644))

	loc, err := NewFileSink(root).Write(context.Background(), pdfArtifact("data"))
	require.Error(t, err)
	assert.Empty(t, loc)
	assert.True(t, cerrors.IsCode(err, cerrors.ErrOutputDirCreateFailed))

	ce, ok := cerrors.AsChartError(err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "PDF"), ce.Context["path"])
	assert.NotEmpty(t, ce.Suggestions)
}

func TestFileSink_Path(t *testing.T) {
	tests := []struct {
		name string
		sink FileSink
		art  Artifact
		want string
	}{
		{"artifact name", FileSink{Root: "/r"}, Artifact{Name: "test.svg"}, "/r/PDF/test.svg"},
		{"default name", FileSink{Root: "/r", Dir: "out"}, Artifact{}, "/r/out/test.pdf"},
		{"override", FileSink{Root: "/r", Name: "chart.pdf"}, Artifact{Name: "test.pdf"}, "/r/PDF/chart.pdf"},
		{"no traversal", FileSink{Root: "/r"}, Artifact{Name: "../../etc/x.pdf"}, "/r/PDF/x.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sink.Path(tt.art)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestDownloadsDir(t *testing.T) {
	t.Setenv("XDG_DOWNLOAD_DIR", "/data/downloads")
	dir, err := DownloadsDir()
	require.NoError(t, err)
	assert.Equal(t, "/data/downloads", dir)

	t.Setenv("XDG_DOWNLOAD_DIR", "")
	t.Setenv("HOME", "/home/tester")
	dir, err = DownloadsDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", "Downloads"), dir)
}

func TestFileSink_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFileSink(t.TempDir()).Write(ctx, pdfArtifact("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMultiSink(t *testing.T) {
	var calls []string
	record := func(name string, err error) Sink {
		return SinkFunc(func(ctx context.Context, a Artifact) (string, error) {
			calls = append(calls, name)
			if err != nil {
				return "", err
			}
			return name + "/" + a.Name, nil
		})
	}

	loc, err := MultiSink{record("file", nil), record("s3", nil)}.Write(context.Background(), pdfArtifact("x"))
	require.NoError(t, err)
	assert.Equal(t, "file/test.pdf", loc)
	assert.Equal(t, []string{"file", "s3"}, calls)

	calls = nil
	boom := errors.New("boom")
	_, err = MultiSink{record("file", boom), record("s3", nil)}.Write(context.Background(), pdfArtifact("x"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"file"}, calls)
}

type fakeStore struct {
	exists    bool
	makeErr   error
	putErr    error
	made      bool
	key       string
	size      int64
	opts      minio.PutObjectOptions
	data      []byte
	bucketArg string
}

func (f *fakeStore) BucketExists(ctx context.Context, bucket string) (bool, error) {
	f.bucketArg = bucket
	return f.exists, nil
}

func (f *fakeStore) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	f.made = true
	return f.makeErr
}

func (f *fakeStore) PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	f.key, f.size, f.opts = key, size, opts
	f.data, _ = io.ReadAll(r)
	return minio.UploadInfo{Bucket: bucket, Key: key, Size: size}, nil
}

func TestObjectSink_Upload(t *testing.T) {
	store := &fakeStore{}
	sink := &ObjectSink{client: store, bucket: "charts", prefix: "daily"}

	loc, err := sink.Write(context.Background(), pdfArtifact("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "s3://charts/daily/test.pdf", loc)
	assert.True(t, store.made)
	assert.Equal(t, "daily/test.pdf", store.key)
	assert.Equal(t, int64(4), store.size)
	assert.Equal(t, "application/pdf", store.opts.ContentType)
	assert.Equal(t, "%PDF", string(store.data))
}

func TestObjectSink_BucketAlreadyOwned(t *testing.T) {
	store := &fakeStore{makeErr: minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou"}}
	sink := &ObjectSink{client: store, bucket: "charts"}

	_, err := sink.Write(context.Background(), pdfArtifact("x"))
	assert.NoError(t, err)
}

func TestObjectSink_Errors(t *testing.T) {
	store := &fakeStore{makeErr: minio.ErrorResponse{Code: "AccessDenied"}}
	_, err := (&ObjectSink{client: store, bucket: "charts"}).Write(context.Background(), pdfArtifact("x"))
	assert.True(t, cerrors.IsCode(err, cerrors.ErrStorageBucketFailed))

	store = &fakeStore{exists: true, putErr: errors.New("network down")}
	_, err = (&ObjectSink{client: store, bucket: "charts"}).Write(context.Background(), pdfArtifact("x"))
	assert.True(t, cerrors.IsCode(err, cerrors.ErrStorageUploadFailed))
	assert.False(t, store.made)
}

func TestSanitizeEndpoint(t *testing.T) {
	assert.Equal(t, "s3.example.com", sanitizeEndpoint("https://s3.example.com/bucket"))
	assert.Equal(t, "localhost:9000", sanitizeEndpoint(" http://localhost:9000 "))
	assert.Equal(t, "minio:9000", sanitizeEndpoint("minio:9000"))
}
